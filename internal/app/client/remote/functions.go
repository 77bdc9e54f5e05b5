package remote

import (
	"context"
	"fmt"
	"net/http"

	"hemapp/internal/domain/assistant"
)

type chatRequest struct {
	Message string `json:"message"`
}

type analyzeRequest struct {
	ImageURL string `json:"imageUrl"`
}

// Chat отправляет сообщение ассистенту и возвращает ответ
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	var resp struct {
		Success  bool   `json:"success"`
		Response string `json:"response"`
		Error    string `json:"error"`
	}
	if err := c.do(ctx, http.MethodPost, "/functions/v1/ai-chat", chatRequest{Message: message}, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", fmt.Errorf("ai-chat: %s", resp.Error)
	}
	return resp.Response, nil
}

// AnalyzePhoto анализирует фото блюда по публичной ссылке
func (c *Client) AnalyzePhoto(ctx context.Context, imageURL string) (assistant.PhotoAnalysis, error) {
	var resp struct {
		Success  bool                    `json:"success"`
		Analysis assistant.PhotoAnalysis `json:"analysis"`
		Error    string                  `json:"error"`
	}
	if err := c.do(ctx, http.MethodPost, "/functions/v1/analyze-photo", analyzeRequest{ImageURL: imageURL}, &resp); err != nil {
		return assistant.PhotoAnalysis{}, err
	}
	if !resp.Success {
		return assistant.PhotoAnalysis{}, fmt.Errorf("analyze-photo: %s", resp.Error)
	}
	return resp.Analysis, nil
}

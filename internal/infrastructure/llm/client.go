package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"hemapp/internal/app/server/config"

	"golang.org/x/exp/slog"
)

var (
	ErrNotConfigured = errors.New("LLM API key is not configured")
	ErrEmptyReply    = errors.New("empty reply from language model")
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"

	maxErrorBody = 4 << 10
)

// Message сообщение диалога. Content либо строка, либо список частей для запросов с изображением.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

// TextMessage обычное текстовое сообщение
func TextMessage(role, text string) Message {
	return Message{Role: role, Content: text}
}

// ImageMessage сообщение пользователя с текстом и ссылкой на изображение
func ImageMessage(text, imageURL string) Message {
	return Message{
		Role: RoleUser,
		Content: []ContentPart{
			{Type: "text", Text: text},
			{Type: "image_url", ImageURL: &ImageURL{URL: imageURL}},
		},
	}
}

type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Client клиент OpenAI-совместимого эндпоинта chat completions
type Client struct {
	cfg        config.LLM
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg config.LLM, log *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With("component", "llm_client"),
	}
}

func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call language model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.Error("language model error", "status", resp.StatusCode, "body", string(msg))
		return "", fmt.Errorf("language model returned status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if out.Error != nil {
		return "", fmt.Errorf("language model error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", ErrEmptyReply
	}

	c.log.Debug("completion received", "model", c.cfg.Model, "duration", time.Since(start))
	return out.Choices[0].Message.Content, nil
}

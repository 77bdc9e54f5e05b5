package function

import "hemapp/internal/domain/assistant"

// Тело разбирается в обработчике, чтобы ошибка разбора тоже пришла конвертом {success:false,error}
type chatInput struct {
	RawBody []byte `contentType:"application/json"`
}

type chatRequest struct {
	Message string `json:"message"`
	UserID  int    `json:"userId"`
}

type chatOutput struct {
	Status int
	Body   chatResponse
}

type chatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

type analyzeInput struct {
	RawBody []byte `contentType:"application/json"`
}

type analyzeRequest struct {
	ImageURL string `json:"imageUrl"`
	UserID   int    `json:"userId"`
}

type analyzeOutput struct {
	Status int
	Body   analyzeResponse
}

type analyzeResponse struct {
	Success  bool                     `json:"success"`
	Analysis *assistant.PhotoAnalysis `json:"analysis,omitempty"`
	Error    string                   `json:"error,omitempty"`
}

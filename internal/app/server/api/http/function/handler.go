package function

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"hemapp/internal/app/server/api/http/middleware/auth"
	"hemapp/internal/domain/assistant"
	"hemapp/internal/infrastructure/llm"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

var (
	errUserMismatch = errors.New("userId does not match the authenticated user")
	errBadBody      = errors.New("request body must be a JSON object")
)

// Handler функции ai-chat и analyze-photo. Любая ошибка отдается конвертом {success:false,error}.
type Handler struct {
	service    assistant.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service assistant.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log.With("component", "function_handler"),
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.chatOp(), h.chat)
	huma.Register(api, h.analyzeOp(), h.analyze)
}

func (h *Handler) chat(ctx context.Context, input *chatInput) (*chatOutput, error) {
	var req chatRequest
	if err := decode(input.RawBody, &req); err != nil {
		return &chatOutput{Status: http.StatusBadRequest, Body: chatResponse{Error: err.Error()}}, nil
	}

	userID, err := h.caller(ctx, req.UserID)
	if err != nil {
		return &chatOutput{Status: http.StatusForbidden, Body: chatResponse{Error: err.Error()}}, nil
	}

	reply, err := h.service.Chat(ctx, userID, req.Message)
	if err != nil {
		h.log.Error("ai-chat failed", "user_id", userID, "error", err)
		return &chatOutput{Status: http.StatusInternalServerError, Body: chatResponse{Error: publicError(err)}}, nil
	}

	return &chatOutput{Status: http.StatusOK, Body: chatResponse{Success: true, Response: reply}}, nil
}

func (h *Handler) analyze(ctx context.Context, input *analyzeInput) (*analyzeOutput, error) {
	var req analyzeRequest
	if err := decode(input.RawBody, &req); err != nil {
		return &analyzeOutput{Status: http.StatusBadRequest, Body: analyzeResponse{Error: err.Error()}}, nil
	}

	userID, err := h.caller(ctx, req.UserID)
	if err != nil {
		return &analyzeOutput{Status: http.StatusForbidden, Body: analyzeResponse{Error: err.Error()}}, nil
	}

	analysis, err := h.service.AnalyzePhoto(ctx, userID, req.ImageURL)
	if err != nil {
		h.log.Error("analyze-photo failed", "user_id", userID, "error", err)
		return &analyzeOutput{Status: http.StatusInternalServerError, Body: analyzeResponse{Error: publicError(err)}}, nil
	}

	return &analyzeOutput{Status: http.StatusOK, Body: analyzeResponse{Success: true, Analysis: &analysis}}, nil
}

// caller пользователь из токена; userId в теле необязателен, но если указан, должен совпадать
func (h *Handler) caller(ctx context.Context, bodyUserID int) (int, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return 0, errUserMismatch
	}
	if bodyUserID != 0 && bodyUserID != userID {
		h.log.Warn("userId mismatch", "token_user", userID, "body_user", bodyUserID)
		return 0, errUserMismatch
	}
	return userID, nil
}

func decode(raw []byte, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return errBadBody
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errBadBody
	}
	return nil
}

func publicError(err error) string {
	for _, known := range []error{
		llm.ErrNotConfigured,
		assistant.ErrEmptyMessage,
		assistant.ErrInvalidImageURL,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "language model request failed"
}

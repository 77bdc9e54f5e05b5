package user

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"hemapp/internal/domain/session"
	"hemapp/internal/domain/user"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

const (
	statusOk    = "Ok"
	statusError = "Error"
)

type Handler struct {
	service    user.Servicer
	session    session.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service user.Servicer, session session.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		session:    session,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.registerOp(), h.register)
	huma.Register(api, h.loginOp(), h.login)
	huma.Register(api, h.logoutOp(), h.logout)
}

func (h *Handler) register(ctx context.Context, input *registerInput) (*registerOutput, error) {
	userID, err := h.service.Register(ctx, input.Body.Login, input.Body.Password)
	if err != nil {
		status := http.StatusInternalServerError
		msg := "registration failed"
		switch {
		case errors.Is(err, user.ErrInvalidInput):
			status, msg = http.StatusBadRequest, err.Error()
		case errors.Is(err, user.ErrLoginTaken):
			status, msg = http.StatusConflict, err.Error()
		default:
			h.log.Error("register user", "error", err)
		}
		return &registerOutput{
			Status: status,
			Body:   RegisterResponse{Status: statusError, Error: msg},
		}, nil
	}

	return &registerOutput{
		Status: http.StatusCreated,
		Body:   RegisterResponse{ID: userID, Status: statusOk},
	}, nil
}

func (h *Handler) login(ctx context.Context, input *loginInput) (*loginOutput, error) {
	u, err := h.service.Authenticate(ctx, input.Body.Login, input.Body.Password)
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, user.ErrInvalidAuth) {
			h.log.Error("authenticate user", "error", err)
			status = http.StatusInternalServerError
		}
		return &loginOutput{
			Status: status,
			Body:   LoginResponse{Status: statusError, Error: "Invalid credentials"},
		}, nil
	}

	issued, err := h.session.Create(ctx, u.ID)
	if err != nil {
		h.log.Error("create session", "user_id", u.ID, "error", err)
		return &loginOutput{
			Status: http.StatusInternalServerError,
			Body:   LoginResponse{Status: statusError, Error: "create session failed"},
		}, nil
	}

	return &loginOutput{
		Status: http.StatusOK,
		Body: LoginResponse{
			Token:     issued.Token,
			UserID:    u.ID,
			ExpiresIn: int(session.TTL.Seconds()),
			ExpiresAt: issued.ExpiresAt,
			Status:    statusOk,
		},
	}, nil
}

// logout отзывает токен из заголовка. Без токена или с уже отозванным отвечает 204.
func (h *Handler) logout(ctx context.Context, input *logoutInput) (*struct{}, error) {
	token := strings.TrimPrefix(input.Authorization, "Bearer ")
	if token == input.Authorization {
		token = ""
	}

	if err := h.session.Revoke(ctx, token); err != nil {
		h.log.Error("revoke session", "error", err)
		return nil, huma.Error500InternalServerError("logout failed")
	}
	return nil, nil
}

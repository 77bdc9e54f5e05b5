package user

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) registerOp() huma.Operation {
	return huma.Operation{
		OperationID:   "user-register",
		Method:        http.MethodPost,
		Path:          "/auth/v1/signup",
		Summary:       "Регистрация пользователя",
		Tags:          []string{"auth"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) loginOp() huma.Operation {
	return huma.Operation{
		OperationID: "user-login",
		Method:      http.MethodPost,
		Path:        "/auth/v1/token",
		Summary:     "Вход по логину и паролю",
		Tags:        []string{"auth"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) logoutOp() huma.Operation {
	return huma.Operation{
		OperationID:   "user-logout",
		Method:        http.MethodPost,
		Path:          "/auth/v1/logout",
		Summary:       "Выход: отзыв токена",
		Tags:          []string{"auth"},
		DefaultStatus: http.StatusNoContent,
		Middlewares:   h.middleware,
	}
}

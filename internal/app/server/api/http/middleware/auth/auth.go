package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

const bearerPrefix = "Bearer "

// Validator находит владельца токена
type Validator interface {
	Validate(ctx context.Context, token string) (int, error)
}

type Auth struct {
	session Validator
	log     *slog.Logger
}

func New(session Validator, log *slog.Logger) *Auth {
	return &Auth{
		session: session,
		log:     log.With("component", "auth_middleware"),
	}
}

type contextKey string

const UserIDKey contextKey = "userID"

// Middleware проверяет bearer-токен для huma-операций
func (a *Auth) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		userID, ok := a.authenticate(ctx.Context(), ctx.Header("Authorization"))
		if !ok {
			ctx.SetStatus(http.StatusUnauthorized)
			ctx.SetHeader("Content-Type", "application/json")
			if err := json.NewEncoder(ctx.BodyWriter()).Encode(map[string]string{"error": "Unauthorized"}); err != nil {
				a.log.Error("encode response", "error", err)
			}
			return
		}

		next(huma.WithContext(ctx, WithUserID(ctx.Context(), userID)))
	}
}

// Handler то же для обычных net/http обработчиков (websocket, загрузка файлов).
// Браузерный WebSocket не умеет заголовки, поэтому токен принимается и из параметра access_token.
func (a *Auth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			if token := r.URL.Query().Get("access_token"); token != "" {
				header = bearerPrefix + token
			}
		}

		userID, ok := a.authenticate(r.Context(), header)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func (a *Auth) authenticate(ctx context.Context, header string) (int, bool) {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || token == "" {
		a.log.Debug("missing bearer token")
		return 0, false
	}

	userID, err := a.session.Validate(ctx, token)
	if err != nil {
		a.log.Warn("token rejected", "error", err)
		return 0, false
	}
	return userID, true
}

func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func GetUserID(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(UserIDKey).(int)
	return userID, ok
}

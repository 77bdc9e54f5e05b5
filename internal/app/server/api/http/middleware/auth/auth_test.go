package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"hemapp/internal/domain/session"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"
)

type MockSession struct {
	mock.Mock
}

func (m *MockSession) Validate(ctx context.Context, token string) (int, error) {
	args := m.Called(ctx, token)
	return args.Int(0), args.Error(1)
}

func TestContextHelpers(t *testing.T) {
	_, ok := GetUserID(context.Background())
	assert.False(t, ok)

	id, ok := GetUserID(WithUserID(context.Background(), 17))
	assert.True(t, ok)
	assert.Equal(t, 17, id)
}

func TestAuth_Handler(t *testing.T) {
	sessions := new(MockSession)
	sessions.On("Validate", mock.Anything, "good").Return(5, nil)
	sessions.On("Validate", mock.Anything, "bad").Return(0, session.ErrInvalidSession)

	a := New(sessions, slog.Default())
	var seen int
	h := a.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetUserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name     string
		header   string
		target   string
		wantCode int
		wantUser int
	}{
		{name: "header token", header: "Bearer good", target: "/", wantCode: http.StatusNoContent, wantUser: 5},
		{name: "query token", target: "/?access_token=good", wantCode: http.StatusNoContent, wantUser: 5},
		{name: "invalid token", header: "Bearer bad", target: "/", wantCode: http.StatusUnauthorized},
		{name: "no scheme", header: "good", target: "/", wantCode: http.StatusUnauthorized},
		{name: "missing", target: "/", wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = 0
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantUser, seen)
		})
	}
}

func TestAuth_Middleware(t *testing.T) {
	sessions := new(MockSession)
	sessions.On("Validate", mock.Anything, "good").Return(8, nil)
	sessions.On("Validate", mock.Anything, "bad").Return(0, session.ErrInvalidSession)

	a := New(sessions, slog.Default())

	_, api := humatest.New(t)
	api.UseMiddleware(a.Middleware())

	type out struct {
		Body struct {
			UserID int `json:"user_id"`
		}
	}
	huma.Get(api, "/me", func(ctx context.Context, _ *struct{}) (*out, error) {
		o := &out{}
		o.Body.UserID, _ = GetUserID(ctx)
		return o, nil
	})

	resp := api.Get("/me", "Authorization: Bearer good")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"user_id":8`)

	resp = api.Get("/me", "Authorization: Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = api.Get("/me")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

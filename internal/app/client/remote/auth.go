package remote

import (
	"context"
	"net/http"
	"time"
)

type credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Session результат входа
type Session struct {
	Token     string
	UserID    int
	ExpiresAt time.Time
}

// Register создает пользователя и возвращает его id
func (c *Client) Register(ctx context.Context, login, password string) (int, error) {
	var resp struct {
		UserID int `json:"user_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", credentials{login, password}, &resp); err != nil {
		return 0, err
	}
	return resp.UserID, nil
}

// Login получает токен и запоминает его для последующих запросов
func (c *Client) Login(ctx context.Context, login, password string) (Session, error) {
	var resp struct {
		Token     string    `json:"token"`
		UserID    int       `json:"user_id"`
		ExpiresIn int       `json:"expires_in"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token", credentials{login, password}, &resp); err != nil {
		return Session{}, err
	}

	c.SetToken(resp.Token)

	expires := resp.ExpiresAt
	if expires.IsZero() {
		expires = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}

	return Session{
		Token:     resp.Token,
		UserID:    resp.UserID,
		ExpiresAt: expires,
	}, nil
}

// Logout отзывает токен на сервере. Токен клиента сбрасывается в любом случае.
func (c *Client) Logout(ctx context.Context) error {
	if c.Token() == "" {
		return nil
	}
	defer c.SetToken("")
	return c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, nil)
}

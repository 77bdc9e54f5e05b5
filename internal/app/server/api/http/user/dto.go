package user

import (
	"time"

	"hemapp/internal/domain/user"
)

type registerInput struct {
	Body user.Credentials
}

type registerOutput struct {
	Status int
	Body   RegisterResponse
}

type RegisterResponse struct {
	ID     int    `json:"user_id,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type loginInput struct {
	Body user.Credentials
}

type loginOutput struct {
	Status int
	Body   LoginResponse
}

type LoginResponse struct {
	Token     string    `json:"token,omitempty"`
	UserID    int       `json:"user_id,omitempty"`
	ExpiresIn int       `json:"expires_in,omitempty" doc:"Время жизни токена в секундах"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
}

type logoutInput struct {
	Authorization string `header:"Authorization"`
}

package session

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidSession = errors.New("invalid session")

type Repository interface {
	Create(ctx context.Context, userID int, tokenHash string, expiresAt time.Time) error
	// Validate возвращает владельца непросроченной сессии или ErrInvalidSession
	Validate(ctx context.Context, tokenHash string) (int, error)
	// Revoke удаляет сессию; отсутствие сессии не ошибка
	Revoke(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

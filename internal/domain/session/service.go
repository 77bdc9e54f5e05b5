package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/exp/slog"
)

const (
	tokenBytes = 32
	TTL        = 24 * time.Hour
)

// Issued выданный клиенту токен
type Issued struct {
	Token     string
	ExpiresAt time.Time
}

type Servicer interface {
	Create(ctx context.Context, userID int) (Issued, error)
	Validate(ctx context.Context, token string) (int, error)
	Revoke(ctx context.Context, token string) error
}

type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "session_service"),
		now:  time.Now,
	}
}

// Create выдает новый bearer-токен; в базе хранится только его SHA-256
func (s *Service) Create(ctx context.Context, userID int) (Issued, error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return Issued{}, fmt.Errorf("generate token: %w", err)
	}

	issued := Issued{
		Token:     base64.URLEncoding.EncodeToString(raw),
		ExpiresAt: s.now().Add(TTL).UTC(),
	}
	if err := s.repo.Create(ctx, userID, hashToken(issued.Token), issued.ExpiresAt); err != nil {
		return Issued{}, fmt.Errorf("save session: %w", err)
	}

	s.log.Debug("session issued", "user_id", userID, "expires_at", issued.ExpiresAt)
	return issued, nil
}

func (s *Service) Validate(ctx context.Context, token string) (int, error) {
	if token == "" {
		return 0, ErrInvalidSession
	}
	return s.repo.Validate(ctx, hashToken(token))
}

// Revoke завершает сессию по токену. Пустой или неизвестный токен ничего не меняет.
func (s *Service) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.repo.Revoke(ctx, hashToken(token)); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// PurgeExpired удаляет просроченные сессии раз в interval, пока не отменен ctx
func (s *Service) PurgeExpired(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.repo.DeleteExpired(ctx, s.now())
			if err != nil {
				s.log.Error("purge expired sessions", "error", err)
				continue
			}
			if n > 0 {
				s.log.Info("expired sessions purged", "count", n)
			}
		}
	}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

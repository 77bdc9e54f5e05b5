package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

type Servicer interface {
	Register(ctx context.Context, login, password string) (int, error)
	Authenticate(ctx context.Context, login, password string) (User, error)
}

type Service struct {
	repo      Repository
	validator Validator
	log       *slog.Logger
}

func NewService(repo Repository, validator Validator, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		validator: validator,
		log:       log.With("component", "user_service"),
	}
}

// Register создает пользователя. Адрес почты в логине приводится к нижнему регистру.
func (s *Service) Register(ctx context.Context, login, password string) (int, error) {
	login = NormalizeLogin(login)
	if err := s.validator.ValidateRegister(login, password); err != nil {
		s.log.Debug("validation failed", "login", login, "error", err)
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.repo.Create(ctx, login, string(hash))
	if err != nil {
		return 0, err
	}

	s.log.Info("user registered", "user_id", id)
	return id, nil
}

func (s *Service) Authenticate(ctx context.Context, login, password string) (User, error) {
	login = NormalizeLogin(login)
	if err := s.validator.ValidateLogin(login); err != nil {
		return User{}, ErrInvalidAuth
	}

	u, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidAuth
		}
		return User{}, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return User{}, ErrInvalidAuth
	}

	return u, nil
}

// NormalizeLogin убирает пробелы по краям; email сравнивается без учета регистра
func NormalizeLogin(login string) string {
	login = strings.TrimSpace(login)
	if strings.Contains(login, "@") {
		return strings.ToLower(login)
	}
	return login
}

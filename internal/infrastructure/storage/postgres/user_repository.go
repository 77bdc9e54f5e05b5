package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"hemapp/internal/domain/table"
	"hemapp/internal/domain/user"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"
)

const uniqueViolation = "23505"

type UserRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewUserRepository(pool *pgxpool.Pool, log *slog.Logger) *UserRepository {
	return &UserRepository{
		pool: pool,
		log:  log.With("component", "user_repository"),
	}
}

// Create заводит пользователя и пустой профиль в одной транзакции
func (r *UserRepository) Create(ctx context.Context, login, passwordHash string) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int
	err = tx.QueryRow(ctx,
		`INSERT INTO users (login, password_hash) VALUES ($1, $2) RETURNING id`,
		login, passwordHash,
	).Scan(&id)
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return 0, user.ErrLoginTaken
	case err != nil:
		return 0, fmt.Errorf("insert user: %w", err)
	}

	profile, err := json.Marshal(map[string]string{"display_name": login})
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO table_rows (table_name, user_id, data) VALUES ($1, $2, $3)`,
		table.Profiles, id, profile,
	); err != nil {
		return 0, fmt.Errorf("insert profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit user: %w", err)
	}
	r.log.Debug("user created", "user_id", id)
	return id, nil
}

func (r *UserRepository) FindByLogin(ctx context.Context, login string) (user.User, error) {
	var u user.User
	row := r.pool.QueryRow(ctx,
		`SELECT id, login, password_hash, created_at FROM users WHERE login = $1`, login)
	if err := row.Scan(&u.ID, &u.Login, &u.Password, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		r.log.Error("failed to find user", "error", err)
		return user.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

package postgres

import (
	"context"
	"fmt"

	"hemapp/internal/app/server/config"
	"hemapp/internal/infrastructure/migration"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"
)

type Storage struct {
	pool *pgxpool.Pool
}

// New применяет миграции и открывает пул соединений
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Storage, error) {
	runner := migration.NewRunner(cfg.DB.Migrations, cfg.DB.DatabaseURI, nil, log)
	if _, err := runner.Up(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DB.DatabaseURI)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

func (s *Storage) Pool() *pgxpool.Pool {
	return s.pool
}

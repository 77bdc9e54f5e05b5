package logger

import (
	"io"
	"os"

	"golang.org/x/exp/slog"

	"hemapp/internal/app/server/config"
)

// New логгер в stdout для окружения. Непустой level (debug, info, warn, error) заменяет уровень окружения.
func New(env, level string) *slog.Logger {
	return NewWriter(os.Stdout, env, level)
}

// NewWriter как New, но пишет в w; клиент CLI пишет в stderr, чтобы не смешивать лог с выводом команд
func NewWriter(w io.Writer, env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: Level(env, level)}

	var h slog.Handler
	if env == config.EnvLocal {
		h = PrettyHandlerOptions{SlogOpts: opts}.NewPrettyHandler(w)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}

	return slog.New(h)
}

// Level уровень логирования: local и dev пишут debug, остальные info
func Level(env, level string) slog.Level {
	var lvl slog.Level
	if level != "" && lvl.UnmarshalText([]byte(level)) == nil {
		return lvl
	}

	switch env {
	case config.EnvLocal, config.EnvDev:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

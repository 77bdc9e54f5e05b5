package logger

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/exp/slog"
)

// Logger пишет в лог каждый обработанный HTTP-запрос
type Logger struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Logger {
	return &Logger{
		log: log.With(slog.String("component", "http_logger")),
	}
}

func (l *Logger) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()
		method := ctx.Method()
		path := ctx.URL().Path

		next(ctx)

		l.write(method, path, ctx.Status(), time.Since(start), ctx.RemoteAddr(), ctx.Operation().OperationID)
	}
}

// Handler вариант для маршрутов chi вне huma (websocket, загрузка файлов)
func (l *Logger) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		l.write(r.Method, r.URL.Path, ww.Status(), time.Since(start), r.RemoteAddr, "")
	})
}

func (l *Logger) write(method, path string, status int, duration time.Duration, remote, op string) {
	level := slog.LevelInfo
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	attrs := []any{
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Duration("duration", duration),
		slog.String("remote_addr", remote),
	}
	if op != "" {
		attrs = append(attrs, slog.String("operation", op))
	}

	l.log.Log(context.Background(), level, "HTTP request", attrs...)
}

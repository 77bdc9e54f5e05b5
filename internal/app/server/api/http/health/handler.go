package health

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

const pingTimeout = 2 * time.Second

// Pinger проверяет доступность зависимости
type Pinger interface {
	Ping(ctx context.Context) error
}

// Counter число активных realtime-подписок
type Counter interface {
	Count() int
}

type Handler struct {
	db             Pinger
	realtime       Counter
	assistantReady bool
	log            *slog.Logger
	middleware     huma.Middlewares
}

func NewHandler(db Pinger, realtime Counter, assistantReady bool, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		db:             db,
		realtime:       realtime,
		assistantReady: assistantReady,
		log:            log.With("component", "health"),
		middleware:     middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

// healthCheck используется клиентом как проба соединения
func (h *Handler) healthCheck(ctx context.Context, _ *Input) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.log.Error("database ping failed", "error", err)
		return nil, huma.Error503ServiceUnavailable("database unavailable")
	}

	resp := Response{Status: "OK", Database: "OK", Assistant: "missing_api_key"}
	if h.assistantReady {
		resp.Assistant = "configured"
	}
	if h.realtime != nil {
		resp.Subscribers = h.realtime.Count()
	}

	return &Output{Body: resp}, nil
}

package realtime

import (
	"errors"
	"net/http"
	"time"

	"hemapp/internal/app/server/api/http/middleware/auth"
	"hemapp/internal/domain/table"
	"hemapp/internal/infrastructure/realtime"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"golang.org/x/exp/slog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Message кадр, который получает клиент
type Message struct {
	Type      table.ChangeType `json:"type"`
	Table     string           `json:"table"`
	Record    map[string]any   `json:"record"`
	Timestamp time.Time        `json:"timestamp"`
}

type Broker interface {
	Subscribe(userID int, tableName string, filters []table.Filter) (*realtime.Subscription, error)
	Unsubscribe(sub *realtime.Subscription)
}

type Handler struct {
	broker   Broker
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(broker Broker, log *slog.Logger) *Handler {
	return &Handler{
		broker: broker,
		log:    log.With("component", "realtime_handler"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// токен проверен до апгрейда
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) SetupRoutes(r chi.Router) {
	r.Get("/realtime/v1", h.serveWS)
}

// serveWS GET /realtime/v1?table=messages&filter=receiver_id=eq.42
func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	filters, err := table.ParseFilters(r.URL.Query()["filter"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sub, err := h.broker.Subscribe(userID, r.URL.Query().Get("table"), filters)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, table.ErrUnknownTable) {
			code = http.StatusBadRequest
		}
		http.Error(w, err.Error(), code)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.broker.Unsubscribe(sub)
		h.log.Warn("upgrade failed", "error", err)
		return
	}

	h.log.Info("realtime client connected", "user_id", userID, "table", sub.Table())

	done := make(chan struct{})
	go h.readPump(conn, done)
	h.writePump(conn, sub, done)

	h.broker.Unsubscribe(sub)
	h.log.Info("realtime client disconnected", "user_id", userID, "table", sub.Table())
}

// readPump читает только служебные кадры; закрывает done при отключении клиента
func (h *Handler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("read error", "error", err)
			}
			return
		}
	}
}

func (h *Handler) writePump(conn *websocket.Conn, sub *realtime.Subscription, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case change, ok := <-sub.C():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "subscription closed"))
				return
			}
			msg := Message{
				Type:      change.Type,
				Table:     change.Table,
				Record:    change.Record.Record(),
				Timestamp: change.Timestamp,
			}
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("write failed", "error", err)
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return
		}
	}
}

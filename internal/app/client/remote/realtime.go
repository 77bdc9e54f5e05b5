package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Change событие изменения строки из realtime-канала
type Change struct {
	Type      string    `json:"type"`
	Table     string    `json:"table"`
	Record    Row       `json:"record"`
	Timestamp time.Time `json:"timestamp"`
}

// Subscription одна открытая realtime-подписка
type Subscription struct {
	conn  *websocket.Conn
	table string
	once  sync.Once
	done  chan struct{}
}

func (s *Subscription) Table() string {
	return s.table
}

// Done закрывается, когда соединение завершено
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Unsubscribe закрывает именно этот канал и дожидается остановки чтения. Повторный вызов безопасен.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = s.conn.Close()
	})
	<-s.done
}

// Subscribe открывает websocket на изменения таблицы. handler вызывается из горутины чтения.
func (c *Client) Subscribe(ctx context.Context, table string, filters []string, handler func(Change)) (*Subscription, error) {
	u, err := c.realtimeURL(table, filters)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("User-Agent", c.userAgent)
	if token := c.Token(); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u, header)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			return nil, &APIError{Status: resp.StatusCode, Message: err.Error()}
		}
		return nil, fmt.Errorf("ошибка подключения к realtime: %w", err)
	}

	sub := &Subscription{conn: conn, table: table, done: make(chan struct{})}
	go c.readLoop(sub, handler)

	c.log.Debug("realtime subscribed", "table", table, "filters", filters)
	return sub, nil
}

func (c *Client) readLoop(sub *Subscription, handler func(Change)) {
	defer close(sub.done)

	for {
		_, data, err := sub.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warn("realtime connection closed", "table", sub.table, "error", err)
			}
			return
		}

		var ch Change
		if err := json.Unmarshal(data, &ch); err != nil {
			c.log.Warn("bad realtime frame", "error", err)
			continue
		}
		handler(ch)
	}
}

func (c *Client) realtimeURL(table string, filters []string) (string, error) {
	u, err := url.Parse(c.baseURL + "/realtime/v1")
	if err != nil {
		return "", fmt.Errorf("некорректный адрес сервера: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	q := url.Values{}
	q.Set("table", table)
	for _, f := range filters {
		q.Add("filter", f)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

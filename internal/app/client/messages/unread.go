// Package messages счетчик непрочитанных сообщений, обновляемый через realtime.
package messages

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/exp/slog"

	"hemapp/internal/app/client/remote"
)

const table = "messages"

// Remote операции сервера, нужные счетчику
type Remote interface {
	Count(ctx context.Context, table string, filters []string) (int, error)
	Update(ctx context.Context, table string, id int64, patch any) (remote.Row, error)
	Subscribe(ctx context.Context, table string, filters []string, handler func(remote.Change)) (*remote.Subscription, error)
}

type UnreadCounter struct {
	remote Remote
	userID int
	log    *slog.Logger

	mu        sync.Mutex
	ctx       context.Context
	count     int
	listeners []func(int)
	sub       *remote.Subscription
}

func NewUnreadCounter(r Remote, userID int, log *slog.Logger) *UnreadCounter {
	return &UnreadCounter{
		remote: r,
		userID: userID,
		log:    log.With("component", "unread_counter", "user_id", userID),
	}
}

func (c *UnreadCounter) receiverFilter() string {
	return "receiver_id=eq." + strconv.Itoa(c.userID)
}

// Start загружает текущее число и подписывается на изменения сообщений пользователя
func (c *UnreadCounter) Start(ctx context.Context) error {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	if err := c.Refresh(ctx); err != nil {
		return err
	}

	sub, err := c.remote.Subscribe(ctx, table, []string{c.receiverFilter()}, c.handle)
	if err != nil {
		return fmt.Errorf("subscribe to messages: %w", err)
	}

	c.mu.Lock()
	c.sub = sub
	c.mu.Unlock()
	return nil
}

// Stop закрывает подписку
func (c *UnreadCounter) Stop() {
	c.mu.Lock()
	sub := c.sub
	c.sub = nil
	c.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}

// Refresh перечитывает число непрочитанных с сервера
func (c *UnreadCounter) Refresh(ctx context.Context) error {
	n, err := c.remote.Count(ctx, table, []string{c.receiverFilter(), "read=eq.false"})
	if err != nil {
		return fmt.Errorf("count unread messages: %w", err)
	}

	c.set(n)
	return nil
}

func (c *UnreadCounter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// OnChange регистрирует обработчик нового значения счетчика
func (c *UnreadCounter) OnChange(fn func(count int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// MarkRead помечает сообщение прочитанным и обновляет счетчик
func (c *UnreadCounter) MarkRead(ctx context.Context, id int64) error {
	if _, err := c.remote.Update(ctx, table, id, map[string]any{"read": true}); err != nil {
		return fmt.Errorf("mark message %d read: %w", id, err)
	}
	return c.Refresh(ctx)
}

func (c *UnreadCounter) handle(ch remote.Change) {
	switch ch.Type {
	case "INSERT":
		if isUnread(ch.Record) {
			c.add(1)
		}
	default:
		c.mu.Lock()
		ctx := c.ctx
		c.mu.Unlock()

		if err := c.Refresh(ctx); err != nil {
			c.log.Warn("refresh after change failed", "type", ch.Type, "error", err)
		}
	}
}

// isUnread совпадает с серверным фильтром read=eq.false
func isUnread(rec remote.Row) bool {
	read, ok := rec["read"].(bool)
	return ok && !read
}

func (c *UnreadCounter) add(delta int) {
	c.mu.Lock()
	c.count += delta
	n := c.count
	listeners := append(([]func(int))(nil), c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(n)
	}
}

func (c *UnreadCounter) set(n int) {
	c.mu.Lock()
	changed := c.count != n
	c.count = n
	listeners := append(([]func(int))(nil), c.listeners...)
	c.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range listeners {
		fn(n)
	}
}

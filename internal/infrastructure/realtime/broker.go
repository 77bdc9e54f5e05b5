package realtime

import (
	"sync"

	"hemapp/internal/domain/table"

	"golang.org/x/exp/slog"
)

const defaultBuffer = 64

// Subscription канал изменений одной таблицы, отфильтрованных для одного пользователя
type Subscription struct {
	id      uint64
	table   string
	userID  int
	shared  string
	filters []table.Filter
	ch      chan table.Change
}

// C канал событий; закрывается после Unsubscribe
func (s *Subscription) C() <-chan table.Change {
	return s.ch
}

func (s *Subscription) Table() string {
	return s.table
}

func (s *Subscription) matches(c table.Change) bool {
	return c.Table == s.table &&
		c.Record.VisibleTo(s.userID, s.shared) &&
		table.MatchAll(s.filters, c.Record)
}

// Broker раздает события изменения строк подписчикам.
// Медленный подписчик с переполненным буфером отключается.
type Broker struct {
	mu     sync.Mutex
	subs   map[uint64]*Subscription
	nextID uint64
	buffer int
	log    *slog.Logger
}

func NewBroker(log *slog.Logger) *Broker {
	return &Broker{
		subs:   make(map[uint64]*Subscription),
		buffer: defaultBuffer,
		log:    log.With("component", "realtime_broker"),
	}
}

func (b *Broker) Subscribe(userID int, tableName string, filters []table.Filter) (*Subscription, error) {
	coll, err := table.Lookup(tableName)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		id:      b.nextID,
		table:   coll.Name,
		userID:  userID,
		shared:  coll.SharedKey,
		filters: filters,
		ch:      make(chan table.Change, b.buffer),
	}
	b.subs[sub.id] = sub

	b.log.Debug("subscribed", "id", sub.id, "table", sub.table, "user_id", userID, "total", len(b.subs))
	return sub, nil
}

// Unsubscribe идемпотентен
func (b *Broker) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.remove(sub)
}

func (b *Broker) Publish(change table.Change) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		if !sub.matches(change) {
			continue
		}
		select {
		case sub.ch <- change:
		default:
			b.log.Warn("subscriber buffer full, dropping", "id", sub.id, "table", sub.table)
			b.remove(sub)
		}
	}
}

// Count число активных подписок
func (b *Broker) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.subs)
}

// Close отключает всех подписчиков
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		b.remove(sub)
	}
}

func (b *Broker) remove(sub *Subscription) {
	if _, ok := b.subs[sub.id]; !ok {
		return
	}
	delete(b.subs, sub.id)
	close(sub.ch)
}

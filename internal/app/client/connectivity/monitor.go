// Package connectivity хранит текущее состояние сети клиента.
// Состояние меняется только событиями Report, монитор сам ничего не опрашивает.
package connectivity

import (
	"context"
	"sync"

	"golang.org/x/exp/slog"

	"hemapp/internal/app/client/notify"
)

type Monitor struct {
	mu       sync.RWMutex
	online   bool
	nextID   int
	subs     map[int]func(online bool)
	notifier notify.Notifier
	log      *slog.Logger
}

func NewMonitor(initial bool, notifier notify.Notifier, log *slog.Logger) *Monitor {
	return &Monitor{
		online:   initial,
		subs:     make(map[int]func(bool)),
		notifier: notifier,
		log:      log.With("component", "connectivity"),
	}
}

func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// Report применяет событие сети. Уведомление и подписчики срабатывают только на смену состояния.
func (m *Monitor) Report(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online

	subs := make([]func(bool), 0, len(m.subs))
	for id := 0; id < m.nextID; id++ {
		if fn, ok := m.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	m.mu.Unlock()

	m.log.Info("connectivity changed", "online", online)
	if online {
		m.notifier.Notify(notify.LevelSuccess, "Back online", "Syncing your data...")
	} else {
		m.notifier.Notify(notify.LevelWarn, "You're offline", "Changes will be saved locally and synced later.")
	}

	for _, fn := range subs {
		fn(online)
	}
}

// Subscribe регистрирует обработчик переходов. Возвращает функцию отписки.
func (m *Monitor) Subscribe(fn func(online bool)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

// Watch применяет события из канала, пока не закончится контекст или канал
func (m *Monitor) Watch(ctx context.Context, events <-chan bool) {
	for {
		select {
		case <-ctx.Done():
			return
		case online, ok := <-events:
			if !ok {
				return
			}
			m.Report(online)
		}
	}
}

package connectivity

import (
	"context"
	"time"
)

// HealthChecker проверка доступности сервера
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Prober превращает результаты health-check в события для Monitor.Watch
type Prober struct {
	checker  HealthChecker
	interval time.Duration
	timeout  time.Duration
}

func NewProber(checker HealthChecker, interval time.Duration) *Prober {
	timeout := interval / 2
	if timeout <= 0 {
		timeout = time.Second
	}
	return &Prober{checker: checker, interval: interval, timeout: timeout}
}

// Probe один health-check
func (p *Prober) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.checker.HealthCheck(ctx) == nil
}

// Run шлет результат проверки сразу и затем каждые interval. Канал закрывается по ctx.
func (p *Prober) Run(ctx context.Context) <-chan bool {
	events := make(chan bool, 1)

	go func() {
		defer close(events)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case events <- p.Probe(ctx):
			case <-ctx.Done():
				return
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events
}

package offline

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultMaxAttempts  = 5
	DefaultInitialDelay = 5 * time.Second
	DefaultMaxDelay     = 10 * time.Minute
)

// RetryPolicy ограниченная экспоненциальная задержка между попытками отправки
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  DefaultMaxAttempts,
		InitialDelay: DefaultInitialDelay,
		MaxDelay:     DefaultMaxDelay,
	}
}

// Delay задержка после attempts неудачных попыток (attempts >= 1)
func (p RetryPolicy) Delay(attempts int) time.Duration {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     p.InitialDelay,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         p.MaxDelay,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	b.Reset()

	d := b.NextBackOff()
	for i := 1; i < attempts; i++ {
		d = b.NextBackOff()
	}
	return d
}

// Exhausted больше попыток не будет
func (p RetryPolicy) Exhausted(attempts int) bool {
	return attempts >= p.MaxAttempts
}

// eligible может ли запись участвовать в очередном проходе Flush
func (p RetryPolicy) eligible(r SyncRecord, now time.Time) bool {
	switch r.Status {
	case StatusPending:
		return true
	case StatusFailed:
		return !p.Exhausted(r.Attempts) && !now.Before(r.NextAttemptAt)
	}
	return false
}

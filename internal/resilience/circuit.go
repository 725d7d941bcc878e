// Package resilience guards calls to flaky dependencies. The circuit breaker
// trips after consecutive failures and probes again once a cooldown passes.
package resilience

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// State is the breaker position.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// ErrOpen is returned when the breaker rejects a call without attempting it.
var ErrOpen = eris.New("resilience: circuit open")

// Breaker trips open after a run of consecutive failures. While open, calls
// fail fast until the cooldown elapses; the next call then probes half-open,
// and one success recloses the circuit.
type Breaker struct {
	name      string
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
}

// NewBreaker creates a Breaker for the named dependency.
func NewBreaker(name string, threshold int, cooldown time.Duration) *Breaker {
	if threshold < 1 {
		threshold = 1
	}
	return &Breaker{
		name:      name,
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// WithClock overrides the time source for tests.
func (b *Breaker) WithClock(now func() time.Time) *Breaker {
	b.now = now
	return b
}

// Do runs fn under circuit protection.
func (b *Breaker) Do(fn func() error) error {
	if err := b.allow(); err != nil {
		return err
	}
	err := fn()
	b.record(err)
	return err
}

// State reports the current breaker position.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cooldown {
		return StateHalfOpen
	}
	return b.state
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if b.now().Sub(b.openedAt) < b.cooldown {
			return eris.Wrapf(ErrOpen, "resilience: %s rejecting calls", b.name)
		}
		b.state = StateHalfOpen
		zap.L().Info("resilience: circuit half-open, probing",
			zap.String("breaker", b.name),
		)
	}
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		if b.state != StateClosed {
			zap.L().Info("resilience: circuit closed",
				zap.String("breaker", b.name),
			)
		}
		b.state = StateClosed
		b.failures = 0
		return
	}

	b.failures++
	if b.state == StateHalfOpen || b.failures >= b.threshold {
		b.state = StateOpen
		b.openedAt = b.now()
		zap.L().Warn("resilience: circuit opened",
			zap.String("breaker", b.name),
			zap.Int("consecutive_failures", b.failures),
			zap.Duration("cooldown", b.cooldown),
		)
	}
}

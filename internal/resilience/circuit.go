package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// BreakerState is the state of a Breaker.
type BreakerState int

const (
	// BreakerClosed lets calls through.
	BreakerClosed BreakerState = iota
	// BreakerOpen rejects calls until the cooldown passes.
	BreakerOpen
	// BreakerHalfOpen lets one trial call through.
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrBreakerOpen is returned when a call is rejected without being made.
var ErrBreakerOpen = eris.New("resilience: provider circuit is open")

// BreakerConfig controls when a Breaker opens and how long it stays open.
type BreakerConfig struct {
	// Name identifies the provider in logs.
	Name string
	// Threshold is the number of consecutive transient failures that opens
	// the breaker.
	Threshold int
	Cooldown  time.Duration
}

// DefaultBreakerConfig opens after five straight failures for 30 seconds.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{Name: name, Threshold: 5, Cooldown: 30 * time.Second}
}

// Breaker stops calling a provider that keeps failing, so a batch of images
// fails fast instead of each one waiting out its retries.
type Breaker struct {
	cfg BreakerConfig
	now func() time.Time

	mu       sync.Mutex
	state    BreakerState
	failures int
	openedAt time.Time
	inTrial  bool
}

// NewBreaker creates a closed Breaker. Non-positive fields take the default.
func NewBreaker(cfg BreakerConfig) *Breaker {
	def := DefaultBreakerConfig(cfg.Name)
	if cfg.Threshold <= 0 {
		cfg.Threshold = def.Threshold
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	return &Breaker{cfg: cfg, now: time.Now}
}

// State reports the current state, counting an expired cooldown as
// half-open.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == BreakerOpen && b.now().Sub(b.openedAt) >= b.cfg.Cooldown {
		return BreakerHalfOpen
	}
	return b.state
}

// BreakVal runs fn unless b is open. Only transient errors count as
// failures; a permanent error such as a bad image says nothing about the
// provider's health.
func BreakVal[T any](ctx context.Context, b *Breaker, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := b.allow(); err != nil {
		return zero, err
	}
	val, err := fn(ctx)
	b.record(err)
	return val, err
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerOpen:
		if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
			return eris.Wrapf(ErrBreakerOpen, "%s", b.cfg.Name)
		}
		b.setState(BreakerHalfOpen)
		b.inTrial = true
		return nil
	case BreakerHalfOpen:
		if b.inTrial {
			return eris.Wrapf(ErrBreakerOpen, "%s trial call in flight", b.cfg.Name)
		}
		b.inTrial = true
	}
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.inTrial = false
	if !IsTransient(err) {
		b.failures = 0
		if b.state != BreakerClosed {
			b.setState(BreakerClosed)
		}
		return
	}

	b.failures++
	if b.state == BreakerHalfOpen || b.failures >= b.cfg.Threshold {
		b.openedAt = b.now()
		b.setState(BreakerOpen)
	}
}

func (b *Breaker) setState(to BreakerState) {
	if b.state == to {
		return
	}
	zap.L().Warn("resilience: breaker state change",
		zap.String("provider", b.cfg.Name),
		zap.String("from", b.state.String()),
		zap.String("to", to.String()),
		zap.Int("failures", b.failures),
	)
	b.state = to
}

package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned without calling the operation while the breaker is
// open.
var ErrOpen = errors.New("resilience: circuit open")

// State is the breaker position.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// BreakerConfig configures a Breaker.
type BreakerConfig struct {
	// Name labels state change callbacks.
	Name string
	// MaxFailures consecutive failures open the breaker. Defaults to 5.
	MaxFailures int
	// OpenTimeout is how long the breaker stays open before it lets a
	// single probe through. Defaults to 30s.
	OpenTimeout time.Duration
	// IsFailure decides which errors count. Defaults to every non-nil
	// error. Errors it rejects are returned but leave the breaker alone.
	IsFailure func(error) bool
	// OnStateChange is called with the breaker lock released.
	OnStateChange func(name string, from, to State)
	// Now overrides the clock.
	Now func() time.Time
}

// Breaker is a consecutive-failure circuit breaker. It is safe for
// concurrent use.
type Breaker struct {
	cfg BreakerConfig

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
}

// NewBreaker creates a closed breaker.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.IsFailure == nil {
		cfg.IsFailure = func(err error) bool { return err != nil }
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Breaker{cfg: cfg}
}

// Execute runs fn unless the breaker is open. While half-open only one
// call at a time is let through; its outcome closes or reopens the breaker.
func (b *Breaker) Execute(fn func() error) error {
	probe, ok := b.admit()
	if !ok {
		return ErrOpen
	}
	err := fn()
	b.record(probe, b.cfg.IsFailure(err))
	return err
}

// State returns the current position, moving open to half-open once the
// open period has passed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && b.cfg.Now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		return StateHalfOpen
	}
	return b.state
}

// Reset closes the breaker.
func (b *Breaker) Reset() {
	b.transition(func() { b.failures, b.probing = 0, false }, StateClosed)
}

func (b *Breaker) admit() (probe, ok bool) {
	b.mu.Lock()
	switch b.state {
	case StateClosed:
		b.mu.Unlock()
		return false, true
	case StateOpen:
		if b.cfg.Now().Sub(b.openedAt) < b.cfg.OpenTimeout {
			b.mu.Unlock()
			return false, false
		}
		from := b.state
		b.state, b.probing = StateHalfOpen, true
		b.mu.Unlock()
		b.notify(from, StateHalfOpen)
		return true, true
	default:
		if b.probing {
			b.mu.Unlock()
			return false, false
		}
		b.probing = true
		b.mu.Unlock()
		return true, true
	}
}

func (b *Breaker) record(probe, failed bool) {
	b.mu.Lock()
	from := b.state
	switch {
	case !failed && (probe || b.state == StateClosed):
		b.state, b.failures, b.probing = StateClosed, 0, false
	case failed && probe:
		b.state, b.openedAt, b.probing = StateOpen, b.cfg.Now(), false
	case failed && b.state == StateClosed:
		b.failures++
		if b.failures >= b.cfg.MaxFailures {
			b.state, b.openedAt = StateOpen, b.cfg.Now()
		}
	}
	to := b.state
	b.mu.Unlock()

	if from != to {
		b.notify(from, to)
	}
}

func (b *Breaker) transition(reset func(), to State) {
	b.mu.Lock()
	from := b.state
	b.state = to
	reset()
	b.mu.Unlock()
	if from != to {
		b.notify(from, to)
	}
}

func (b *Breaker) notify(from, to State) {
	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(b.cfg.Name, from, to)
	}
}

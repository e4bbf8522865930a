package gateway

import (
	"errors"
	"sync"
	"time"
)

// ErrBreakerOpen rejects a call without contacting the remote endpoint
var ErrBreakerOpen = errors.New("circuit breaker is open")

// BreakerState represents the current mode of a circuit breaker
type BreakerState string

const (
	BreakerClosed   BreakerState = "closed"
	BreakerOpen     BreakerState = "open"
	BreakerHalfOpen BreakerState = "half_open"
)

// BreakerConfig tunes a per-dependency circuit breaker
type BreakerConfig struct {
	// FailureRateThreshold opens the breaker when the failure rate within
	// the rolling window reaches this fraction (0..1].
	FailureRateThreshold float64

	// WindowSize is the number of most recent call outcomes kept in the
	// rolling window.
	WindowSize int

	// MinimumCalls outcomes must be observed before the failure rate is
	// evaluated at all.
	MinimumCalls int

	// Cooldown is how long the breaker stays open before allowing trial
	// calls.
	Cooldown time.Duration

	// HalfOpenMaxCalls bounds the number of trial calls allowed through
	// while half-open.
	HalfOpenMaxCalls int
}

// DefaultBreakerConfig returns the breaker tuning used when config omits it
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureRateThreshold: 0.5,
		WindowSize:           10,
		MinimumCalls:         4,
		Cooldown:             10 * time.Second,
		HalfOpenMaxCalls:     1,
	}
}

// stateChange captures a transition to notify observers outside the lock
type stateChange struct {
	from, to BreakerState
}

// CircuitBreaker is an explicit three-state machine guarding one downstream
// dependency. State is shared by every saga calling that dependency;
// transitions are driven purely by reported call outcomes, so the machine is
// testable without any network.
type CircuitBreaker struct {
	name string
	cfg  BreakerConfig
	now  func() time.Time

	// OnStateChange, when set, observes every transition. Called outside
	// the lock.
	OnStateChange func(name string, from, to BreakerState)

	mu            sync.Mutex
	state         BreakerState
	outcomes      []bool // rolling window, true = failure
	openedAt      time.Time
	halfOpenCalls int
}

// NewCircuitBreaker creates a closed breaker for the named dependency
func NewCircuitBreaker(name string, cfg BreakerConfig) *CircuitBreaker {
	if cfg.WindowSize <= 0 {
		cfg = DefaultBreakerConfig()
	}
	return &CircuitBreaker{
		name:  name,
		cfg:   cfg,
		now:   time.Now,
		state: BreakerClosed,
	}
}

// Allow reports whether a call may proceed. It returns ErrBreakerOpen while
// the breaker is open and its cooldown has not elapsed, or when the half-open
// trial budget is exhausted.
func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	var changes []stateChange

	if b.state == BreakerOpen && b.now().Sub(b.openedAt) >= b.cfg.Cooldown {
		changes = b.transition(BreakerHalfOpen, changes)
	}

	var err error
	switch b.state {
	case BreakerClosed:
		err = nil
	case BreakerOpen:
		err = ErrBreakerOpen
	case BreakerHalfOpen:
		if b.halfOpenCalls >= b.cfg.HalfOpenMaxCalls {
			err = ErrBreakerOpen
		} else {
			b.halfOpenCalls++
		}
	}

	b.mu.Unlock()
	b.notify(changes)
	return err
}

// ReportSuccess records a successful call outcome
func (b *CircuitBreaker) ReportSuccess() {
	b.mu.Lock()
	var changes []stateChange

	switch b.state {
	case BreakerClosed:
		b.record(false)
	case BreakerHalfOpen:
		// A trial success closes the breaker and resets the window.
		b.outcomes = nil
		changes = b.transition(BreakerClosed, changes)
	}

	b.mu.Unlock()
	b.notify(changes)
}

// ReportFailure records a failed or timed-out call outcome
func (b *CircuitBreaker) ReportFailure() {
	b.mu.Lock()
	var changes []stateChange

	switch b.state {
	case BreakerClosed:
		b.record(true)
		if b.shouldTrip() {
			b.openedAt = b.now()
			changes = b.transition(BreakerOpen, changes)
		}
	case BreakerHalfOpen:
		// A trial failure reopens the breaker; the cooldown restarts.
		b.openedAt = b.now()
		changes = b.transition(BreakerOpen, changes)
	}

	b.mu.Unlock()
	b.notify(changes)
}

// State returns the current breaker mode
func (b *CircuitBreaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// record appends an outcome to the rolling window, evicting the oldest
func (b *CircuitBreaker) record(failure bool) {
	b.outcomes = append(b.outcomes, failure)
	if len(b.outcomes) > b.cfg.WindowSize {
		b.outcomes = b.outcomes[1:]
	}
}

func (b *CircuitBreaker) shouldTrip() bool {
	if len(b.outcomes) < b.cfg.MinimumCalls {
		return false
	}

	failures := 0
	for _, failed := range b.outcomes {
		if failed {
			failures++
		}
	}

	rate := float64(failures) / float64(len(b.outcomes))
	return rate >= b.cfg.FailureRateThreshold
}

// transition must be called with the lock held
func (b *CircuitBreaker) transition(to BreakerState, changes []stateChange) []stateChange {
	if b.state == to {
		return changes
	}

	from := b.state
	b.state = to
	if to == BreakerHalfOpen {
		b.halfOpenCalls = 0
	}

	return append(changes, stateChange{from: from, to: to})
}

// notify must be called without the lock held
func (b *CircuitBreaker) notify(changes []stateChange) {
	if b.OnStateChange == nil {
		return
	}
	for _, c := range changes {
		b.OnStateChange(b.name, c.from, c.to)
	}
}

package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives the breaker's cooldown without sleeping
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time { return c.current }

func (c *fakeClock) Advance(d time.Duration) { c.current = c.current.Add(d) }

func newTestBreaker(cfg BreakerConfig) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	b := NewCircuitBreaker("inventory", cfg)
	b.now = clock.Now
	return b, clock
}

func failN(b *CircuitBreaker, n int) {
	for i := 0; i < n; i++ {
		b.ReportFailure()
	}
}

func TestCircuitBreaker_TripsAtFailureRate(t *testing.T) {
	b, _ := newTestBreaker(BreakerConfig{
		FailureRateThreshold: 0.5,
		WindowSize:           10,
		MinimumCalls:         4,
		Cooldown:             10 * time.Second,
		HalfOpenMaxCalls:     1,
	})

	// Below the minimum call count nothing trips, even at 100% failures.
	failN(b, 3)
	assert.Equal(t, BreakerClosed, b.State())
	assert.NoError(t, b.Allow())

	b.ReportFailure()
	assert.Equal(t, BreakerOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrBreakerOpen)
}

func TestCircuitBreaker_MixedOutcomesBelowThresholdStayClosed(t *testing.T) {
	b, _ := newTestBreaker(BreakerConfig{
		FailureRateThreshold: 0.5,
		WindowSize:           10,
		MinimumCalls:         4,
		Cooldown:             10 * time.Second,
		HalfOpenMaxCalls:     1,
	})

	// 4 failures in a window of 10 is a 40% rate.
	for i := 0; i < 6; i++ {
		b.ReportSuccess()
	}
	failN(b, 4)

	assert.Equal(t, BreakerClosed, b.State())
	assert.NoError(t, b.Allow())
}

func TestCircuitBreaker_WindowEvictsOldOutcomes(t *testing.T) {
	b, _ := newTestBreaker(BreakerConfig{
		FailureRateThreshold: 0.5,
		WindowSize:           4,
		MinimumCalls:         4,
		Cooldown:             10 * time.Second,
		HalfOpenMaxCalls:     1,
	})

	// Two old failures slide out as successes arrive.
	failN(b, 2)
	for i := 0; i < 3; i++ {
		b.ReportSuccess()
	}

	// Window is now [fail, success, success, success], a 25% rate.
	b.ReportSuccess()
	assert.Equal(t, BreakerClosed, b.State())
}

func TestCircuitBreaker_CooldownGatesHalfOpen(t *testing.T) {
	b, clock := newTestBreaker(BreakerConfig{
		FailureRateThreshold: 0.5,
		WindowSize:           10,
		MinimumCalls:         4,
		Cooldown:             10 * time.Second,
		HalfOpenMaxCalls:     1,
	})

	failN(b, 4)
	require.Equal(t, BreakerOpen, b.State())

	// Before the cooldown elapses every call is rejected.
	clock.Advance(9 * time.Second)
	assert.ErrorIs(t, b.Allow(), ErrBreakerOpen)
	assert.Equal(t, BreakerOpen, b.State())

	// After the cooldown one trial call is admitted.
	clock.Advance(1 * time.Second)
	assert.NoError(t, b.Allow())
	assert.Equal(t, BreakerHalfOpen, b.State())

	// The trial budget is spent; further calls are rejected.
	assert.ErrorIs(t, b.Allow(), ErrBreakerOpen)
}

func TestCircuitBreaker_HalfOpenSuccessCloses(t *testing.T) {
	b, clock := newTestBreaker(BreakerConfig{
		FailureRateThreshold: 0.5,
		WindowSize:           10,
		MinimumCalls:         4,
		Cooldown:             10 * time.Second,
		HalfOpenMaxCalls:     1,
	})

	failN(b, 4)
	clock.Advance(10 * time.Second)
	require.NoError(t, b.Allow())

	b.ReportSuccess()

	assert.Equal(t, BreakerClosed, b.State())

	// The window was reset, so the old failures cannot re-trip the breaker.
	b.ReportFailure()
	assert.Equal(t, BreakerClosed, b.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	b, clock := newTestBreaker(BreakerConfig{
		FailureRateThreshold: 0.5,
		WindowSize:           10,
		MinimumCalls:         4,
		Cooldown:             10 * time.Second,
		HalfOpenMaxCalls:     1,
	})

	failN(b, 4)
	clock.Advance(10 * time.Second)
	require.NoError(t, b.Allow())

	b.ReportFailure()

	assert.Equal(t, BreakerOpen, b.State())

	// The cooldown restarts from the trial failure.
	clock.Advance(9 * time.Second)
	assert.ErrorIs(t, b.Allow(), ErrBreakerOpen)
	clock.Advance(1 * time.Second)
	assert.NoError(t, b.Allow())
}

func TestCircuitBreaker_NotifiesStateChanges(t *testing.T) {
	b, clock := newTestBreaker(BreakerConfig{
		FailureRateThreshold: 0.5,
		WindowSize:           10,
		MinimumCalls:         4,
		Cooldown:             10 * time.Second,
		HalfOpenMaxCalls:     1,
	})

	type transition struct {
		from, to BreakerState
	}
	var seen []transition
	b.OnStateChange = func(name string, from, to BreakerState) {
		assert.Equal(t, "inventory", name)
		seen = append(seen, transition{from: from, to: to})
	}

	failN(b, 4)
	clock.Advance(10 * time.Second)
	require.NoError(t, b.Allow())
	b.ReportSuccess()

	assert.Equal(t, []transition{
		{from: BreakerClosed, to: BreakerOpen},
		{from: BreakerOpen, to: BreakerHalfOpen},
		{from: BreakerHalfOpen, to: BreakerClosed},
	}, seen)
}

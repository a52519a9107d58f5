package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreaker_InitialState(t *testing.T) {
	b := New("test")
	assert.False(t, b.IsOpen())
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "test", b.Name())
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := New("test", WithFailureThreshold(3))

	// First two failures don't open
	useFallback, change := b.RecordFailure()
	assert.False(t, useFallback)
	assert.False(t, change.Opened)

	useFallback, change = b.RecordFailure()
	assert.False(t, useFallback)
	assert.False(t, change.Opened)

	// Third failure opens the circuit
	useFallback, change = b.RecordFailure()
	assert.True(t, useFallback)
	assert.True(t, change.Opened)
	assert.True(t, b.IsOpen())
}

func TestBreaker_ClosesAfterSuccessThreshold(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	b := New("test", WithFailureThreshold(1), WithSuccessThreshold(2), WithCooldown(time.Second), WithClock(clock))

	// Open the circuit
	b.RecordFailure()
	assert.True(t, b.IsOpen())

	// Cooldown elapses, breaker probes half-open
	now = now.Add(2 * time.Second)
	assert.Equal(t, StateHalfOpen, b.State())

	change := b.RecordSuccess()
	assert.False(t, change.Closed)

	change = b.RecordSuccess()
	assert.True(t, change.Closed)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	b := New("test", WithFailureThreshold(1), WithCooldown(time.Second), WithClock(clock))

	b.RecordFailure()
	now = now.Add(2 * time.Second)
	assert.Equal(t, StateHalfOpen, b.State())

	useFallback, change := b.RecordFailure()
	assert.True(t, useFallback)
	assert.True(t, change.Opened)
	assert.True(t, b.IsOpen())
}

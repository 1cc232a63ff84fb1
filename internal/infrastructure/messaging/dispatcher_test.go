package messaging

import (
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
)

func newTestDispatcher(t *testing.T, bus shared.EventBus) *Dispatcher {
	t.Helper()
	d := NewDispatcherBuilder(bus).
		WithRetryConfig(RetryConfig{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond, BackoffMultiplier: 1}).
		WithDeadLetterQueue(10).
		Build()
	t.Cleanup(func() { _ = d.Stop() })
	return d
}

func TestDispatcher_RoutesBusEventsToRegisteredHandler(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	defer func() { _ = bus.Close() }()
	d := newTestDispatcher(t, bus)

	var calls atomic.Int64
	require.NoError(t, d.Register(shared.EventLevelUp, "announce", func(shared.Event) error {
		calls.Add(1)
		return nil
	}))
	require.NoError(t, d.Start())

	require.NoError(t, bus.Publish(shared.NewLevelUpEvent(7, 1, 0, 1)))
	require.NoError(t, bus.Publish(shared.NewXPAwardedEvent(7, 1, 10, 10, 0)))

	assert.Equal(t, int64(1), calls.Load())
}

func TestDispatcher_RetriesThenDeadLetters(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	defer func() { _ = bus.Close() }()
	d := newTestDispatcher(t, bus)

	var attempts atomic.Int64
	require.NoError(t, d.RegisterHandler(shared.EventXPAwarded, HandlerRegistration{
		Name: "always_fails",
		Handler: func(shared.Event) error {
			attempts.Add(1)
			return assert.AnError
		},
		MaxRetries: 2,
	}))

	err := d.Dispatch(shared.NewXPAwardedEvent(7, 1, 10, 10, 0))
	require.Error(t, err)

	assert.Equal(t, int64(3), attempts.Load())
	require.Equal(t, 1, d.DeadLetterQueue().Size())

	entry, ok := d.DeadLetterQueue().Pop()
	require.True(t, ok)
	assert.Equal(t, "always_fails", entry.HandlerName)
	assert.Equal(t, 3, entry.Attempts)
	assert.ErrorIs(t, entry.Error, assert.AnError)
}

func TestDispatcher_RecoveryMiddlewareTurnsPanicIntoError(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	defer func() { _ = bus.Close() }()
	d := newTestDispatcher(t, bus)
	d.Use(RecoveryMiddleware(slog.Default()))

	require.NoError(t, d.RegisterHandler(shared.EventLevelUp, HandlerRegistration{
		Name:       "panics",
		Handler:    func(shared.Event) error { panic("boom") },
		MaxRetries: 1,
	}))

	err := d.Dispatch(shared.NewLevelUpEvent(7, 1, 0, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler panic")
}

func TestDispatcher_LevelUpDefaultsRetryHarder(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	defer func() { _ = bus.Close() }()
	d := newTestDispatcher(t, bus)

	assert.Equal(t, 5, d.registrationDefaults(shared.EventLevelUp).MaxRetries)

	cohortDefaults := d.registrationDefaults(shared.EventCohortInitialized)
	assert.False(t, cohortDefaults.Async)
	assert.Equal(t, 1, cohortDefaults.MaxRetries)

	assert.True(t, d.registrationDefaults(shared.EventXPAwarded).Async)
}

func TestDispatcher_RejectsInvalidRegistrations(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	defer func() { _ = bus.Close() }()
	d := newTestDispatcher(t, bus)

	assert.Error(t, d.Register(shared.EventLevelUp, "no_handler", nil))
	assert.Error(t, d.Register(shared.EventLevelUp, "", func(shared.Event) error { return nil }))
}

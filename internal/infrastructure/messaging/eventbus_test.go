package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeRedisClient struct {
	mu        sync.Mutex
	published []string
	incoming  chan RedisMessage
	pubErr    error
}

func newFakeRedisClient() *fakeRedisClient {
	return &fakeRedisClient{incoming: make(chan RedisMessage, 10)}
}

func (c *fakeRedisClient) Publish(_ context.Context, _ string, message interface{}) error {
	if c.pubErr != nil {
		return c.pubErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, message.(string))
	return nil
}

func (c *fakeRedisClient) Subscribe(context.Context, ...string) (<-chan RedisMessage, error) {
	return c.incoming, nil
}

func (c *fakeRedisClient) Close() error { return nil }

func (c *fakeRedisClient) publishedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.published)
}

func syncBusConfig() InMemoryEventBusConfig {
	cfg := DefaultInMemoryEventBusConfig()
	cfg.AsyncMode = false
	return cfg
}

// ─────────────────────────────────────────────────────────────────────────────
// In-memory bus
// ─────────────────────────────────────────────────────────────────────────────

func TestInMemoryBus_DeliversToTypeAndGlobalHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	defer func() { _ = bus.Close() }()

	var typed, global int
	require.NoError(t, bus.Subscribe(shared.EventXPAwarded, func(shared.Event) error {
		typed++
		return nil
	}))
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		global++
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewXPAwardedEvent(7, 1, 10, 10, 0)))
	require.NoError(t, bus.Publish(shared.NewLevelUpEvent(7, 1, 0, 1)))

	assert.Equal(t, 1, typed)
	assert.Equal(t, 2, global)
	assert.Equal(t, int64(2), bus.Stats().Published)
}

func TestInMemoryBus_SyncTypesDeliverInline(t *testing.T) {
	cfg := DefaultInMemoryEventBusConfig()
	cfg.AsyncMode = true
	bus := NewInMemoryEventBus(cfg)
	defer func() { _ = bus.Close() }()

	// Cohort initialization is a sync type: the handler must have run
	// before Publish returns, without waiting for workers.
	ran := false
	require.NoError(t, bus.Subscribe(shared.EventCohortInitialized, func(shared.Event) error {
		ran = true
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewCohortInitializedEvent(7, time.Now(), 99)))
	assert.True(t, ran)
}

func TestInMemoryBus_ClosedBusRejectsOperations(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(shared.NewLevelUpEvent(7, 1, 0, 1)), ErrEventBusClosed)
	assert.ErrorIs(t, bus.Subscribe(shared.EventLevelUp, func(shared.Event) error { return nil }), ErrEventBusClosed)
	require.NoError(t, bus.Close())
}

func TestInMemoryBus_CloseWaitsForAsyncHandlers(t *testing.T) {
	cfg := DefaultInMemoryEventBusConfig()
	bus := NewInMemoryEventBus(cfg)

	done := make(chan struct{})
	require.NoError(t, bus.Subscribe(shared.EventLevelUp, func(shared.Event) error {
		time.Sleep(10 * time.Millisecond)
		close(done)
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewLevelUpEvent(7, 1, 0, 1)))
	require.NoError(t, bus.Close())

	select {
	case <-done:
	default:
		t.Fatal("Close returned before the in-flight handler finished")
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Redis bus
// ─────────────────────────────────────────────────────────────────────────────

func TestRedisBus_PublishesEnvelopeAndDeliversLocally(t *testing.T) {
	client := newFakeRedisClient()
	bus, err := NewRedisEventBus(RedisEventBusConfig{
		Client:         client,
		InstanceID:     "inst-a",
		LocalBusConfig: syncBusConfig(),
	})
	require.NoError(t, err)
	defer func() { _ = bus.Close() }()

	var local int
	require.NoError(t, bus.Subscribe(shared.EventLevelUp, func(shared.Event) error {
		local++
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewLevelUpEvent(7, 1, 2, 3)))

	assert.Equal(t, 1, local)
	require.Equal(t, 1, client.publishedCount())

	var envelope eventEnvelope
	require.NoError(t, json.Unmarshal([]byte(client.published[0]), &envelope))
	assert.Equal(t, "inst-a", envelope.InstanceID)
	assert.Equal(t, shared.EventLevelUp, envelope.EventType)
	assert.EqualValues(t, 3, envelope.Payload["new_level"])
}

func TestRedisBus_SkipsOwnRemoteEvents(t *testing.T) {
	client := newFakeRedisClient()
	bus, err := NewRedisEventBus(RedisEventBusConfig{
		Client:         client,
		InstanceID:     "inst-a",
		LocalBusConfig: syncBusConfig(),
	})
	require.NoError(t, err)
	defer func() { _ = bus.Close() }()

	delivered := make(chan shared.EventType, 2)
	require.NoError(t, bus.SubscribeAll(func(ev shared.Event) error {
		delivered <- ev.EventType()
		return nil
	}))

	own, _ := json.Marshal(eventEnvelope{InstanceID: "inst-a", EventType: shared.EventLevelUp})
	remote, _ := json.Marshal(eventEnvelope{InstanceID: "inst-b", EventType: shared.EventXPAwarded})
	client.incoming <- RedisMessage{Payload: string(own)}
	client.incoming <- RedisMessage{Payload: string(remote)}

	select {
	case got := <-delivered:
		// The own event must have been filtered; only inst-b's arrives.
		assert.Equal(t, shared.EventXPAwarded, got)
	case <-time.After(time.Second):
		t.Fatal("remote event was never delivered")
	}
	select {
	case got := <-delivered:
		t.Fatalf("unexpected second delivery: %v", got)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestRedisBus_RedisFailureStillDeliversLocally(t *testing.T) {
	client := newFakeRedisClient()
	bus, err := NewRedisEventBus(RedisEventBusConfig{
		Client:         client,
		LocalBusConfig: syncBusConfig(),
	})
	require.NoError(t, err)
	defer func() { _ = bus.Close() }()

	client.pubErr = assert.AnError

	var local int
	require.NoError(t, bus.Subscribe(shared.EventLevelUp, func(shared.Event) error {
		local++
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewLevelUpEvent(7, 1, 0, 1)))
	assert.Equal(t, 1, local)
}

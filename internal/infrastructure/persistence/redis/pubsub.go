package redis

import (
	"context"

	"github.com/c4t-hub/botcamp-hub/internal/infrastructure/messaging"
)

// ══════════════════════════════════════════════════════════════════════════════
// PUB/SUB BRIDGE
// ══════════════════════════════════════════════════════════════════════════════

// PubSubBridge adapts the go-redis client to messaging.RedisClient so
// the Redis event bus can fan events out to other hub instances.
type PubSubBridge struct {
	cache *Cache
}

// NewPubSubBridge creates a bridge on top of an existing Cache
// connection. The bridge does not own the connection; closing it is a
// no-op and the Cache must outlive the event bus.
func NewPubSubBridge(cache *Cache) *PubSubBridge {
	return &PubSubBridge{cache: cache}
}

// Publish sends a message to a Redis channel.
func (b *PubSubBridge) Publish(ctx context.Context, channel string, message interface{}) error {
	return b.cache.Client().Publish(ctx, channel, message).Err()
}

// Subscribe subscribes to Redis channels and streams messages until ctx
// is cancelled. The returned channel is closed on cancellation or when
// the underlying subscription ends.
func (b *PubSubBridge) Subscribe(ctx context.Context, channels ...string) (<-chan messaging.RedisMessage, error) {
	sub := b.cache.Client().Subscribe(ctx, channels...)

	// Confirm the subscription before handing the stream out.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan messaging.RedisMessage)
	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()

		in := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- messaging.RedisMessage{Channel: msg.Channel, Payload: msg.Payload}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close implements messaging.RedisClient. The shared Cache connection
// is closed by its owner, not here.
func (b *PubSubBridge) Close() error {
	return nil
}

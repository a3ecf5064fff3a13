package relay

import (
	"context"
	"io"

	"github.com/redis/go-redis/v9"

	"venturehub/internal/pkg/logx"
)

// Redis is a Relay backed by a Redis pub/sub channel. All hub processes
// publish and subscribe on the same channel name.
type Redis struct {
	client  *redis.Client
	channel string
}

// NewRedis creates a Redis relay on the given channel.
func NewRedis(client *redis.Client, channel string) *Redis {
	return &Redis{client: client, channel: channel}
}

// Publish implements Relay.
func (r *Redis) Publish(ctx context.Context, payload []byte) error {
	return r.client.Publish(ctx, r.channel, payload).Err()
}

// Subscribe implements Relay. Payloads are delivered on a dedicated goroutine
// until the returned closer is closed or ctx is cancelled.
func (r *Redis) Subscribe(ctx context.Context, handler func([]byte)) (io.Closer, error) {
	pubsub := r.client.Subscribe(ctx, r.channel)

	// Force the subscription to be established before returning, so callers
	// never publish into a channel nobody listens on yet.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	go func() {
		for msg := range pubsub.Channel() {
			handler([]byte(msg.Payload))
		}
		logx.Debug("Redis relay subscription channel closed", "channel", r.channel)
	}()

	return pubsub, nil
}

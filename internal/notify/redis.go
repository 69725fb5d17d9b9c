package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Redis publishes each notification as JSON on a pub/sub channel so that
// desktop agents subscribed to it can raise their own alerts.
type Redis struct {
	client  publisher
	closer  func() error
	channel string
}

// NewRedis connects lazily; the first Deliver surfaces connection errors.
func NewRedis(url, channel string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("notify: invalid redis url: %w", err)
	}
	if channel == "" {
		channel = "reminders"
	}
	client := redis.NewClient(opts)
	return &Redis{client: client, closer: client.Close, channel: channel}, nil
}

func (*Redis) Name() string { return "redis" }

func (r *Redis) Deliver(ctx context.Context, msg Message) (Outcome, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return Failed, fmt.Errorf("notify: marshal message: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return Failed, fmt.Errorf("notify: publish to %s: %w", r.channel, err)
	}
	return Delivered, nil
}

func (r *Redis) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const redisDialTimeout = 5 * time.Second

// redisBroker carries notifications over a Redis pub/sub channel so every
// node serving live clients sees them.
type redisBroker struct {
	rdb     *goredis.Client
	channel string
}

// NewRedisBroker connects to Redis and returns a Broker publishing on the
// given channel.
func NewRedisBroker(addr, channel string) (Broker, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}
	if channel == "" {
		return nil, fmt.Errorf("channel cannot be empty")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: redisDialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisBroker{
		rdb:     rdb,
		channel: channel,
	}, nil
}

func (b *redisBroker) Publish(ctx context.Context, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.rdb.Publish(ctx, b.channel, raw).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (b *redisBroker) Subscribe(ctx context.Context, fn func(Event)) (func(), error) {
	sub := b.rdb.Subscribe(ctx, b.channel)

	// Receive blocks until the subscription is actually established.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	done := make(chan struct{})
	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					slog.Warn("bad event payload", slog.String("err", err.Error()))
					continue
				}
				fn(ev)
			}
		}
	}()

	return func() {
		close(done)
		_ = sub.Close()
	}, nil
}

func (b *redisBroker) Close() error {
	return b.rdb.Close()
}

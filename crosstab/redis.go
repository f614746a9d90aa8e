package crosstab

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis sends notices over a Redis pub/sub channel.
type Redis struct {
	client  redis.UniversalClient
	channel string
	owned   bool
	logger  *zap.Logger
}

// NewRedis connects to addr.
func NewRedis(ctx context.Context, addr, channel string, logger *zap.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "ping redis %s", addr)
	}
	r := NewRedisFromClient(client, channel, logger)
	r.owned = true
	return r, nil
}

// NewRedisFromClient uses an existing client. Close leaves it open.
func NewRedisFromClient(client redis.UniversalClient, channel string, logger *zap.Logger) *Redis {
	if channel == "" {
		channel = "furrystore:notices"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, channel: channel, logger: logger}
}

func (r *Redis) Broadcast(ctx context.Context, n Notice) error {
	data, err := Encode(n)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, data).Err()
}

func (r *Redis) Listen(ctx context.Context, fn func(Notice)) (func(), error) {
	if fn == nil {
		return func() {}, nil
	}
	sub := r.client.Subscribe(ctx, r.channel)
	// wait for the subscription confirmation so no broadcast is missed
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, errors.Wrapf(err, "subscribe %s", r.channel)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				n, err := Decode([]byte(msg.Payload))
				if err != nil {
					r.logger.Debug("dropping malformed notice", zap.String("channel", r.channel), zap.Error(err))
					continue
				}
				fn(n)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			_ = sub.Close()
			<-done
		})
	}, nil
}

func (r *Redis) Close() error {
	if !r.owned {
		return nil
	}
	return r.client.Close()
}

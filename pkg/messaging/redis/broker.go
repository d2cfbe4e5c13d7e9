package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/brightsmile/dental-api/pkg/messaging"
)

type Broker struct {
	client *redis.Client
}

func NewBroker(addr, password string, db int) (*Broker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Broker{client: client}, nil
}

var _ messaging.Broker = (*Broker)(nil)

func (b *Broker) Publish(ctx context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err := b.client.Publish(ctx, topic, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe delivers messages on topic to handler until ctx is cancelled.
// Handler panics are contained so one bad message cannot kill the
// subscription loop.
func (b *Broker) Subscribe(ctx context.Context, topic string, handler func(payload []byte)) error {
	sub := b.client.Subscribe(ctx, topic)

	// Force the subscription to be established before returning.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	ch := sub.Channel()
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Error().Interface("panic", r).Str("topic", topic).Msg("subscriber handler panicked")
						}
					}()
					handler([]byte(msg.Payload))
				}()
			}
		}
	}()

	return nil
}

func (b *Broker) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *Broker) Close() error {
	return b.client.Close()
}

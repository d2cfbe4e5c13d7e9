package messaging

import "context"

// Broker is the transport behind change-event subscriptions. Subscribers
// must treat payloads as re-read triggers only, never as authoritative
// record data.
type Broker interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
	Subscribe(ctx context.Context, topic string, handler func(payload []byte)) error
	Close() error
}

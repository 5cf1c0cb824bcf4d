package events

import "context"

// IEventPublisher emits events to downstream consumers without waiting for a reply
type IEventPublisher interface {
	// Emit publishes data under pattern, key is used for partitioning where the bus supports it
	Emit(ctx context.Context, pattern string, key string, data any) error
	// Reply publishes a raw reply body to the destination named by the requester
	Reply(ctx context.Context, replyTo string, correlationID string, body []byte) error
	// Ready reports whether the bus connection is usable
	Ready(ctx context.Context) error
	Close() error
}

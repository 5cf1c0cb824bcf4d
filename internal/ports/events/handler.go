package events

import "context"

// Message bus-agnostic inbound message
type Message struct {
	Key     string
	Value   []byte
	Headers map[string]string
}

// Header names carried with command messages
const (
	HeaderPattern       = "pattern"
	HeaderReplyTo       = "reply_to"
	HeaderCorrelationID = "correlation_id"
)

// MessageHandler handles messages read by a bus consumer
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg Message) error
}

// IConsumer long-running bus consumer
type IConsumer interface {
	Start(ctx context.Context) error
	Close() error
}

package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/domain"
	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/ports/events"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Client RabbitMQ implementation of IEventPublisher
// One connection, one channel for publishing; consumers open their own channels
type Client struct {
	conn *amqp.Connection
	chn  *amqp.Channel
	mu   sync.Mutex
	cfg  *Config
	log  *slog.Logger
}

// NewClient dials the server, opens the publishing channel and declares both queues
func NewClient(cfg *Config, log *slog.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	chn, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	c := &Client{
		conn: conn,
		chn:  chn,
		cfg:  cfg,
		log:  log,
	}

	for _, queue := range []string{cfg.Queue, cfg.CommandsQueue} {
		if err := c.declareQueue(chn, queue); err != nil {
			_ = c.Close()
			return nil, err
		}
	}

	log.Info("rabbitmq client created",
		"queue", cfg.Queue,
		"commands_queue", cfg.CommandsQueue,
	)

	return c, nil
}

var _ events.IEventPublisher = (*Client)(nil)

func (c *Client) declareQueue(chn *amqp.Channel, name string) error {
	_, err := chn.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", name, err)
	}
	return nil
}

// OpenChannel opens a separate channel on the shared connection
func (c *Client) OpenChannel() (*amqp.Channel, error) {
	chn, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}
	return chn, nil
}

// Emit publishes the {pattern, data} envelope to the events queue
func (c *Client) Emit(ctx context.Context, pattern string, key string, data any) error {
	body, err := domain.EncodeEnvelope(pattern, data)
	if err != nil {
		return err
	}

	return c.publish(ctx, c.cfg.Queue, eventPublishing(pattern, key, body))
}

// Reply publishes a command reply to the requester's queue
func (c *Client) Reply(ctx context.Context, replyTo string, correlationID string, body []byte) error {
	if replyTo == "" {
		return fmt.Errorf("reply queue is empty")
	}

	return c.publish(ctx, replyTo, replyPublishing(correlationID, body))
}

func (c *Client) publish(ctx context.Context, queue string, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.chn.PublishWithContext(
		ctx,
		"",    // default exchange
		queue, // routing key (queue name)
		false, // mandatory
		false, // immediate
		msg,
	)
	if err != nil {
		c.log.Debug("rabbitmq publish failed",
			"error", err,
			"queue", queue,
			"message_id", msg.MessageId,
		)
		return fmt.Errorf("rabbitmq publish failed [queue=%s]: %w", queue, err)
	}

	c.log.Debug("message published to rabbitmq",
		"queue", queue,
		"message_id", msg.MessageId,
		"correlation_id", msg.CorrelationId,
	)
	return nil
}

func eventPublishing(pattern, key string, body []byte) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    key,
		Timestamp:    time.Now(),
		Type:         pattern,
		Headers:      amqp.Table{events.HeaderPattern: pattern},
		Body:         body,
	}
}

func replyPublishing(correlationID string, body []byte) amqp.Publishing {
	return amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		CorrelationId: correlationID,
		Timestamp:     time.Now(),
		Body:          body,
	}
}

// Ready reports whether the connection is still open
func (c *Client) Ready(ctx context.Context) error {
	if c.conn == nil || c.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	return nil
}

// Close closes the publishing channel and the connection
func (c *Client) Close() error {
	if err := c.chn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return fmt.Errorf("failed to close rabbitmq channel: %w", err)
	}
	if err := c.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return fmt.Errorf("failed to close rabbitmq connection: %w", err)
	}
	c.log.Info("rabbitmq client closed")
	return nil
}

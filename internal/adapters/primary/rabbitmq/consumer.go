package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	rabbitAdapter "github.com/Nest-Microservices-Marcelo/payments-ms/internal/adapters/secondary/rabbitmq"
	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/domain"
	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/ports/events"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer reads the commands queue on its own channel
type Consumer struct {
	chn     *amqp.Channel
	cfg     *rabbitAdapter.Config
	handler events.MessageHandler
	log     *slog.Logger
}

// NewConsumer opens a channel on the shared client connection
func NewConsumer(client *rabbitAdapter.Client, cfg *rabbitAdapter.Config, handler events.MessageHandler, log *slog.Logger) (*Consumer, error) {
	chn, err := client.OpenChannel()
	if err != nil {
		return nil, err
	}

	if cfg.Prefetch > 0 {
		if err := chn.Qos(cfg.Prefetch, 0, false); err != nil {
			_ = chn.Close()
			return nil, fmt.Errorf("failed to set rabbitmq prefetch: %w", err)
		}
	}

	log.Info("rabbitmq consumer created", "queue", cfg.CommandsQueue)

	return &Consumer{
		chn:     chn,
		cfg:     cfg,
		handler: handler,
		log:     log,
	}, nil
}

var _ events.IConsumer = (*Consumer)(nil)

// Start consumes until ctx is cancelled or the channel is closed
func (c *Consumer) Start(ctx context.Context) error {
	deliveries, err := c.chn.Consume(
		c.cfg.CommandsQueue, // queue
		"",                  // consumer
		false,               // auto-ack
		false,               // exclusive
		false,               // no-local
		false,               // no-wait
		nil,                 // args
	)
	if err != nil {
		return fmt.Errorf("failed to consume queue %s: %w", c.cfg.CommandsQueue, err)
	}

	for {
		select {
		case <-ctx.Done():
			c.log.Info("rabbitmq consumer stopping", "queue", c.cfg.CommandsQueue)
			return nil
		case d, ok := <-deliveries:
			if !ok {
				c.log.Info("rabbitmq deliveries channel closed", "queue", c.cfg.CommandsQueue)
				return nil
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	msg := toMessage(d)

	if err := c.handler.HandleMessage(ctx, msg); err != nil && !domain.IsBusinessError(err) {
		c.log.Error("failed to handle rabbitmq message",
			"error", err,
			"queue", c.cfg.CommandsQueue,
			"message_id", d.MessageId,
			"delivery_tag", d.DeliveryTag,
		)
	}

	// no redelivery: failures are answered through the reply
	if err := d.Ack(false); err != nil {
		c.log.Warn("failed to ack rabbitmq message", "error", err, "delivery_tag", d.DeliveryTag)
	}
}

// Close closes the consumer channel
func (c *Consumer) Close() error {
	if err := c.chn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return fmt.Errorf("failed to close rabbitmq consumer channel: %w", err)
	}
	c.log.Info("rabbitmq consumer closed", "queue", c.cfg.CommandsQueue)
	return nil
}

// toMessage maps AMQP properties onto the bus-agnostic headers
func toMessage(d amqp.Delivery) events.Message {
	headers := make(map[string]string, len(d.Headers)+2)
	for k, v := range d.Headers {
		switch val := v.(type) {
		case string:
			headers[k] = val
		case []byte:
			headers[k] = string(val)
		default:
			headers[k] = fmt.Sprint(val)
		}
	}
	if d.ReplyTo != "" {
		headers[events.HeaderReplyTo] = d.ReplyTo
	}
	if d.CorrelationId != "" {
		headers[events.HeaderCorrelationID] = d.CorrelationId
	}

	return events.Message{
		Key:     d.MessageId,
		Value:   d.Body,
		Headers: headers,
	}
}

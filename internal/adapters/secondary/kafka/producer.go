package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/domain"
	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/ports/events"
	"github.com/google/uuid"
)

// Producer Kafka implementation of IEventPublisher
type Producer struct {
	producer sarama.SyncProducer
	client   sarama.Client
	cfg      *Config
	log      *slog.Logger
}

// NewProducer connects to the brokers and creates a sync producer
func NewProducer(cfg *Config, log *slog.Logger) (*Producer, error) {
	config := cfg.SaramaConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	client, err := sarama.NewClient(cfg.GetBrokers(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	producer, err := sarama.NewSyncProducerFromClient(client)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.Info("kafka producer created",
		"brokers", cfg.Brokers,
		"topic", cfg.Topic,
	)

	return newProducer(producer, client, cfg, log), nil
}

func newProducer(producer sarama.SyncProducer, client sarama.Client, cfg *Config, log *slog.Logger) *Producer {
	return &Producer{
		producer: producer,
		client:   client,
		cfg:      cfg,
		log:      log,
	}
}

var _ events.IEventPublisher = (*Producer)(nil)

// Emit sends the {pattern, data} envelope to the events topic, pattern is duplicated in headers
func (p *Producer) Emit(ctx context.Context, pattern string, key string, data any) error {
	body, err := domain.EncodeEnvelope(pattern, data)
	if err != nil {
		return err
	}

	if key == "" {
		key = uuid.NewString()
	}

	msg := &sarama.ProducerMessage{
		Topic: p.cfg.Topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte(events.HeaderPattern), Value: []byte(pattern)},
		},
	}

	return p.send(msg, pattern)
}

// Reply sends a command reply to the topic named by the requester
func (p *Producer) Reply(ctx context.Context, replyTo string, correlationID string, body []byte) error {
	if replyTo == "" {
		return fmt.Errorf("reply topic is empty")
	}

	msg := &sarama.ProducerMessage{
		Topic: replyTo,
		Key:   sarama.StringEncoder(correlationID),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte(events.HeaderCorrelationID), Value: []byte(correlationID)},
		},
	}

	return p.send(msg, "reply")
}

func (p *Producer) send(msg *sarama.ProducerMessage, pattern string) error {
	key, _ := msg.Key.Encode()

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.log.Debug("kafka send failed",
			"error", err,
			"topic", msg.Topic,
			"key", string(key),
			"pattern", pattern,
		)
		return fmt.Errorf("kafka send failed [topic=%s, key=%s]: %w", msg.Topic, string(key), err)
	}

	p.log.Debug("message sent to kafka",
		"topic", msg.Topic,
		"partition", partition,
		"offset", offset,
		"key", string(key),
		"pattern", pattern,
	)

	return nil
}

// Ready reports whether the client still has brokers to talk to
func (p *Producer) Ready(ctx context.Context) error {
	if p.client == nil {
		return errors.New("kafka client is not initialized")
	}
	if p.client.Closed() {
		return errors.New("kafka client is closed")
	}
	if len(p.client.Brokers()) == 0 {
		return errors.New("no kafka brokers available")
	}
	return nil
}

// Close closes the producer and the underlying client
func (p *Producer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	if p.client != nil && !p.client.Closed() {
		if err := p.client.Close(); err != nil {
			return fmt.Errorf("failed to close kafka client: %w", err)
		}
	}
	p.log.Info("kafka producer closed")
	return nil
}

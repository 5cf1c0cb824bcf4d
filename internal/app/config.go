package app

import (
	"fmt"

	server "github.com/Nest-Microservices-Marcelo/payments-ms/internal/adapters/primary/http"
	alerterAdapter "github.com/Nest-Microservices-Marcelo/payments-ms/internal/adapters/secondary/alerter"
	kafkaAdapter "github.com/Nest-Microservices-Marcelo/payments-ms/internal/adapters/secondary/kafka"
	stripeAdapter "github.com/Nest-Microservices-Marcelo/payments-ms/internal/adapters/secondary/payment/stripe"
	rabbitAdapter "github.com/Nest-Microservices-Marcelo/payments-ms/internal/adapters/secondary/rabbitmq"
	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Event bus drivers
const (
	DriverKafka    = "kafka"
	DriverRabbitMQ = "rabbitmq"
)

type Config struct {
	Log      *logger.Config         `envconfig:"LOG"`
	Server   *server.Config         `envconfig:"APISERVER"`
	Stripe   *stripeAdapter.Config  `envconfig:"STRIPE"`
	Events   EventsConfig           `envconfig:"EVENTS"`
	Kafka    *kafkaAdapter.Config   `envconfig:"KAFKA"`
	RabbitMQ *rabbitAdapter.Config  `envconfig:"RABBITMQ"`
	Alerter  *alerterAdapter.Config `envconfig:"ALERTER"`
}

// EventsConfig which bus carries events and commands
type EventsConfig struct {
	Driver          string `envconfig:"DRIVER" default:"kafka"`
	ConsumeCommands bool   `envconfig:"CONSUME_COMMANDS" default:"true"`
}

func (c *EventsConfig) Validate() error {
	switch c.Driver {
	case DriverKafka, DriverRabbitMQ:
		return nil
	default:
		return fmt.Errorf("unsupported events driver: %s", c.Driver)
	}
}

func NewEnvConfig(envPrefix string) (*Config, error) {
	cfg := &Config{}

	_ = godotenv.Load(".env")

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Stripe.Validate(); err != nil {
		return err
	}
	return c.Events.Validate()
}

package kafka

import (
	"strings"

	"github.com/IBM/sarama"
)

// Config Kafka producer/consumer settings
type Config struct {
	Brokers          string `envconfig:"BROKERS"`                                    // "broker1:9092,broker2:9092"
	Topic            string `envconfig:"TOPIC" default:"payments.events"`            // payment.succeeded and other events
	CommandsTopic    string `envconfig:"COMMANDS_TOPIC" default:"payments.commands"` // create.payment.session commands
	ConsumerGroup    string `envconfig:"CONSUMER_GROUP" default:"payments-ms"`       // consumer only
	ClientID         string `envconfig:"CLIENT_ID" default:"payments-ms"`
	SecurityProtocol string `envconfig:"SECURITY_PROTOCOL"` // "SASL_SSL", "SASL_PLAINTEXT", "PLAINTEXT"
	SASLMechanism    string `envconfig:"SASL_MECHANISM"`    // "PLAIN", "SCRAM-SHA-256"
	SASLUsername     string `envconfig:"SASL_USERNAME"`
	SASLPassword     string `envconfig:"SASL_PASSWORD"`
}

// GetBrokers returns the broker list
func (c *Config) GetBrokers() []string {
	if c.Brokers == "" {
		return []string{"localhost:9092"}
	}
	brokers := strings.Split(c.Brokers, ",")
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}
	return brokers
}

// SaramaConfig builds the sarama config shared by producer and consumer
func (c *Config) SaramaConfig() *sarama.Config {
	config := sarama.NewConfig()
	if c.ClientID != "" {
		config.ClientID = c.ClientID
	}

	if c.SecurityProtocol == "SASL_SSL" || c.SecurityProtocol == "SASL_PLAINTEXT" {
		config.Net.SASL.Enable = true
		config.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		if c.SASLMechanism == "SCRAM-SHA-256" {
			config.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
		}
		config.Net.SASL.User = c.SASLUsername
		config.Net.SASL.Password = c.SASLPassword
		// TLS only for SASL_SSL
		if c.SecurityProtocol == "SASL_SSL" {
			config.Net.TLS.Enable = true
		}
	}

	return config
}

package alerter

import (
	"context"
	"fmt"

	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/adapters/secondary/alerter"
	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/ports/service"
)

// Service implements IAlerterService
type Service struct {
	client *alerter.Client
}

// New returns nil when there is no client, so callers can test the interface against nil
func New(client *alerter.Client) service.IAlerterService {
	if client == nil {
		return nil
	}
	return &Service{
		client: client,
	}
}

// SendAlert prefixes the message with the service name and sends it
func (s *Service) SendAlert(ctx context.Context, message string) error {
	if s.client == nil {
		return fmt.Errorf("alerter client is not initialized")
	}

	return s.client.SendAlert(ctx, "💳 payments-ms\n\n"+message)
}

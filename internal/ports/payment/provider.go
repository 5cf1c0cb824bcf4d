package payment

import (
	"context"

	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/domain"
)

// IPaymentProvider external payment processor (Stripe)
// The use case depends only on this interface
type IPaymentProvider interface {
	// CreateCheckoutSession opens a hosted checkout session
	CreateCheckoutSession(ctx context.Context, req domain.CheckoutSessionRequest) (*CheckoutSession, error)

	// ConstructEvent verifies the signature of a webhook payload and decodes the event
	// Returns an error wrapping domain.ErrInvalidSignature when verification fails
	ConstructEvent(payload []byte, signature string) (*domain.ProviderEvent, error)
}

// CheckoutSession created session as returned by the provider
type CheckoutSession struct {
	ID         string
	URL        string
	SuccessURL string
	CancelURL  string
}

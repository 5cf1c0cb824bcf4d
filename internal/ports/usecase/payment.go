package usecase

import (
	"context"

	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/domain"
)

// IPaymentUseCase checkout sessions and provider webhooks
type IPaymentUseCase interface {
	CreatePaymentSession(ctx context.Context, session domain.PaymentSession) (*domain.SessionURLs, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*domain.WebhookResult, error)
}

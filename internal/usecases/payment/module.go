package payment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/domain"
	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/ports/events"
	paymentPort "github.com/Nest-Microservices-Marcelo/payments-ms/internal/ports/payment"
	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/ports/service"
)

// RedirectURLs where the provider sends the buyer after checkout
type RedirectURLs struct {
	Success string
	Cancel  string
}

type Service struct {
	PaymentProvider paymentPort.IPaymentProvider
	Publisher       events.IEventPublisher
	AlerterService  service.IAlerterService
	URLs            RedirectURLs
	Log             *slog.Logger
}

func New(
	paymentProvider paymentPort.IPaymentProvider,
	publisher events.IEventPublisher,
	alerterService service.IAlerterService,
	urls RedirectURLs,
	log *slog.Logger,
) *Service {
	return &Service{
		PaymentProvider: paymentProvider,
		Publisher:       publisher,
		AlerterService:  alerterService,
		URLs:            urls,
		Log:             log,
	}
}

// CreatePaymentSession opens a checkout session for the order and returns its URLs
func (s *Service) CreatePaymentSession(ctx context.Context, session domain.PaymentSession) (*domain.SessionURLs, error) {
	lineItems := make([]domain.LineItem, 0, len(session.Items))
	for _, item := range session.Items {
		lineItems = append(lineItems, domain.LineItem{
			Currency:    session.Currency,
			ProductName: item.Name,
			UnitAmount:  item.UnitAmount(),
			Quantity:    int64(item.Quantity),
		})
	}

	req := domain.CheckoutSessionRequest{
		OrderID:    session.OrderID,
		Mode:       domain.CheckoutModePayment,
		LineItems:  lineItems,
		SuccessURL: s.URLs.Success,
		CancelURL:  s.URLs.Cancel,
	}

	checkout, err := s.PaymentProvider.CreateCheckoutSession(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session for order %s: %w", session.OrderID, err)
	}

	s.Log.Info("checkout session created",
		"order_id", session.OrderID,
		"session_id", checkout.ID,
		"items", len(lineItems),
		"currency", session.Currency,
	)

	return &domain.SessionURLs{
		CancelURL:  checkout.CancelURL,
		SuccessURL: checkout.SuccessURL,
		URL:        checkout.URL,
	}, nil
}

// HandleWebhook verifies the provider callback and emits payment.succeeded for successful charges
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) (*domain.WebhookResult, error) {
	event, err := s.PaymentProvider.ConstructEvent(payload, signature)
	if err != nil {
		return nil, err
	}

	result := &domain.WebhookResult{
		EventID: event.ID,
		Type:    event.Type,
	}

	switch event.Type {
	case domain.ProviderEventChargeSucceeded:
		result.Handled = true
		if event.Charge == nil {
			return nil, fmt.Errorf("event %s has no charge object", event.ID)
		}

		succeeded := domain.PaymentSucceeded{
			StripePaymentID: event.Charge.ID,
			OrderID:         event.Charge.Metadata["orderId"],
			ReceiptURL:      event.Charge.ReceiptURL,
		}
		if succeeded.OrderID == "" {
			s.Log.Warn("charge has no orderId metadata",
				"event_id", event.ID,
				"charge_id", event.Charge.ID,
			)
		}

		result.Emitted = s.emit(ctx, domain.PatternPaymentSucceeded, succeeded.OrderID, succeeded)
	default:
		s.Log.Info(fmt.Sprintf("event %s not handled", event.Type), "event_id", event.ID)
	}

	return result, nil
}

// emit publishes fire-and-forget: failures are logged and alerted, never returned
func (s *Service) emit(ctx context.Context, pattern, key string, data domain.PaymentSucceeded) bool {
	if err := s.Publisher.Emit(ctx, pattern, key, data); err != nil {
		s.Log.Error("failed to emit event",
			"error", err,
			"pattern", pattern,
			"order_id", data.OrderID,
			"stripe_payment_id", data.StripePaymentID,
		)

		if s.AlerterService != nil {
			alertMsg := fmt.Sprintf("⚠️ Payment event not delivered\n\nPattern: %s\nOrder ID: %s\nPayment ID: %s\nError: %s",
				pattern, data.OrderID, data.StripePaymentID, err.Error())
			if alertErr := s.AlerterService.SendAlert(ctx, alertMsg); alertErr != nil {
				s.Log.Warn("failed to send alert", "error", alertErr)
			}
		}
		return false
	}

	s.Log.Info("payment event emitted",
		"pattern", pattern,
		"order_id", data.OrderID,
		"stripe_payment_id", data.StripePaymentID,
	)
	return true
}

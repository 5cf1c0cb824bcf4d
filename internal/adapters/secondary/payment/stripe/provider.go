package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/domain"
	paymentPort "github.com/Nest-Microservices-Marcelo/payments-ms/internal/ports/payment"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Provider implements IPaymentProvider on top of stripe-go
type Provider struct {
	sessions session.Client
	cfg      *Config
	log      *slog.Logger
}

// NewProvider creates a provider with its own backend, the global stripe.Key is not touched
func NewProvider(cfg *Config, log *slog.Logger) *Provider {
	backendCfg := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(cfg.MaxRetries),
		LeveledLogger:     &leveledLogger{log: log},
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(strings.TrimSuffix(cfg.APIURL, "/"))
	}

	return &Provider{
		sessions: session.Client{
			B:   stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
			Key: cfg.Secret,
		},
		cfg: cfg,
		log: log,
	}
}

// CreateCheckoutSession creates a checkout session, the order id travels in payment intent metadata
func (p *Provider) CreateCheckoutSession(ctx context.Context, req domain.CheckoutSessionRequest) (*paymentPort.CheckoutSession, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.LineItems))
	for _, item := range req.LineItems {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(item.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.ProductName),
				},
				UnitAmount: stripe.Int64(item.UnitAmount),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{
				"orderId": req.OrderID,
			},
		},
		LineItems:  lineItems,
		Mode:       stripe.String(req.Mode),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx

	s, err := p.sessions.New(params)
	if err != nil {
		p.log.Debug("stripe checkout session create failed",
			"error", err,
			"order_id", req.OrderID,
		)
		return nil, fmt.Errorf("stripe checkout session create failed [order_id=%s]: %w", req.OrderID, err)
	}

	return &paymentPort.CheckoutSession{
		ID:         s.ID,
		URL:        s.URL,
		SuccessURL: s.SuccessURL,
		CancelURL:  s.CancelURL,
	}, nil
}

// ConstructEvent verifies the Stripe-Signature header and decodes the event
func (p *Provider) ConstructEvent(payload []byte, signature string) (*domain.ProviderEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.cfg.EndpointSecret, webhook.ConstructEventOptions{
		Tolerance:                p.cfg.Tolerance,
		IgnoreAPIVersionMismatch: p.cfg.IgnoreAPIVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidSignature, err.Error())
	}

	result := &domain.ProviderEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}

	if strings.HasPrefix(result.Type, "charge.") && event.Data != nil {
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return nil, fmt.Errorf("failed to unmarshal charge from event %s: %w", event.ID, err)
		}
		result.Charge = &domain.Charge{
			ID:         charge.ID,
			Metadata:   charge.Metadata,
			ReceiptURL: charge.ReceiptURL,
		}
	}

	return result, nil
}

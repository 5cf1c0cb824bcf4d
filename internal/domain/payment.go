package domain

import "math"

// Event patterns exchanged over the message bus
const (
	PatternPaymentSucceeded     = "payment.succeeded"
	PatternCreatePaymentSession = "create.payment.session"
)

// Checkout session modes
const (
	CheckoutModePayment = "payment"
)

// ProviderEventChargeSucceeded provider event that triggers the payment.succeeded emit
const ProviderEventChargeSucceeded = "charge.succeeded"

// PaymentSession order description sent by the orders service
type PaymentSession struct {
	Currency string        `json:"currency" validate:"required"`
	Items    []SessionItem `json:"items" validate:"required,min=1,dive"`
	OrderID  string        `json:"orderId" validate:"required"`
}

// SessionItem one line of the order
type SessionItem struct {
	ProductID int     `json:"productId" validate:"required,gt=0"`
	Name      string  `json:"name" validate:"required"`
	Price     float64 `json:"price" validate:"required,gt=0"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
}

// UnitAmount price in minor currency units (cents)
func (i SessionItem) UnitAmount() int64 {
	return int64(math.Round(i.Price * 100))
}

// LineItem checkout line item as the provider expects it
type LineItem struct {
	Currency    string
	ProductName string
	UnitAmount  int64
	Quantity    int64
}

// CheckoutSessionRequest everything the provider needs to open a checkout session
type CheckoutSessionRequest struct {
	OrderID    string
	Mode       string
	LineItems  []LineItem
	SuccessURL string
	CancelURL  string
}

// SessionURLs URLs returned to the caller after the session is created
type SessionURLs struct {
	CancelURL  string `json:"cancelUrl"`
	SuccessURL string `json:"successUrl"`
	URL        string `json:"url"`
}

// PaymentSucceeded event emitted to downstream consumers
type PaymentSucceeded struct {
	StripePaymentID string `json:"stripePaymentId"`
	OrderID         string `json:"orderId"`
	ReceiptURL      string `json:"receiptUrl"`
}

// ProviderEvent verified webhook event reduced to what this service reads
type ProviderEvent struct {
	ID   string
	Type string
	// Charge is set only for charge.* events
	Charge *Charge
}

// Charge subset of the provider charge object
type Charge struct {
	ID         string
	Metadata   map[string]string
	ReceiptURL string
}

// WebhookResult outcome of processing one webhook call
type WebhookResult struct {
	EventID string
	Type    string
	Handled bool
	Emitted bool
}

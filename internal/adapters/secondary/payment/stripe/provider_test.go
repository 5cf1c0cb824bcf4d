package stripe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/domain"
	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/pkg/logger"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const testEndpointSecret = "whsec_test_secret"

func newTestProvider(apiURL string) *Provider {
	return NewProvider(&Config{
		Secret:           "sk_test_123",
		SuccessURL:       "http://localhost/payments/success",
		CancelURL:        "http://localhost/payments/cancel",
		EndpointSecret:   testEndpointSecret,
		APIURL:           apiURL,
		MaxRetries:       0,
		IgnoreAPIVersion: true,
		Tolerance:        5 * time.Minute,
	}, logger.Nop())
}

func TestCreateCheckoutSession(t *testing.T) {
	var form url.Values
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/checkout/sessions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "cs_test_1",
			"object": "checkout.session",
			"mode": "payment",
			"url": "https://checkout.stripe.com/c/pay/cs_test_1",
			"success_url": "http://localhost/payments/success",
			"cancel_url": "http://localhost/payments/cancel"
		}`)
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)

	got, err := p.CreateCheckoutSession(context.Background(), domain.CheckoutSessionRequest{
		OrderID: "ord-42",
		Mode:    domain.CheckoutModePayment,
		LineItems: []domain.LineItem{
			{Currency: "usd", ProductName: "Keyboard", UnitAmount: 2000, Quantity: 2},
		},
		SuccessURL: "http://localhost/payments/success",
		CancelURL:  "http://localhost/payments/cancel",
	})
	if err != nil {
		t.Fatalf("CreateCheckoutSession: %v", err)
	}

	if auth != "Bearer sk_test_123" {
		t.Errorf("authorization header = %q", auth)
	}

	wantForm := map[string]string{
		"mode":                                         "payment",
		"success_url":                                  "http://localhost/payments/success",
		"cancel_url":                                   "http://localhost/payments/cancel",
		"payment_intent_data[metadata][orderId]":       "ord-42",
		"line_items[0][quantity]":                      "2",
		"line_items[0][price_data][currency]":          "usd",
		"line_items[0][price_data][unit_amount]":       "2000",
		"line_items[0][price_data][product_data][name]": "Keyboard",
	}
	for key, want := range wantForm {
		if got := form.Get(key); got != want {
			t.Errorf("form[%s] = %q, want %q", key, got, want)
		}
	}

	if got.ID != "cs_test_1" || got.URL != "https://checkout.stripe.com/c/pay/cs_test_1" {
		t.Errorf("unexpected session %+v", got)
	}
	if got.SuccessURL != "http://localhost/payments/success" || got.CancelURL != "http://localhost/payments/cancel" {
		t.Errorf("unexpected redirect urls %+v", got)
	}
}

func TestCreateCheckoutSessionAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"type":"invalid_request_error","message":"Invalid currency: zzz"}}`)
	}))
	defer srv.Close()

	_, err := newTestProvider(srv.URL).CreateCheckoutSession(context.Background(), domain.CheckoutSessionRequest{
		OrderID:   "ord-1",
		Mode:      domain.CheckoutModePayment,
		LineItems: []domain.LineItem{{Currency: "zzz", ProductName: "x", UnitAmount: 1, Quantity: 1}},
	})

	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		t.Fatalf("expected *stripe.Error, got %v", err)
	}
	if stripeErr.HTTPStatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", stripeErr.HTTPStatusCode)
	}
}

func signedPayload(t *testing.T, payload []byte, secret string) string {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Header
}

const chargeSucceededEvent = `{
	"id": "evt_1",
	"object": "event",
	"api_version": "2020-08-27",
	"type": "charge.succeeded",
	"data": {
		"object": {
			"id": "ch_1",
			"object": "charge",
			"metadata": {"orderId": "ord-42"},
			"receipt_url": "https://pay.stripe.com/receipts/ch_1"
		}
	}
}`

func TestConstructEventChargeSucceeded(t *testing.T) {
	p := newTestProvider("")
	payload := []byte(chargeSucceededEvent)

	event, err := p.ConstructEvent(payload, signedPayload(t, payload, testEndpointSecret))
	if err != nil {
		t.Fatalf("ConstructEvent: %v", err)
	}

	if event.ID != "evt_1" || event.Type != "charge.succeeded" {
		t.Errorf("unexpected event %+v", event)
	}
	if event.Charge == nil {
		t.Fatal("charge is nil")
	}
	if event.Charge.ID != "ch_1" || event.Charge.Metadata["orderId"] != "ord-42" ||
		event.Charge.ReceiptURL != "https://pay.stripe.com/receipts/ch_1" {
		t.Errorf("unexpected charge %+v", event.Charge)
	}
}

func TestConstructEventNonChargeEvent(t *testing.T) {
	p := newTestProvider("")
	payload := []byte(`{"id":"evt_2","object":"event","api_version":"2020-08-27","type":"checkout.session.completed","data":{"object":{"id":"cs_1","object":"checkout.session"}}}`)

	event, err := p.ConstructEvent(payload, signedPayload(t, payload, testEndpointSecret))
	if err != nil {
		t.Fatalf("ConstructEvent: %v", err)
	}
	if event.Charge != nil {
		t.Errorf("charge should be nil for %s", event.Type)
	}
}

func TestConstructEventInvalidSignature(t *testing.T) {
	p := newTestProvider("")
	payload := []byte(chargeSucceededEvent)

	tests := []struct {
		name      string
		signature string
	}{
		{"empty header", ""},
		{"wrong secret", signedPayload(t, payload, "whsec_other")},
		{"garbage", "t=abc,v1=def"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ConstructEvent(payload, tt.signature)
			if !errors.Is(err, domain.ErrInvalidSignature) {
				t.Fatalf("expected ErrInvalidSignature, got %v", err)
			}
		})
	}
}

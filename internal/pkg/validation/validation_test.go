package validation

import (
	"errors"
	"testing"

	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/domain"
	"github.com/google/go-cmp/cmp"
)

func TestDecodeStrict(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFields map[string]string
	}{
		{
			name: "valid session",
			body: `{"currency":"usd","orderId":"ord-1","items":[{"productId":1,"name":"Keyboard","price":20.5,"quantity":2}]}`,
		},
		{
			name: "unknown top-level property",
			body: `{"currency":"usd","orderId":"ord-1","items":[{"productId":1,"name":"Keyboard","price":20.5,"quantity":2}],"discount":5}`,
			wantFields: map[string]string{
				"discount": "property discount should not exist",
			},
		},
		{
			name: "missing order id and empty items",
			body: `{"currency":"usd","items":[]}`,
			wantFields: map[string]string{
				"orderId": "is required",
				"items":   "must contain at least 1 elements",
			},
		},
		{
			name: "non positive price and quantity",
			body: `{"currency":"usd","orderId":"ord-1","items":[{"productId":1,"name":"Keyboard","price":-1,"quantity":0}]}`,
			wantFields: map[string]string{
				"items[0].price":    "must be greater than 0",
				"items[0].quantity": "is required",
			},
		},
		{
			name: "wrong type",
			body: `{"currency":"usd","orderId":"ord-1","items":"nope"}`,
			wantFields: map[string]string{
				"items": "must be a []domain.SessionItem",
			},
		},
		{
			name:       "two objects",
			body:       `{"currency":"usd"}{}`,
			wantFields: map[string]string{"_": "body must contain a single JSON object"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var session domain.PaymentSession
			err := DecodeStrict([]byte(tt.body), &session)

			if tt.wantFields == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *domain.ValidationError, got %T", err)
			}
			if diff := cmp.Diff(tt.wantFields, ve.Fields); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnitAmountRounding(t *testing.T) {
	tests := []struct {
		price float64
		want  int64
	}{
		{20, 2000},
		{19.99, 1999},
		{0.125, 13},
		{1.005, 100},
	}

	for _, tt := range tests {
		got := domain.SessionItem{Price: tt.price}.UnitAmount()
		if got != tt.want {
			t.Errorf("UnitAmount(%v) = %d, want %d", tt.price, got, tt.want)
		}
	}
}

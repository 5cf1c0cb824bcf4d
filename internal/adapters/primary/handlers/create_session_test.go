package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/domain"
	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/pkg/logger"
	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/ports/events"
	"github.com/google/go-cmp/cmp"
)

type fakeUseCase struct {
	got  *domain.PaymentSession
	urls *domain.SessionURLs
	err  error
}

func (f *fakeUseCase) CreatePaymentSession(ctx context.Context, session domain.PaymentSession) (*domain.SessionURLs, error) {
	f.got = &session
	return f.urls, f.err
}

func (f *fakeUseCase) HandleWebhook(ctx context.Context, payload []byte, signature string) (*domain.WebhookResult, error) {
	return nil, errors.New("not used")
}

type sentReply struct {
	replyTo       string
	correlationID string
	body          map[string]any
}

type fakePublisher struct {
	replies []sentReply
}

func (f *fakePublisher) Emit(ctx context.Context, pattern string, key string, data any) error {
	return nil
}

func (f *fakePublisher) Reply(ctx context.Context, replyTo string, correlationID string, body []byte) error {
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return err
	}
	f.replies = append(f.replies, sentReply{replyTo: replyTo, correlationID: correlationID, body: decoded})
	return nil
}

func (f *fakePublisher) Ready(ctx context.Context) error { return nil }

func (f *fakePublisher) Close() error { return nil }

func command(data string) []byte {
	return []byte(`{"pattern":"create.payment.session","data":` + data + `}`)
}

const validSession = `{"currency":"usd","orderId":"ord-1","items":[{"productId":1,"name":"Keyboard","price":20,"quantity":1}]}`

func TestCreateSessionHandlerReplies(t *testing.T) {
	uc := &fakeUseCase{urls: &domain.SessionURLs{CancelURL: "c", SuccessURL: "s", URL: "u"}}
	pub := &fakePublisher{}
	h := NewCreateSessionHandler(uc, pub, logger.Nop())

	err := h.HandleMessage(context.Background(), events.Message{
		Key:   "ord-1",
		Value: command(validSession),
		Headers: map[string]string{
			"reply_to":       "orders.replies",
			"correlation_id": "corr-1",
		},
	})
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	if uc.got == nil || uc.got.OrderID != "ord-1" || len(uc.got.Items) != 1 {
		t.Fatalf("use case got %+v", uc.got)
	}

	want := []sentReply{{
		replyTo:       "orders.replies",
		correlationID: "corr-1",
		body:          map[string]any{"cancelUrl": "c", "successUrl": "s", "url": "u"},
	}}
	if diff := cmp.Diff(want, pub.replies, cmp.AllowUnexported(sentReply{})); diff != "" {
		t.Errorf("replies mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateSessionHandlerValidationError(t *testing.T) {
	uc := &fakeUseCase{}
	pub := &fakePublisher{}
	h := NewCreateSessionHandler(uc, pub, logger.Nop())

	err := h.HandleMessage(context.Background(), events.Message{
		Key:     "k1",
		Value:   command(`{"currency":"usd","items":[]}`),
		Headers: map[string]string{"reply_to": "orders.replies"},
	})
	if !domain.IsBusinessError(err) || !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected business validation error, got %v", err)
	}
	if uc.got != nil {
		t.Error("use case must not run for invalid command")
	}

	if len(pub.replies) != 1 {
		t.Fatalf("expected one reply, got %d", len(pub.replies))
	}
	reply := pub.replies[0]
	if reply.correlationID != "k1" {
		t.Errorf("correlation id should fall back to key, got %q", reply.correlationID)
	}
	if reply.body["error"] != "validation failed" {
		t.Errorf("reply error = %v", reply.body["error"])
	}
	fields, _ := reply.body["fields"].(map[string]any)
	if _, ok := fields["orderId"]; !ok {
		t.Errorf("expected orderId field error, got %v", fields)
	}
}

func TestCreateSessionHandlerUseCaseError(t *testing.T) {
	uc := &fakeUseCase{err: errors.New("stripe down")}
	pub := &fakePublisher{}
	h := NewCreateSessionHandler(uc, pub, logger.Nop())

	err := h.HandleMessage(context.Background(), events.Message{
		Value:   command(validSession),
		Headers: map[string]string{"reply_to": "orders.replies", "correlation_id": "c2"},
	})
	if err == nil || domain.IsBusinessError(err) {
		t.Fatalf("expected plain error, got %v", err)
	}
	if len(pub.replies) != 1 || pub.replies[0].body["error"] != "failed to create payment session" {
		t.Errorf("unexpected replies %+v", pub.replies)
	}
}

func TestCreateSessionHandlerDropsUnknownPattern(t *testing.T) {
	uc := &fakeUseCase{}
	pub := &fakePublisher{}
	h := NewCreateSessionHandler(uc, pub, logger.Nop())

	err := h.HandleMessage(context.Background(), events.Message{
		Value: []byte(`{"pattern":"payment.succeeded","data":{}}`),
	})
	if !domain.IsBusinessError(err) {
		t.Fatalf("expected business error, got %v", err)
	}
	if uc.got != nil || len(pub.replies) != 0 {
		t.Error("unknown pattern must be dropped silently")
	}
}

func TestCreateSessionHandlerWithoutReplyTo(t *testing.T) {
	uc := &fakeUseCase{urls: &domain.SessionURLs{URL: "u"}}
	pub := &fakePublisher{}
	h := NewCreateSessionHandler(uc, pub, logger.Nop())

	if err := h.HandleMessage(context.Background(), events.Message{Value: command(validSession)}); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(pub.replies) != 0 {
		t.Errorf("no reply expected without reply_to, got %d", len(pub.replies))
	}
}

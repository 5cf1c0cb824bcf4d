package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/domain"
	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/pkg/validation"
	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/ports/events"
	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/ports/usecase"
)

// CreateSessionHandler serves create.payment.session commands from the bus
type CreateSessionHandler struct {
	PaymentUseCase usecase.IPaymentUseCase
	Publisher      events.IEventPublisher
	Log            *slog.Logger
}

// NewCreateSessionHandler creates the bus twin of POST /payments/create-payment-session
func NewCreateSessionHandler(paymentUseCase usecase.IPaymentUseCase, publisher events.IEventPublisher, log *slog.Logger) events.MessageHandler {
	return &CreateSessionHandler{
		PaymentUseCase: paymentUseCase,
		Publisher:      publisher,
		Log:            log,
	}
}

// HandleMessage validates the command, creates the session and replies if reply_to is set
func (h *CreateSessionHandler) HandleMessage(ctx context.Context, msg events.Message) error {
	env, err := domain.DecodeEnvelope(msg.Value)
	if err != nil {
		h.Log.Warn("dropping malformed command", "error", err, "key", msg.Key)
		return domain.WrapBusinessError(err)
	}

	if env.Pattern != domain.PatternCreatePaymentSession {
		h.Log.Warn("dropping command with unknown pattern", "pattern", env.Pattern, "key", msg.Key)
		return domain.WrapBusinessError(fmt.Errorf("unknown pattern %s", env.Pattern))
	}

	replyTo := msg.Headers[events.HeaderReplyTo]
	correlationID := msg.Headers[events.HeaderCorrelationID]
	if correlationID == "" {
		correlationID = env.ID
	}
	if correlationID == "" {
		correlationID = msg.Key
	}

	var session domain.PaymentSession
	if err := validation.DecodeStrict(env.Data, &session); err != nil {
		h.Log.Warn("invalid create payment session command",
			"error", err,
			"correlation_id", correlationID,
		)
		reply := domain.SessionReply{Error: domain.ErrValidation.Error()}
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			reply.Fields = ve.Fields
		}
		h.reply(ctx, replyTo, correlationID, reply)
		return domain.WrapBusinessError(err)
	}

	urls, err := h.PaymentUseCase.CreatePaymentSession(ctx, session)
	if err != nil {
		h.reply(ctx, replyTo, correlationID, domain.SessionReply{Error: "failed to create payment session"})
		return fmt.Errorf("failed to create payment session [correlation_id=%s]: %w", correlationID, err)
	}

	h.reply(ctx, replyTo, correlationID, domain.SessionReply{SessionURLs: urls})
	return nil
}

func (h *CreateSessionHandler) reply(ctx context.Context, replyTo, correlationID string, reply domain.SessionReply) {
	if replyTo == "" {
		h.Log.Debug("command has no reply_to, reply dropped", "correlation_id", correlationID)
		return
	}

	body, err := json.Marshal(reply)
	if err != nil {
		h.Log.Error("failed to marshal reply", "error", err, "correlation_id", correlationID)
		return
	}

	if err := h.Publisher.Reply(ctx, replyTo, correlationID, body); err != nil {
		h.Log.Error("failed to publish reply",
			"error", err,
			"reply_to", replyTo,
			"correlation_id", correlationID,
		)
	}
}

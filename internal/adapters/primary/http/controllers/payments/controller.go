package payments

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/domain"
	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/pkg/validation"
	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/ports/usecase"
	"github.com/gin-gonic/gin"
)

const (
	signatureHeader = "Stripe-Signature"
	maxBodyBytes    = 1 << 20
)

type Controller struct {
	PaymentUseCase usecase.IPaymentUseCase
	Log            *slog.Logger
}

func New(paymentUseCase usecase.IPaymentUseCase, log *slog.Logger) *Controller {
	return &Controller{
		PaymentUseCase: paymentUseCase,
		Log:            log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	payments := router.Group("/payments")
	{
		payments.POST("/create-payment-session", c.createPaymentSession)
		payments.GET("/success", c.success)
		payments.GET("/cancel", c.cancel)
		payments.POST("/webhook", c.stripeWebhook)
	}
}

func (c *Controller) createPaymentSession(ctx *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxBodyBytes))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	var session domain.PaymentSession
	if err := validation.DecodeStrict(body, &session); err != nil {
		c.Log.Warn("invalid create payment session request", "error", err)
		resp := gin.H{"error": "invalid request"}
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			resp["details"] = ve.Fields
		}
		ctx.JSON(http.StatusBadRequest, resp)
		return
	}

	urls, err := c.PaymentUseCase.CreatePaymentSession(ctx.Request.Context(), session)
	if err != nil {
		c.Log.Error("failed to create payment session",
			"error", err,
			"order_id", session.OrderID,
		)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create payment session"})
		return
	}

	ctx.JSON(http.StatusCreated, urls)
}

func (c *Controller) success(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"message": "Payment successful",
	})
}

func (c *Controller) cancel(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"ok":      false,
		"message": "Payment cancelled",
	})
}

// stripeWebhook needs the raw body: the signature is computed over the exact bytes
func (c *Controller) stripeWebhook(ctx *gin.Context) {
	sig := ctx.GetHeader(signatureHeader)

	payload, err := io.ReadAll(http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxBodyBytes))
	if err != nil {
		ctx.String(http.StatusBadRequest, "Webhook Error: %s", err.Error())
		return
	}

	result, err := c.PaymentUseCase.HandleWebhook(ctx.Request.Context(), payload, sig)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSignature) {
			c.Log.Warn("webhook signature verification failed", "error", err)
			ctx.String(http.StatusBadRequest, "Webhook Error: %s", err.Error())
			return
		}
		c.Log.Error("failed to handle webhook", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process webhook"})
		return
	}

	c.Log.Debug("webhook processed",
		"event_id", result.EventID,
		"type", result.Type,
		"handled", result.Handled,
		"emitted", result.Emitted,
	)

	ctx.JSON(http.StatusOK, gin.H{"sig": sig})
}

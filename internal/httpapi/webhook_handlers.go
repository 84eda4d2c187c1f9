package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/adapters/providers/coinbase"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/adapters/providers/nowpayments"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/adapters/providers/stripecard"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/adapters/secrets"
	paymentsdomain "github.com/fcl-labs/fcl-commerce/internal/domains/payments/domain"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/ports"
	problems "github.com/fcl-labs/fcl-commerce/internal/shared/errors"
)

// WebhookHandlers verifies and dispatches provider payment notifications.
type WebhookHandlers struct {
	processor ports.Processor
	secrets   ports.SecretStore
	logger    *slog.Logger
}

// WebhookOption customizes the webhook handlers.
type WebhookOption func(*WebhookHandlers)

// WithWebhookLogger sets the logger used by the handlers.
func WithWebhookLogger(logger *slog.Logger) WebhookOption {
	return func(h *WebhookHandlers) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewWebhookHandlers wires the webhook endpoints.
func NewWebhookHandlers(processor ports.Processor, store ports.SecretStore, opts ...WebhookOption) *WebhookHandlers {
	h := &WebhookHandlers{
		processor: processor,
		secrets:   store,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Stripe handles payment_intent events signed with the Stripe webhook secret.
func (h *WebhookHandlers) Stripe(c *gin.Context) {
	payload, sigHeader, ok := h.readSigned(c, stripecard.SignatureHeader)
	if !ok {
		return
	}
	secret, err := h.secrets.Get(c.Request.Context(), secrets.StripeWebhookSecret)
	if err != nil {
		problems.Respond(c, problems.ErrUnauthorized.WithDetail("webhook verification unavailable"))
		return
	}
	event, err := stripecard.ParseEvent(payload, sigHeader, secret)
	if err != nil {
		h.logger.WarnContext(c.Request.Context(), "rejected stripe webhook", slog.String("error", err.Error()))
		problems.Respond(c, problems.ErrUnauthorized.WithDetail("signature verification failed"))
		return
	}
	h.dispatch(c, event)
}

// Coinbase handles Coinbase Commerce charge events.
func (h *WebhookHandlers) Coinbase(c *gin.Context) {
	payload, sigHeader, ok := h.readSigned(c, coinbase.SignatureHeader)
	if !ok {
		return
	}
	secret, err := h.secrets.Get(c.Request.Context(), secrets.CoinbaseWebhookSecret)
	if err != nil {
		problems.Respond(c, problems.ErrUnauthorized.WithDetail("webhook verification unavailable"))
		return
	}
	event, err := coinbase.ParseEvent(payload, sigHeader, secret)
	if err != nil {
		h.rejectParse(c, "coinbase", err, coinbase.ErrInvalidSignature)
		return
	}
	h.dispatch(c, event)
}

// NOWPayments handles NOWPayments IPN callbacks.
func (h *WebhookHandlers) NOWPayments(c *gin.Context) {
	payload, sigHeader, ok := h.readSigned(c, nowpayments.SignatureHeader)
	if !ok {
		return
	}
	secret, err := h.secrets.Get(c.Request.Context(), secrets.NOWPaymentsIPNSecret)
	if err != nil {
		problems.Respond(c, problems.ErrUnauthorized.WithDetail("webhook verification unavailable"))
		return
	}
	event, err := nowpayments.ParseEvent(payload, sigHeader, secret)
	if err != nil {
		h.rejectParse(c, "nowpayments", err, nowpayments.ErrInvalidSignature)
		return
	}
	h.dispatch(c, event)
}

func (h *WebhookHandlers) readSigned(c *gin.Context, header string) ([]byte, string, bool) {
	sigHeader := c.GetHeader(header)
	if sigHeader == "" {
		problems.Respond(c, problems.ErrBadRequest.WithDetail("missing signature header"))
		return nil, "", false
	}
	payload, err := c.GetRawData()
	if err != nil {
		problems.Respond(c, problems.ErrBadRequest.WithDetail("unreadable request body"))
		return nil, "", false
	}
	return payload, sigHeader, true
}

func (h *WebhookHandlers) rejectParse(c *gin.Context, provider string, err, invalidSig error) {
	h.logger.WarnContext(c.Request.Context(), "rejected webhook",
		slog.String("provider", provider),
		slog.String("error", err.Error()),
	)
	if errors.Is(err, invalidSig) {
		problems.Respond(c, problems.ErrUnauthorized.WithDetail("signature verification failed"))
		return
	}
	problems.Respond(c, problems.ErrBadRequest.WithDetail("malformed webhook payload"))
}

func (h *WebhookHandlers) dispatch(c *gin.Context, event paymentsdomain.Event) {
	if err := h.processor.Apply(c.Request.Context(), event); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "webhook processing failed",
			slog.String("provider", string(event.Provider)),
			slog.String("order_id", event.OrderID),
			slog.String("error", err.Error()),
		)
		problems.Respond(c, problems.ErrInternal.WithDetail("event processing failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

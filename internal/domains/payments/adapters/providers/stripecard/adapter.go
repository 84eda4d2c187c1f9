// Package stripecard adapts Stripe PaymentIntents to the payment provider port.
package stripecard

import (
	"context"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v79"
	stripeclient "github.com/stripe/stripe-go/v79/client"

	ordersdomain "github.com/fcl-labs/fcl-commerce/internal/domains/orders/domain"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/ports"
)

var _ ports.Provider = (*Adapter)(nil)

// MetadataOrderIDKey is the correlation key attached to every payment intent.
const MetadataOrderIDKey = "orderId"

// Adapter creates Stripe payment intents for card checkouts.
type Adapter struct {
	api *stripeclient.API
}

// New builds the adapter from an API secret key. The client is constructed
// once here and injected where needed; no package-level singleton.
func New(secretKey string) (*Adapter, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, errors.New("stripe secret key is required")
	}
	api := &stripeclient.API{}
	api.Init(secretKey, nil)
	return &Adapter{api: api}, nil
}

// NewWithAPI wires an existing Stripe client, used by tests with a stub backend.
func NewWithAPI(api *stripeclient.API) *Adapter {
	return &Adapter{api: api}
}

// CreatePayment creates a payment intent for the order total and returns the
// client secret the storefront confirms against.
func (a *Adapter) CreatePayment(ctx context.Context, order *ordersdomain.Order) (*ports.CheckoutSession, error) {
	if a == nil || a.api == nil {
		return nil, errors.New("stripe adapter not configured")
	}
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(order.Total),
		Currency: stripe.String(strings.ToLower(order.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata(MetadataOrderIDKey, order.ID)

	intent, err := a.api.PaymentIntents.New(params)
	if err != nil {
		return nil, ports.ProviderError("stripe", err)
	}
	return &ports.CheckoutSession{
		ExternalID:   intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

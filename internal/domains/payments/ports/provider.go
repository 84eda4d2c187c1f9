package ports

import (
	"context"
	"errors"
	"fmt"
	"time"

	ordersdomain "github.com/fcl-labs/fcl-commerce/internal/domains/orders/domain"
)

// ErrProvider wraps any non-2xx or malformed response from a payment
// provider's creation endpoint.
var ErrProvider = errors.New("payment provider error")

// ProviderError builds an ErrProvider-tagged error with call context.
func ProviderError(provider string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrProvider, provider, err)
}

// CheckoutSession is the handle returned after creating a provider-side
// payment object. ClientSecret is only set by the card provider; crypto
// providers return a hosted checkout URL instead.
type CheckoutSession struct {
	ExternalID   string
	CheckoutURL  string
	ClientSecret string
	ExpiresAt    time.Time
}

// Provider creates a charge/invoice/payment-intent against an external API.
// Implementations perform a single synchronous call with no retries; a failed
// call leaves the order pending with no correlation id, safe to retry.
type Provider interface {
	CreatePayment(ctx context.Context, order *ordersdomain.Order) (*CheckoutSession, error)
}

package ports

import (
	"context"
	"errors"

	ordersdomain "github.com/fcl-labs/fcl-commerce/internal/domains/orders/domain"
)

// ErrSecretNotFound indicates the named secret is not configured.
var ErrSecretNotFound = errors.New("secret not found")

// SecretStore resolves provider API keys and webhook shared secrets.
type SecretStore interface {
	Get(ctx context.Context, name string) (string, error)
}

// NotificationSender delivers the order confirmation. Failures are logged by
// callers and never escalate into a transition failure.
type NotificationSender interface {
	SendOrderConfirmation(ctx context.Context, order *ordersdomain.Order) error
}

// RegistrationResult reports the outcome of a blockchain registration attempt.
type RegistrationResult struct {
	Success       bool
	TransactionID string
}

// BlockchainRegistrar anchors a redemption code externally. Best-effort: a
// failed registration never invalidates the order.
type BlockchainRegistrar interface {
	Register(ctx context.Context, uniqueCode string, metadata map[string]string) (*RegistrationResult, error)
}

// CodeGenerator produces redemption codes for paid orders.
type CodeGenerator interface {
	Generate() (string, error)
}

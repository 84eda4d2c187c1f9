// Package secrets provides the environment-backed secret store used in
// development and single-node deployments.
package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/ports"
)

var _ ports.SecretStore = (*EnvStore)(nil)

// Well-known secret names shared with the deployment environment.
const (
	StripeSecretKey       = "STRIPE_SECRET_KEY"
	StripeWebhookSecret   = "STRIPE_WEBHOOK_SECRET"
	CoinbaseAPIKey        = "COINBASE_API_KEY"
	CoinbaseWebhookSecret = "COINBASE_WEBHOOK_SECRET"
	NOWPaymentsAPIKey     = "NOWPAYMENTS_API_KEY"
	NOWPaymentsIPNSecret  = "NOWPAYMENTS_IPN_SECRET"
	BlockchainAPIKey      = "BLOCKCHAIN_API_KEY"
	BlockchainNetwork     = "BLOCKCHAIN_NETWORK"
)

// EnvStore resolves secrets from environment variables.
type EnvStore struct{}

// NewEnvStore constructs the environment-backed store.
func NewEnvStore() *EnvStore {
	return &EnvStore{}
}

// Get returns the named secret, or ErrSecretNotFound when unset or blank.
func (s *EnvStore) Get(_ context.Context, name string) (string, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return "", fmt.Errorf("%w: %s", ports.ErrSecretNotFound, name)
	}
	return value, nil
}

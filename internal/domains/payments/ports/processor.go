package ports

import (
	"context"

	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/domain"
)

// Processor applies normalized payment events to orders.
type Processor interface {
	Apply(ctx context.Context, event domain.Event) error
}

// FulfillmentInput carries what the post-payment side effects need.
type FulfillmentInput struct {
	OrderID    string
	UniqueCode string
}

// FulfillmentOrchestrator runs the confirmation notification and the
// best-effort blockchain registration after an order is marked paid. The
// Temporal adapter makes this durable; the inline adapter runs it in-process.
type FulfillmentOrchestrator interface {
	Start(ctx context.Context, input FulfillmentInput) error
}

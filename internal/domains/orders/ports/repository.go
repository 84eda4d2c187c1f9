package ports

import (
	"context"
	"errors"

	"github.com/fcl-labs/fcl-commerce/internal/domains/orders/domain"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrStatusConflict indicates a guarded update observed a different stored
	// status than the caller expected.
	ErrStatusConflict = errors.New("order status changed concurrently")
)

// OrderUpdate is a partial field merge applied to a stored order. Nil fields
// are left untouched; the store sets UpdatedAt on every merge.
type OrderUpdate struct {
	Status                *domain.Status
	WebhookStatus         *string
	StripePaymentIntentID *string
	CryptoInvoiceID       *string
	UniqueCode            *string
	BlockchainTxID        *string

	// ExpectStatus, when set, makes the update conditional: the merge only
	// applies while the stored status equals this value, otherwise
	// ErrStatusConflict is returned.
	ExpectStatus *domain.Status
}

// Repository is the single source of truth for order state.
type Repository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	Update(ctx context.Context, id string, update OrderUpdate) (*domain.Order, error)
}

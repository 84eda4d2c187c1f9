package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fcl-labs/fcl-commerce/internal/domains/orders/domain"
	"github.com/fcl-labs/fcl-commerce/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order store for development and tests.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	now    func() time.Time
}

func NewRepository() *Repository {
	return &Repository{
		orders: map[string]*domain.Order{},
		now:    time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := cloneOrder(order)
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if clone.ID == "" {
		clone.ID = uuid.NewString()
	}
	now := r.now()
	clone.CreatedAt = now
	clone.UpdatedAt = now
	r.orders[clone.ID] = clone
	return cloneOrder(clone), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneOrder(order), nil
}

func (r *Repository) GetByNumber(_ context.Context, number string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, order := range r.orders {
		if order.OrderNumber == number {
			return cloneOrder(order), nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *Repository) ListByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Order, 0)
	for _, order := range r.orders {
		if order.UserID == userID {
			list = append(list, cloneOrder(order))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (r *Repository) Update(_ context.Context, id string, update ports.OrderUpdate) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if update.ExpectStatus != nil && order.Status != *update.ExpectStatus {
		return nil, ports.ErrStatusConflict
	}
	if update.Status != nil {
		order.Status = *update.Status
	}
	if update.WebhookStatus != nil {
		order.WebhookStatus = *update.WebhookStatus
	}
	if update.StripePaymentIntentID != nil {
		order.StripePaymentIntentID = *update.StripePaymentIntentID
	}
	if update.CryptoInvoiceID != nil {
		order.CryptoInvoiceID = *update.CryptoInvoiceID
	}
	if update.UniqueCode != nil {
		order.UniqueCode = *update.UniqueCode
	}
	if update.BlockchainTxID != nil {
		order.BlockchainTxID = *update.BlockchainTxID
	}
	order.UpdatedAt = r.now()
	return cloneOrder(order), nil
}

func cloneOrder(order *domain.Order) *domain.Order {
	clone := *order
	clone.Items = append([]domain.Item{}, order.Items...)
	if order.ShippingInfo != nil {
		shipping := *order.ShippingInfo
		clone.ShippingInfo = &shipping
	}
	return &clone
}

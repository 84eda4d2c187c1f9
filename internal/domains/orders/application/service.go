package application

import (
	"context"

	"github.com/fcl-labs/fcl-commerce/internal/domains/orders/domain"
	"github.com/fcl-labs/fcl-commerce/internal/domains/orders/ports"
)

// Service orchestrates the orders bounded context use cases.
type Service struct {
	repo           ports.Repository
	validateTotals bool
}

// Option configures optional service behavior.
type Option func(*Service)

// WithTotalsValidation enables server-side recomputation of the checkout
// total. The storefront historically trusted the client-supplied value, so
// this stays opt-in for compatibility with existing carts.
func WithTotalsValidation(enabled bool) Option {
	return func(s *Service) {
		s.validateTotals = enabled
	}
}

// NewService wires the orders service with its repository.
func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{repo: repo}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateOrder validates the request and persists a pending order. No partial
// order is stored on validation failure.
func (s *Service) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	order, err := domain.NewOrder(input.UserID, input.Items, input.Total, input.Currency, input.PaymentMethod)
	if err != nil {
		return nil, mapError(err)
	}
	order.BillingInfo = input.BillingInfo
	order.ShippingInfo = input.ShippingInfo
	if s.validateTotals {
		if err := order.ValidateTotal(); err != nil {
			return nil, mapError(err)
		}
	}
	saved, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// GetOrder loads a single order aggregate.
func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// GetOrderByNumber resolves an order by its human-readable order number, as
// shown on the confirmation page.
func (s *Service) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return s.repo.GetByNumber(ctx, number)
}

// ListUserOrders returns the user's orders, newest first.
func (s *Service) ListUserOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

var _ ports.Service = (*Service)(nil)

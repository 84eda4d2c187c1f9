package ports

import (
	"context"

	"github.com/fcl-labs/fcl-commerce/internal/domains/orders/domain"
)

// CreateOrderInput carries the order-creation request as received at the API
// boundary. Total is client-supplied; the service may re-validate it.
type CreateOrderInput struct {
	UserID        string
	Items         []domain.Item
	Total         int64
	Currency      string
	PaymentMethod domain.PaymentMethod
	BillingInfo   domain.Contact
	ShippingInfo  *domain.Contact
}

// Service exposes order use cases to transport adapters.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error)
	ListUserOrders(ctx context.Context, userID string) ([]*domain.Order, error)
}

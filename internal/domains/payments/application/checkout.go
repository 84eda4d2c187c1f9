package application

import (
	"context"
	"errors"
	"log/slog"

	ordersdomain "github.com/fcl-labs/fcl-commerce/internal/domains/orders/domain"
	ordersports "github.com/fcl-labs/fcl-commerce/internal/domains/orders/ports"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/ports"
)

var (
	// ErrOrderNotPayable signals the order already left pending status.
	ErrOrderNotPayable = errors.New("order is not payable")
	// ErrPaymentAlreadyCreated signals a provider payment object already exists.
	ErrPaymentAlreadyCreated = errors.New("payment already created for order")
	// ErrNoProviderConfigured signals no adapter serves the order's payment method.
	ErrNoProviderConfigured = errors.New("no payment provider configured for method")
)

// CheckoutService creates provider-side payment objects for pending orders
// and records the correlation id before handing checkout details back.
type CheckoutService struct {
	orders    ordersports.Repository
	providers map[ordersdomain.PaymentMethod]ports.Provider
	logger    *slog.Logger
}

// CheckoutOption configures the service.
type CheckoutOption func(*CheckoutService)

// WithCheckoutLogger injects a slog logger.
func WithCheckoutLogger(logger *slog.Logger) CheckoutOption {
	return func(s *CheckoutService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewCheckoutService wires the provider adapters keyed by payment method.
func NewCheckoutService(orders ordersports.Repository, providers map[ordersdomain.PaymentMethod]ports.Provider, opts ...CheckoutOption) *CheckoutService {
	s := &CheckoutService{
		orders:    orders,
		providers: providers,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreatePayment performs the single synchronous provider call for the order.
// The external id is persisted before the checkout handle is returned: a
// webhook may arrive before the client finishes its redirect, and it must be
// able to correlate. A provider failure leaves the order pending with no
// correlation, safe to retry.
func (s *CheckoutService) CreatePayment(ctx context.Context, orderID string) (*ports.CheckoutSession, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != ordersdomain.StatusPending {
		return nil, ErrOrderNotPayable
	}
	if order.CorrelationID() != "" {
		return nil, ErrPaymentAlreadyCreated
	}
	provider, ok := s.providers[order.PaymentMethod]
	if !ok || provider == nil {
		return nil, ErrNoProviderConfigured
	}

	session, err := provider.CreatePayment(ctx, order)
	if err != nil {
		return nil, err
	}

	update := ordersports.OrderUpdate{}
	if order.PaymentMethod == ordersdomain.MethodStripe {
		update.StripePaymentIntentID = &session.ExternalID
	} else {
		update.CryptoInvoiceID = &session.ExternalID
	}
	if _, err := s.orders.Update(ctx, order.ID, update); err != nil {
		return nil, err
	}

	s.logger.Info("provider payment created",
		slog.String("orderId", order.ID),
		slog.String("method", string(order.PaymentMethod)),
		slog.String("externalId", session.ExternalID))
	return session, nil
}

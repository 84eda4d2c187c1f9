package application

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	ordersports "github.com/fcl-labs/fcl-commerce/internal/domains/orders/ports"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/ports"
)

// Fulfiller runs the post-payment side effects: confirmation notification and
// best-effort blockchain registration. Both steps are safe to repeat; the
// registration step skips orders that already carry a transaction id.
type Fulfiller struct {
	orders    ordersports.Repository
	notifier  ports.NotificationSender
	registrar ports.BlockchainRegistrar
	logger    *slog.Logger
}

// FulfillerOption configures the fulfiller.
type FulfillerOption func(*Fulfiller)

// WithFulfillerLogger injects a slog logger.
func WithFulfillerLogger(logger *slog.Logger) FulfillerOption {
	return func(f *Fulfiller) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFulfiller wires the side-effect collaborators. registrar may be nil when
// blockchain anchoring is not configured.
func NewFulfiller(orders ordersports.Repository, notifier ports.NotificationSender, registrar ports.BlockchainRegistrar, opts ...FulfillerOption) *Fulfiller {
	f := &Fulfiller{
		orders:    orders,
		notifier:  notifier,
		registrar: registrar,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// SendConfirmation loads the order and delivers the confirmation notification.
func (f *Fulfiller) SendConfirmation(ctx context.Context, input ports.FulfillmentInput) error {
	if f.notifier == nil {
		return nil
	}
	order, err := f.orders.GetByID(ctx, input.OrderID)
	if err != nil {
		return fmt.Errorf("load order for confirmation: %w", err)
	}
	if err := f.notifier.SendOrderConfirmation(ctx, order); err != nil {
		return fmt.Errorf("send order confirmation: %w", err)
	}
	return nil
}

// RegisterCode anchors the redemption code and records the transaction id.
// Registration failure is reported through the result, not an error, so the
// caller can treat it as the soft failure it is.
func (f *Fulfiller) RegisterCode(ctx context.Context, input ports.FulfillmentInput) error {
	if f.registrar == nil {
		return nil
	}
	order, err := f.orders.GetByID(ctx, input.OrderID)
	if err != nil {
		return fmt.Errorf("load order for registration: %w", err)
	}
	if order.BlockchainTxID != "" {
		return nil
	}
	result, err := f.registrar.Register(ctx, input.UniqueCode, map[string]string{
		"orderId":  order.ID,
		"userId":   order.UserID,
		"total":    strconv.FormatInt(order.Total, 10),
		"currency": order.Currency,
	})
	if err != nil {
		return fmt.Errorf("register code: %w", err)
	}
	if !result.Success {
		f.logger.Warn("blockchain registration declined, order remains valid",
			slog.String("orderId", order.ID))
		return nil
	}
	if result.TransactionID != "" {
		if _, err := f.orders.Update(ctx, order.ID, ordersports.OrderUpdate{BlockchainTxID: &result.TransactionID}); err != nil {
			return fmt.Errorf("record blockchain tx: %w", err)
		}
	}
	return nil
}

// Run executes the full sequence in-process. Individual step failures are
// logged and never fail the run; payment confirmation already happened.
func (f *Fulfiller) Run(ctx context.Context, input ports.FulfillmentInput) error {
	if err := f.SendConfirmation(ctx, input); err != nil {
		f.logger.Error("confirmation notification failed",
			slog.String("orderId", input.OrderID),
			slog.String("error", err.Error()))
	}
	if err := f.RegisterCode(ctx, input); err != nil {
		f.logger.Error("blockchain registration failed",
			slog.String("orderId", input.OrderID),
			slog.String("error", err.Error()))
	}
	return nil
}

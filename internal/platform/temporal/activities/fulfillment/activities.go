package fulfillment

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	paymentsapp "github.com/fcl-labs/fcl-commerce/internal/domains/payments/application"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/ports"
)

// Activities groups the side-effect activities behind the fulfillment workflow.
type Activities struct {
	fulfiller *paymentsapp.Fulfiller
}

// NewActivities wires the fulfiller into the Temporal activities bundle.
func NewActivities(fulfiller *paymentsapp.Fulfiller) *Activities {
	return &Activities{fulfiller: fulfiller}
}

// SendConfirmation delivers the order confirmation notification.
func (a *Activities) SendConfirmation(ctx context.Context, input ports.FulfillmentInput) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.fulfiller == nil {
		logger.Error("fulfillment activities not initialized", "orderId", input.OrderID)
		return errors.New("fulfillment activities not initialized")
	}
	logger.Info("SendConfirmation activity started", "orderId", input.OrderID)
	if err := a.fulfiller.SendConfirmation(ctx, input); err != nil {
		logger.Error("SendConfirmation activity failed", "orderId", input.OrderID, "error", err)
		return err
	}
	logger.Info("SendConfirmation activity completed", "orderId", input.OrderID)
	return nil
}

// RegisterCode anchors the redemption code and records the transaction id.
func (a *Activities) RegisterCode(ctx context.Context, input ports.FulfillmentInput) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.fulfiller == nil {
		logger.Error("fulfillment activities not initialized", "orderId", input.OrderID)
		return errors.New("fulfillment activities not initialized")
	}
	logger.Info("RegisterCode activity started", "orderId", input.OrderID)
	if err := a.fulfiller.RegisterCode(ctx, input); err != nil {
		logger.Error("RegisterCode activity failed", "orderId", input.OrderID, "error", err)
		return err
	}
	logger.Info("RegisterCode activity completed", "orderId", input.OrderID)
	return nil
}

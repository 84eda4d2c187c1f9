package fulfillment

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/ports"
)

const (
	// WorkflowName is the public identifier for registering the workflow.
	WorkflowName = "orders.workflows.Fulfillment"
	// TaskQueue is the queue consumed by the worker processing fulfillment.
	TaskQueue = "ORDER_FULFILLMENT"

	// SendConfirmationActivityName delivers the order confirmation.
	SendConfirmationActivityName = "orders.activities.SendConfirmation"
	// RegisterCodeActivityName anchors the redemption code on chain.
	RegisterCodeActivityName = "orders.activities.RegisterCode"
)

// Workflow runs the post-payment side effects durably. Both activities are
// best-effort with respect to the paid status: exhausted retries are logged
// and the workflow still completes.
func Workflow(ctx workflow.Context, input ports.FulfillmentInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("fulfillment workflow started", "orderId", input.OrderID)

	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	if err := workflow.ExecuteActivity(ctx, SendConfirmationActivityName, input).Get(ctx, nil); err != nil {
		logger.Error("confirmation notification exhausted retries", "orderId", input.OrderID, "error", err)
	}
	if err := workflow.ExecuteActivity(ctx, RegisterCodeActivityName, input).Get(ctx, nil); err != nil {
		logger.Error("blockchain registration exhausted retries", "orderId", input.OrderID, "error", err)
	}

	logger.Info("fulfillment workflow completed", "orderId", input.OrderID)
	return nil
}

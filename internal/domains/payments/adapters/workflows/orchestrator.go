package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	paymentsapp "github.com/fcl-labs/fcl-commerce/internal/domains/payments/application"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/ports"
	fulfillmentwf "github.com/fcl-labs/fcl-commerce/internal/platform/temporal/workflows/fulfillment"
)

var (
	_ ports.FulfillmentOrchestrator = (*TemporalFulfillment)(nil)
	_ ports.FulfillmentOrchestrator = (*InlineFulfillment)(nil)
)

// TemporalFulfillment starts the fulfillment workflow on a Temporal cluster.
// The workflow id is derived from the order id, so provider redeliveries that
// race past the processor's status check still collapse into one execution.
type TemporalFulfillment struct {
	client    client.Client
	taskQueue string
}

// NewTemporalFulfillment wires a Temporal client into the orchestrator.
func NewTemporalFulfillment(c client.Client) *TemporalFulfillment {
	return &TemporalFulfillment{client: c, taskQueue: fulfillmentwf.TaskQueue}
}

// Start launches the workflow without waiting for completion; the webhook ack
// must not block on downstream side effects.
func (o *TemporalFulfillment) Start(ctx context.Context, input ports.FulfillmentInput) error {
	if o == nil || o.client == nil {
		return errors.New("temporal fulfillment not configured")
	}
	options := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("order-fulfillment-%s", input.OrderID),
		TaskQueue: o.taskQueue,
	}
	_, err := o.client.ExecuteWorkflow(ctx, options, fulfillmentwf.WorkflowName, input)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return nil
		}
		return err
	}
	return nil
}

// InlineFulfillment runs the side effects in-process, used for tests and as
// the fallback when no Temporal cluster is reachable.
type InlineFulfillment struct {
	fulfiller *paymentsapp.Fulfiller
}

// NewInlineFulfillment wraps the fulfiller for synchronous execution.
func NewInlineFulfillment(fulfiller *paymentsapp.Fulfiller) *InlineFulfillment {
	return &InlineFulfillment{fulfiller: fulfiller}
}

// Start delegates to the fulfiller without durable orchestration.
func (o *InlineFulfillment) Start(ctx context.Context, input ports.FulfillmentInput) error {
	if o == nil || o.fulfiller == nil {
		return errors.New("inline fulfillment not configured")
	}
	return o.fulfiller.Run(ctx, input)
}

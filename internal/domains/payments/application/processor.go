package application

import (
	"context"
	"errors"
	"log/slog"

	ordersdomain "github.com/fcl-labs/fcl-commerce/internal/domains/orders/domain"
	ordersports "github.com/fcl-labs/fcl-commerce/internal/domains/orders/ports"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/domain"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/ports"
)

var _ ports.Processor = (*Processor)(nil)

// Processor is the order payment state machine. It consumes normalized
// provider events, enforces legal status transitions, and triggers the
// fulfillment side effects exactly once per order.
//
// Delivery is at-least-once and unordered: idempotency rests on re-reading
// the stored status before applying paid-only side effects, backed by the
// status-guarded update in the order store.
type Processor struct {
	orders      ordersports.Repository
	codes       ports.CodeGenerator
	fulfillment ports.FulfillmentOrchestrator
	logger      *slog.Logger
}

// Option configures the processor.
type Option func(*Processor)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProcessor wires the state machine with its collaborators.
func NewProcessor(orders ordersports.Repository, codes ports.CodeGenerator, fulfillment ports.FulfillmentOrchestrator, opts ...Option) *Processor {
	p := &Processor{
		orders:      orders,
		codes:       codes,
		fulfillment: fulfillment,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Apply routes one normalized event through the transition table.
//
// A nil return means the event was handled (or deliberately ignored) and the
// provider should be acked. A non-nil return means the order store write
// failed and the provider's retry policy should redeliver.
func (p *Processor) Apply(ctx context.Context, event domain.Event) error {
	if event.OrderID == "" {
		p.logger.Warn("payment event without order id, ignoring",
			slog.String("provider", string(event.Provider)),
			slog.String("kind", string(event.Kind)),
			slog.String("providerObjectId", event.ProviderObjectID))
		return nil
	}
	order, err := p.orders.GetByID(ctx, event.OrderID)
	if err != nil {
		if errors.Is(err, ordersports.ErrNotFound) {
			p.logger.Warn("payment event references unknown order, ignoring",
				slog.String("orderId", event.OrderID),
				slog.String("provider", string(event.Provider)))
			return nil
		}
		return err
	}

	switch event.Kind {
	case domain.EventSucceeded:
		return p.confirm(ctx, order, event)
	case domain.EventFailed:
		return p.conclude(ctx, order, event, ordersdomain.StatusPaymentFailed)
	case domain.EventCanceled:
		return p.conclude(ctx, order, event, ordersdomain.StatusCanceled)
	case domain.EventDelayed, domain.EventPartiallyPaid:
		return p.annotate(ctx, order, event)
	default:
		p.logger.Info("unhandled payment event kind, ignoring",
			slog.String("orderId", order.ID),
			slog.String("provider", string(event.Provider)),
			slog.String("rawType", event.RawType))
		return nil
	}
}

// confirm marks the order paid, assigns the redemption code, and kicks off
// fulfillment. A redelivery for an already-paid order is a no-op unless the
// code assignment never landed, in which case the side effects resume so a
// failed delivery can heal on the provider's retry.
func (p *Processor) confirm(ctx context.Context, order *ordersdomain.Order, event domain.Event) error {
	updated := order
	if order.Status == ordersdomain.StatusPaid {
		if order.UniqueCode != "" {
			p.logger.Info("duplicate payment confirmation, already paid",
				slog.String("orderId", order.ID),
				slog.String("provider", string(event.Provider)))
			return nil
		}
		p.logger.Info("resuming confirmation side effects after partial delivery",
			slog.String("orderId", order.ID),
			slog.String("provider", string(event.Provider)))
	} else {
		status := ordersdomain.StatusPaid
		audit := event.AuditStatus()
		expect := order.Status
		update := ordersports.OrderUpdate{
			Status:        &status,
			WebhookStatus: &audit,
			ExpectStatus:  &expect,
		}
		setCorrelation(&update, order, event)

		var err error
		updated, err = p.orders.Update(ctx, order.ID, update)
		if err != nil {
			if errors.Is(err, ordersports.ErrStatusConflict) {
				// A concurrent delivery won the transition; nothing left to do.
				p.logger.Info("payment confirmation lost status race",
					slog.String("orderId", order.ID))
				return nil
			}
			return err
		}
	}

	code := updated.UniqueCode
	if code == "" {
		generated, err := p.codes.Generate()
		if err != nil {
			return err
		}
		code = generated
		if _, err := p.orders.Update(ctx, order.ID, ordersports.OrderUpdate{UniqueCode: &code}); err != nil {
			return err
		}
	}

	if err := p.fulfillment.Start(ctx, ports.FulfillmentInput{OrderID: order.ID, UniqueCode: code}); err != nil {
		// Fulfillment is best-effort from the webhook's perspective.
		p.logger.Error("fulfillment start failed",
			slog.String("orderId", order.ID),
			slog.String("error", err.Error()))
	}
	p.logger.Info("order payment confirmed",
		slog.String("orderId", order.ID),
		slog.String("provider", string(event.Provider)),
		slog.String("uniqueCode", code))
	return nil
}

// conclude moves a pending order to a failed/canceled terminal status.
// Paid orders are never regressed by late failure or cancellation events.
func (p *Processor) conclude(ctx context.Context, order *ordersdomain.Order, event domain.Event, target ordersdomain.Status) error {
	if !order.CanTransition(target) || order.Status == ordersdomain.StatusPaid {
		p.logger.Warn("ignoring out-of-order payment event",
			slog.String("orderId", order.ID),
			slog.String("currentStatus", string(order.Status)),
			slog.String("targetStatus", string(target)))
		return nil
	}
	audit := event.AuditStatus()
	expect := order.Status
	if _, err := p.orders.Update(ctx, order.ID, ordersports.OrderUpdate{
		Status:        &target,
		WebhookStatus: &audit,
		ExpectStatus:  &expect,
	}); err != nil {
		if errors.Is(err, ordersports.ErrStatusConflict) {
			return nil
		}
		return err
	}
	p.logger.Info("order payment concluded",
		slog.String("orderId", order.ID),
		slog.String("status", string(target)))
	return nil
}

// annotate records delayed/partial crypto events on the audit trail without
// changing the order status.
func (p *Processor) annotate(ctx context.Context, order *ordersdomain.Order, event domain.Event) error {
	if order.Terminal() {
		p.logger.Info("ignoring progress event for concluded order",
			slog.String("orderId", order.ID),
			slog.String("kind", string(event.Kind)))
		return nil
	}
	audit := event.AuditStatus()
	if _, err := p.orders.Update(ctx, order.ID, ordersports.OrderUpdate{WebhookStatus: &audit}); err != nil {
		return err
	}
	p.logger.Info("order payment progress noted",
		slog.String("orderId", order.ID),
		slog.String("webhookStatus", audit))
	return nil
}

// setCorrelation records the provider object id, honoring immutability of an
// already-set correlation.
func setCorrelation(update *ordersports.OrderUpdate, order *ordersdomain.Order, event domain.Event) {
	if event.ProviderObjectID == "" {
		return
	}
	switch event.Provider {
	case domain.ProviderStripe:
		if order.StripePaymentIntentID == "" {
			update.StripePaymentIntentID = &event.ProviderObjectID
		}
	case domain.ProviderCoinbase, domain.ProviderNOWPayments:
		if order.CryptoInvoiceID == "" {
			update.CryptoInvoiceID = &event.ProviderObjectID
		}
	}
}

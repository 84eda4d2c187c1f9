package domain

// Provider identifies the payment processor an event or charge belongs to.
type Provider string

const (
	ProviderStripe      Provider = "stripe"
	ProviderCoinbase    Provider = "coinbase"
	ProviderNOWPayments Provider = "nowpayments"
)

// EventKind classifies an inbound payment notification after boundary parsing.
type EventKind string

const (
	EventSucceeded     EventKind = "succeeded"
	EventFailed        EventKind = "failed"
	EventCanceled      EventKind = "canceled"
	EventDelayed       EventKind = "delayed"
	EventPartiallyPaid EventKind = "partially_paid"
	EventUnknown       EventKind = "unknown"
)

// Event is the single normalized representation the processor consumes.
// Provider-specific webhook shapes are parsed into this at the dispatcher
// boundary and never travel further.
type Event struct {
	Provider Provider
	Kind     EventKind
	// OrderID is the correlation metadata carried on the provider object.
	// It can be empty when the provider object was created out of band.
	OrderID string
	// ProviderObjectID is the charge/invoice/payment-intent identifier.
	ProviderObjectID string
	// RawAmount is the provider-reported amount in minor units, when present.
	RawAmount int64
	// RawType is the provider's original event type string, kept for audit logs.
	RawType string
}

// AuditStatus derives the webhookStatus audit string recorded on the order.
// The strings match the ones the storefront has always written.
func (e Event) AuditStatus() string {
	crypto := e.Provider == ProviderCoinbase || e.Provider == ProviderNOWPayments
	switch e.Kind {
	case EventSucceeded:
		if crypto {
			return "crypto_payment_confirmed"
		}
		return "payment_confirmed"
	case EventFailed:
		if crypto {
			return "crypto_payment_failed"
		}
		return "payment_failed"
	case EventCanceled:
		return "payment_canceled"
	case EventDelayed:
		return "crypto_payment_delayed"
	case EventPartiallyPaid:
		return "crypto_payment_partial"
	default:
		return ""
	}
}

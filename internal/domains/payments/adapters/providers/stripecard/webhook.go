package stripecard

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/domain"
)

// SignatureHeader is the header Stripe signs webhook deliveries with.
const SignatureHeader = "Stripe-Signature"

// ParseEvent authenticates a webhook delivery and normalizes it. The SDK's
// ConstructEvent both verifies the signature (timestamped HMAC scheme) and
// yields the typed envelope, so unlike the crypto providers there is no
// separate verify-then-parse step.
func ParseEvent(payload []byte, sigHeader, secret string) (domain.Event, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, secret)
	if err != nil {
		return domain.Event{}, fmt.Errorf("verify stripe webhook: %w", err)
	}

	normalized := domain.Event{
		Provider: domain.ProviderStripe,
		Kind:     kindForType(event.Type),
		RawType:  string(event.Type),
	}
	if normalized.Kind == domain.EventUnknown {
		return normalized, nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return domain.Event{}, fmt.Errorf("decode payment intent from event: %w", err)
	}
	normalized.OrderID = intent.Metadata[MetadataOrderIDKey]
	normalized.ProviderObjectID = intent.ID
	normalized.RawAmount = intent.Amount
	return normalized, nil
}

func kindForType(eventType stripe.EventType) domain.EventKind {
	switch eventType {
	case "payment_intent.succeeded":
		return domain.EventSucceeded
	case "payment_intent.payment_failed":
		return domain.EventFailed
	case "payment_intent.canceled":
		return domain.EventCanceled
	default:
		return domain.EventUnknown
	}
}

package coinbase

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/domain"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/signature"
)

// SignatureHeader carries the HMAC-SHA256 hex signature of the raw body.
const SignatureHeader = "X-CC-Webhook-Signature"

// ErrInvalidSignature indicates the webhook body failed authentication.
var ErrInvalidSignature = errors.New("invalid coinbase webhook signature")

type webhookEnvelope struct {
	Type string `json:"type"`
	Data struct {
		ID       string            `json:"id"`
		Metadata map[string]string `json:"metadata"`
	} `json:"data"`
}

// ParseEvent verifies the shared-secret signature over the raw payload, then
// parses the charge envelope into the normalized event shape.
func ParseEvent(payload []byte, sigHeader, secret string) (domain.Event, error) {
	if !signature.Verify(payload, sigHeader, secret) {
		return domain.Event{}, ErrInvalidSignature
	}
	var envelope webhookEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return domain.Event{}, fmt.Errorf("decode coinbase webhook: %w", err)
	}
	return domain.Event{
		Provider:         domain.ProviderCoinbase,
		Kind:             kindForType(envelope.Type),
		OrderID:          envelope.Data.Metadata["orderId"],
		ProviderObjectID: envelope.Data.ID,
		RawType:          envelope.Type,
	}, nil
}

func kindForType(eventType string) domain.EventKind {
	switch eventType {
	case "charge:confirmed":
		return domain.EventSucceeded
	case "charge:failed":
		return domain.EventFailed
	case "charge:delayed":
		return domain.EventDelayed
	default:
		return domain.EventUnknown
	}
}

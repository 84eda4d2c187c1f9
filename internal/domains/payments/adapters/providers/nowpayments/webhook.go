package nowpayments

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/domain"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/signature"
)

// SignatureHeader carries the HMAC-SHA256 hex signature of the raw IPN body.
const SignatureHeader = "X-Nowpayments-Sig"

// ErrInvalidSignature indicates the IPN body failed authentication.
var ErrInvalidSignature = errors.New("invalid nowpayments ipn signature")

type ipnPayload struct {
	PaymentStatus string      `json:"payment_status"`
	OrderID       string      `json:"order_id"`
	PaymentID     json.Number `json:"payment_id"`
}

// ParseEvent verifies the IPN signature over the raw payload and normalizes
// the flat status payload into the common event shape.
func ParseEvent(payload []byte, sigHeader, secret string) (domain.Event, error) {
	if !signature.Verify(payload, sigHeader, secret) {
		return domain.Event{}, ErrInvalidSignature
	}
	var ipn ipnPayload
	if err := json.Unmarshal(payload, &ipn); err != nil {
		return domain.Event{}, fmt.Errorf("decode nowpayments ipn: %w", err)
	}
	return domain.Event{
		Provider:         domain.ProviderNOWPayments,
		Kind:             kindForStatus(ipn.PaymentStatus),
		OrderID:          ipn.OrderID,
		ProviderObjectID: ipn.PaymentID.String(),
		RawType:          ipn.PaymentStatus,
	}, nil
}

func kindForStatus(status string) domain.EventKind {
	switch status {
	case "confirmed":
		return domain.EventSucceeded
	case "failed":
		return domain.EventFailed
	case "partially_paid":
		return domain.EventPartiallyPaid
	default:
		return domain.EventUnknown
	}
}

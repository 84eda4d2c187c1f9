package stripecard

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"

	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/domain"
)

const webhookSecret = "whsec_test"

// signatureHeaderFor reproduces Stripe's v1 signature scheme: HMAC-SHA256
// over "<timestamp>.<payload>" carried as "t=<timestamp>,v1=<hex>".
func signatureHeaderFor(payload []byte, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	fmt.Fprintf(mac, "%d.%s", at.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func eventPayload(eventType string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"api_version": %q,
		"type": %q,
		"data": {
			"object": {
				"id": "pi_123",
				"object": "payment_intent",
				"amount": 3160,
				"metadata": {"orderId": "ord-1"}
			}
		}
	}`, stripe.APIVersion, eventType))
}

func TestParseEvent_SucceededIntent(t *testing.T) {
	payload := eventPayload("payment_intent.succeeded")
	header := signatureHeaderFor(payload, time.Now())

	event, err := ParseEvent(payload, header, webhookSecret)
	require.NoError(t, err)

	assert.Equal(t, domain.ProviderStripe, event.Provider)
	assert.Equal(t, domain.EventSucceeded, event.Kind)
	assert.Equal(t, "ord-1", event.OrderID)
	assert.Equal(t, "pi_123", event.ProviderObjectID)
	assert.Equal(t, int64(3160), event.RawAmount)
	assert.Equal(t, "payment_intent.succeeded", event.RawType)
}

func TestParseEvent_KindMapping(t *testing.T) {
	cases := []struct {
		eventType string
		want      domain.EventKind
	}{
		{"payment_intent.succeeded", domain.EventSucceeded},
		{"payment_intent.payment_failed", domain.EventFailed},
		{"payment_intent.canceled", domain.EventCanceled},
	}
	for _, tc := range cases {
		t.Run(tc.eventType, func(t *testing.T) {
			payload := eventPayload(tc.eventType)
			header := signatureHeaderFor(payload, time.Now())
			event, err := ParseEvent(payload, header, webhookSecret)
			require.NoError(t, err)
			assert.Equal(t, tc.want, event.Kind)
		})
	}
}

func TestParseEvent_UnhandledTypeSkipsIntentDecode(t *testing.T) {
	payload := eventPayload("payment_intent.created")
	header := signatureHeaderFor(payload, time.Now())

	event, err := ParseEvent(payload, header, webhookSecret)
	require.NoError(t, err)
	assert.Equal(t, domain.EventUnknown, event.Kind)
	assert.Empty(t, event.OrderID)
	assert.Equal(t, "payment_intent.created", event.RawType)
}

func TestParseEvent_InvalidSignature(t *testing.T) {
	payload := eventPayload("payment_intent.succeeded")

	_, err := ParseEvent(payload, "t=0,v1=deadbeef", webhookSecret)
	require.Error(t, err)
}

func TestParseEvent_StaleTimestamp(t *testing.T) {
	payload := eventPayload("payment_intent.succeeded")
	header := signatureHeaderFor(payload, time.Now().Add(-time.Hour))

	_, err := ParseEvent(payload, header, webhookSecret)
	require.Error(t, err)
}

package coinbase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/domain"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/signature"
)

const webhookSecret = "whsec-test"

func signedPayload(t *testing.T, body string) ([]byte, string) {
	t.Helper()
	payload := []byte(body)
	return payload, signature.Compute(payload, webhookSecret)
}

func TestParseEvent_ConfirmedCharge(t *testing.T) {
	payload, sig := signedPayload(t, `{"type":"charge:confirmed","data":{"id":"charge-1","metadata":{"orderId":"ord-1"}}}`)

	event, err := ParseEvent(payload, sig, webhookSecret)
	require.NoError(t, err)

	assert.Equal(t, domain.ProviderCoinbase, event.Provider)
	assert.Equal(t, domain.EventSucceeded, event.Kind)
	assert.Equal(t, "ord-1", event.OrderID)
	assert.Equal(t, "charge-1", event.ProviderObjectID)
	assert.Equal(t, "charge:confirmed", event.RawType)
}

func TestParseEvent_KindMapping(t *testing.T) {
	cases := []struct {
		eventType string
		want      domain.EventKind
	}{
		{"charge:confirmed", domain.EventSucceeded},
		{"charge:failed", domain.EventFailed},
		{"charge:delayed", domain.EventDelayed},
		{"charge:created", domain.EventUnknown},
		{"charge:pending", domain.EventUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.eventType, func(t *testing.T) {
			payload, sig := signedPayload(t, `{"type":"`+tc.eventType+`","data":{"id":"charge-1","metadata":{}}}`)
			event, err := ParseEvent(payload, sig, webhookSecret)
			require.NoError(t, err)
			assert.Equal(t, tc.want, event.Kind)
		})
	}
}

func TestParseEvent_InvalidSignature(t *testing.T) {
	payload, _ := signedPayload(t, `{"type":"charge:confirmed","data":{"id":"charge-1"}}`)

	_, err := ParseEvent(payload, "deadbeef", webhookSecret)
	require.ErrorIs(t, err, ErrInvalidSignature)

	_, err = ParseEvent(payload, "", webhookSecret)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParseEvent_MalformedBody(t *testing.T) {
	payload, sig := signedPayload(t, `not-json`)

	_, err := ParseEvent(payload, sig, webhookSecret)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidSignature)
}

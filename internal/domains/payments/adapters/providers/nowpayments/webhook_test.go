package nowpayments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/domain"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/signature"
)

const ipnSecret = "ipn-test"

func TestParseEvent_ConfirmedPayment(t *testing.T) {
	payload := []byte(`{"payment_status":"confirmed","order_id":"ord-1","payment_id":5077125931}`)
	sig := signature.Compute(payload, ipnSecret)

	event, err := ParseEvent(payload, sig, ipnSecret)
	require.NoError(t, err)

	assert.Equal(t, domain.ProviderNOWPayments, event.Provider)
	assert.Equal(t, domain.EventSucceeded, event.Kind)
	assert.Equal(t, "ord-1", event.OrderID)
	assert.Equal(t, "5077125931", event.ProviderObjectID)
	assert.Equal(t, "confirmed", event.RawType)
}

func TestParseEvent_StatusMapping(t *testing.T) {
	cases := []struct {
		status string
		want   domain.EventKind
	}{
		{"confirmed", domain.EventSucceeded},
		{"failed", domain.EventFailed},
		{"partially_paid", domain.EventPartiallyPaid},
		{"waiting", domain.EventUnknown},
		{"sending", domain.EventUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			payload := []byte(`{"payment_status":"` + tc.status + `","order_id":"ord-1","payment_id":"pay-1"}`)
			sig := signature.Compute(payload, ipnSecret)
			event, err := ParseEvent(payload, sig, ipnSecret)
			require.NoError(t, err)
			assert.Equal(t, tc.want, event.Kind)
		})
	}
}

func TestParseEvent_InvalidSignature(t *testing.T) {
	payload := []byte(`{"payment_status":"confirmed","order_id":"ord-1"}`)

	_, err := ParseEvent(payload, "deadbeef", ipnSecret)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParseEvent_MalformedBody(t *testing.T) {
	payload := []byte(`not-json`)
	sig := signature.Compute(payload, ipnSecret)

	_, err := ParseEvent(payload, sig, ipnSecret)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidSignature)
}

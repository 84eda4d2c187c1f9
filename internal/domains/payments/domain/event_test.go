package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuditStatus(t *testing.T) {
	cases := []struct {
		name     string
		provider Provider
		kind     EventKind
		want     string
	}{
		{"stripe succeeded", ProviderStripe, EventSucceeded, "payment_confirmed"},
		{"stripe failed", ProviderStripe, EventFailed, "payment_failed"},
		{"stripe canceled", ProviderStripe, EventCanceled, "payment_canceled"},
		{"coinbase confirmed", ProviderCoinbase, EventSucceeded, "crypto_payment_confirmed"},
		{"coinbase failed", ProviderCoinbase, EventFailed, "crypto_payment_failed"},
		{"coinbase delayed", ProviderCoinbase, EventDelayed, "crypto_payment_delayed"},
		{"nowpayments confirmed", ProviderNOWPayments, EventSucceeded, "crypto_payment_confirmed"},
		{"nowpayments failed", ProviderNOWPayments, EventFailed, "crypto_payment_failed"},
		{"nowpayments partial", ProviderNOWPayments, EventPartiallyPaid, "crypto_payment_partial"},
		{"unknown kind", ProviderStripe, EventUnknown, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event := Event{Provider: tc.provider, Kind: tc.kind}
			assert.Equal(t, tc.want, event.AuditStatus())
		})
	}
}

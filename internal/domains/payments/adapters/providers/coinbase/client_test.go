package coinbase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ordersdomain "github.com/fcl-labs/fcl-commerce/internal/domains/orders/domain"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/ports"
)

func testOrder() *ordersdomain.Order {
	return &ordersdomain.Order{
		ID:            "ord-1",
		UserID:        "user-1",
		Total:         3160,
		Currency:      "USD",
		PaymentMethod: ordersdomain.MethodCoinbase,
		Status:        ordersdomain.StatusPending,
	}
}

func TestCreatePayment_PostsChargeAndMapsResponse(t *testing.T) {
	var received chargeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/charges", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-CC-Api-Key"))
		assert.Equal(t, "2018-03-22", r.Header.Get("X-CC-Version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"charge-1","hosted_url":"https://commerce.coinbase.com/charges/charge-1","expires_at":"2026-02-01T13:00:00Z"}}`))
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	session, err := client.CreatePayment(context.Background(), testOrder())
	require.NoError(t, err)

	assert.Equal(t, "charge-1", session.ExternalID)
	assert.Equal(t, "https://commerce.coinbase.com/charges/charge-1", session.CheckoutURL)
	assert.Equal(t, "2026-02-01T13:00:00Z", session.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"))

	assert.Equal(t, "31.60", received.LocalPrice.Amount)
	assert.Equal(t, "USD", received.LocalPrice.Currency)
	assert.Equal(t, "fixed_price", received.PricingType)
	assert.Equal(t, "ord-1", received.Metadata["orderId"])
}

func TestCreatePayment_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewClient("bad-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = client.CreatePayment(context.Background(), testOrder())
	require.ErrorIs(t, err, ports.ErrProvider)
}

func TestCreatePayment_MissingChargeID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = client.CreatePayment(context.Background(), testOrder())
	require.ErrorIs(t, err, ports.ErrProvider)
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient("  ")
	require.Error(t, err)
}

func TestMinorToMajor(t *testing.T) {
	assert.Equal(t, "31.60", minorToMajor(3160))
	assert.Equal(t, "0.05", minorToMajor(5))
	assert.Equal(t, "10.00", minorToMajor(1000))
}

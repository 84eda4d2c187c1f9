package nowpayments

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
		Total:         2160,
		Currency:      "USD",
		PaymentMethod: ordersdomain.MethodNOWPayments,
		Status:        ordersdomain.StatusPending,
	}
}

func TestCreatePayment_PostsPaymentAndMapsResponse(t *testing.T) {
	var received paymentRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"payment_id":5077125931,"pay_url":"https://nowpayments.io/payment/?iid=5077125931","expiration_estimate_date":"2026-02-01T13:20:00Z"}`))
	}))
	defer server.Close()

	client, err := NewClient("test-key", "https://shop.example.com/v1/webhooks/nowpayments", WithBaseURL(server.URL))
	require.NoError(t, err)

	session, err := client.CreatePayment(context.Background(), testOrder())
	require.NoError(t, err)

	assert.Equal(t, "5077125931", session.ExternalID)
	assert.Equal(t, "https://nowpayments.io/payment/?iid=5077125931", session.CheckoutURL)
	assert.False(t, session.ExpiresAt.IsZero())

	assert.Equal(t, "21.60", received.PriceAmount)
	assert.Equal(t, "usd", received.PriceCurrency)
	assert.Equal(t, "btc", received.PayCurrency)
	assert.Equal(t, "ord-1", received.OrderID)
	assert.Equal(t, "https://shop.example.com/v1/webhooks/nowpayments", received.IPNCallbackURL)
}

func TestCreatePayment_CustomPayCurrency(t *testing.T) {
	var received paymentRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"payment_id":"pay-1","pay_url":"https://nowpayments.io/payment/?iid=pay-1"}`))
	}))
	defer server.Close()

	client, err := NewClient("test-key", "https://shop.example.com/ipn", WithBaseURL(server.URL), WithPayCurrency("ETH"))
	require.NoError(t, err)

	_, err = client.CreatePayment(context.Background(), testOrder())
	require.NoError(t, err)
	assert.Equal(t, "eth", received.PayCurrency)
}

func TestCreatePayment_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client, err := NewClient("bad-key", "https://shop.example.com/ipn", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = client.CreatePayment(context.Background(), testOrder())
	require.ErrorIs(t, err, ports.ErrProvider)
}

func TestCreatePayment_MissingPaymentID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pay_url":"https://nowpayments.io/payment"}`))
	}))
	defer server.Close()

	client, err := NewClient("test-key", "https://shop.example.com/ipn", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = client.CreatePayment(context.Background(), testOrder())
	require.ErrorIs(t, err, ports.ErrProvider)
}

func TestNewClient_RequiresKeyAndCallback(t *testing.T) {
	_, err := NewClient("", "https://shop.example.com/ipn")
	require.Error(t, err)

	_, err = NewClient("test-key", "  ")
	require.Error(t, err)
}

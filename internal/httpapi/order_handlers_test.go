package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcl-labs/fcl-commerce/internal/domains/orders/adapters/memory"
	ordersapp "github.com/fcl-labs/fcl-commerce/internal/domains/orders/application"
	ordersdomain "github.com/fcl-labs/fcl-commerce/internal/domains/orders/domain"
	paymentsapp "github.com/fcl-labs/fcl-commerce/internal/domains/payments/application"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/ports"
)

type stubProvider struct {
	session *ports.CheckoutSession
	err     error
}

func (s *stubProvider) CreatePayment(_ context.Context, _ *ordersdomain.Order) (*ports.CheckoutSession, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

type orderFixture struct {
	router *gin.Engine
	repo   *memory.Repository
}

func newOrderFixture(t *testing.T, providers map[ordersdomain.PaymentMethod]ports.Provider) *orderFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := memory.NewRepository()
	service := ordersapp.NewService(repo)
	checkout := paymentsapp.NewCheckoutService(repo, providers)
	router := NewRouter(Handlers{Orders: NewOrderHandlers(service, checkout)})
	return &orderFixture{router: router, repo: repo}
}

func (f *orderFixture) do(method, path string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, req)
	return recorder
}

func createOrderBody() []byte {
	return []byte(`{
		"userId": "user-1",
		"items": [{"sku": "sku-1", "title": "Widget", "price": 1000, "quantity": 2}],
		"total": 3160,
		"currency": "usd",
		"paymentMethod": "stripe",
		"billingInfo": {"email": "buyer@example.com"},
		"shippingInfo": {"address": "1 Main St", "city": "Springfield", "country": "US", "zip": "12345"}
	}`)
}

func TestCreateOrderEndpoint_Returns201(t *testing.T) {
	f := newOrderFixture(t, nil)

	recorder := f.do(http.MethodPost, "/v1/orders", createOrderBody())
	require.Equal(t, http.StatusCreated, recorder.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.NotEmpty(t, response["orderId"])
	assert.NotEmpty(t, response["orderNumber"])
	assert.Equal(t, "user-1", response["userId"])
	assert.Equal(t, "pending", response["status"])
	assert.Equal(t, "USD", response["currency"])
	assert.Equal(t, "stripe", response["paymentMethod"])
	assert.Equal(t, float64(3160), response["total"])
	// Not yet assigned at creation time.
	assert.NotContains(t, response, "uniqueCode")
	assert.NotContains(t, response, "webhookStatus")
}

func TestCreateOrderEndpoint_ValidationProblem(t *testing.T) {
	f := newOrderFixture(t, nil)

	body := []byte(`{"userId": "", "items": [], "total": 0, "paymentMethod": "stripe"}`)
	recorder := f.do(http.MethodPost, "/v1/orders", body)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Header().Get("Content-Type"), "application/problem+json")
}

func TestCreateOrderEndpoint_MalformedJSON(t *testing.T) {
	f := newOrderFixture(t, nil)

	recorder := f.do(http.MethodPost, "/v1/orders", []byte(`{`))
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestGetOrderEndpoint_NotFound(t *testing.T) {
	f := newOrderFixture(t, nil)

	recorder := f.do(http.MethodGet, "/v1/orders/missing", nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Contains(t, recorder.Header().Get("Content-Type"), "application/problem+json")
}

func TestListOrdersEndpoint_RequiresUserID(t *testing.T) {
	f := newOrderFixture(t, nil)

	recorder := f.do(http.MethodGet, "/v1/orders", nil)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestListOrdersEndpoint_LookupByOrderNumber(t *testing.T) {
	f := newOrderFixture(t, nil)

	created := f.do(http.MethodPost, "/v1/orders", createOrderBody())
	require.Equal(t, http.StatusCreated, created.Code)
	var createdBody map[string]any
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &createdBody))
	number, _ := createdBody["orderNumber"].(string)
	require.NotEmpty(t, number)

	recorder := f.do(http.MethodGet, "/v1/orders?orderNumber="+number, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var listed struct {
		Orders []map[string]any `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &listed))
	require.Len(t, listed.Orders, 1)
	assert.Equal(t, number, listed.Orders[0]["orderNumber"])

	missing := f.do(http.MethodGet, "/v1/orders?orderNumber=FCL-00000000-FFF", nil)
	require.Equal(t, http.StatusNotFound, missing.Code)
}

func TestListOrdersEndpoint_ReturnsUserOrders(t *testing.T) {
	f := newOrderFixture(t, nil)

	created := f.do(http.MethodPost, "/v1/orders", createOrderBody())
	require.Equal(t, http.StatusCreated, created.Code)

	recorder := f.do(http.MethodGet, "/v1/orders?userId=user-1", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		Orders []map[string]any `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	require.Len(t, response.Orders, 1)
	assert.Equal(t, "user-1", response.Orders[0]["userId"])
}

func TestCreatePaymentEndpoint_ReturnsSession(t *testing.T) {
	provider := &stubProvider{session: &ports.CheckoutSession{ExternalID: "pi_123", ClientSecret: "pi_123_secret"}}
	f := newOrderFixture(t, map[ordersdomain.PaymentMethod]ports.Provider{
		ordersdomain.MethodStripe: provider,
	})

	created := f.do(http.MethodPost, "/v1/orders", createOrderBody())
	require.Equal(t, http.StatusCreated, created.Code)
	var order map[string]any
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &order))
	orderID := order["orderId"].(string)

	recorder := f.do(http.MethodPost, "/v1/orders/"+orderID+"/payment", nil)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var session map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &session))
	assert.Equal(t, "pi_123", session["externalId"])
	assert.Equal(t, "pi_123_secret", session["clientSecret"])
}

func TestCreatePaymentEndpoint_SecondCallConflicts(t *testing.T) {
	provider := &stubProvider{session: &ports.CheckoutSession{ExternalID: "pi_123"}}
	f := newOrderFixture(t, map[ordersdomain.PaymentMethod]ports.Provider{
		ordersdomain.MethodStripe: provider,
	})

	created := f.do(http.MethodPost, "/v1/orders", createOrderBody())
	var order map[string]any
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &order))
	orderID := order["orderId"].(string)

	first := f.do(http.MethodPost, "/v1/orders/"+orderID+"/payment", nil)
	require.Equal(t, http.StatusCreated, first.Code)

	second := f.do(http.MethodPost, "/v1/orders/"+orderID+"/payment", nil)
	require.Equal(t, http.StatusConflict, second.Code)
}

func TestCreatePaymentEndpoint_NoProviderConfigured(t *testing.T) {
	f := newOrderFixture(t, nil)

	created := f.do(http.MethodPost, "/v1/orders", createOrderBody())
	var order map[string]any
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &order))
	orderID := order["orderId"].(string)

	recorder := f.do(http.MethodPost, "/v1/orders/"+orderID+"/payment", nil)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestCreatePaymentEndpoint_UpstreamFailure(t *testing.T) {
	provider := &stubProvider{err: ports.ProviderError("stripe", assert.AnError)}
	f := newOrderFixture(t, map[ordersdomain.PaymentMethod]ports.Provider{
		ordersdomain.MethodStripe: provider,
	})

	created := f.do(http.MethodPost, "/v1/orders", createOrderBody())
	var order map[string]any
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &order))
	orderID := order["orderId"].(string)

	recorder := f.do(http.MethodPost, "/v1/orders/"+orderID+"/payment", nil)
	require.Equal(t, http.StatusBadGateway, recorder.Code)
}

func TestCreatePaymentEndpoint_UnknownOrder(t *testing.T) {
	f := newOrderFixture(t, map[ordersdomain.PaymentMethod]ports.Provider{
		ordersdomain.MethodStripe: &stubProvider{},
	})

	recorder := f.do(http.MethodPost, "/v1/orders/missing/payment", nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestHealthz(t *testing.T) {
	f := newOrderFixture(t, nil)
	recorder := f.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
}

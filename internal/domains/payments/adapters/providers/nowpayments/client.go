// Package nowpayments adapts NOWPayments invoices to the payment provider port.
package nowpayments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	ordersdomain "github.com/fcl-labs/fcl-commerce/internal/domains/orders/domain"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/ports"
)

var _ ports.Provider = (*Client)(nil)

// DefaultBaseURL is the NOWPayments API root.
const DefaultBaseURL = "https://api.nowpayments.io"

// Client creates payments against the NOWPayments API with an IPN callback.
type Client struct {
	baseURL     string
	apiKey      string
	callbackURL string
	payCurrency string
	httpClient  *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the API root, used by tests against httptest servers.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.baseURL = strings.TrimRight(trimmed, "/")
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithPayCurrency overrides the settlement currency (default btc).
func WithPayCurrency(currency string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(currency); trimmed != "" {
			c.payCurrency = strings.ToLower(trimmed)
		}
	}
}

// NewClient instantiates the NOWPayments client. callbackURL is the absolute
// URL of this service's IPN webhook endpoint.
func NewClient(apiKey, callbackURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("nowpayments api key is required")
	}
	if strings.TrimSpace(callbackURL) == "" {
		return nil, errors.New("nowpayments ipn callback url is required")
	}
	c := &Client{
		baseURL:     DefaultBaseURL,
		apiKey:      apiKey,
		callbackURL: callbackURL,
		payCurrency: "btc",
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

type paymentRequest struct {
	PriceAmount      string `json:"price_amount"`
	PriceCurrency    string `json:"price_currency"`
	PayCurrency      string `json:"pay_currency"`
	OrderID          string `json:"order_id"`
	OrderDescription string `json:"order_description"`
	IPNCallbackURL   string `json:"ipn_callback_url"`
}

type paymentResponse struct {
	PaymentID              json.Number `json:"payment_id"`
	PayURL                 string      `json:"pay_url"`
	ExpirationEstimateDate string      `json:"expiration_estimate_date"`
}

// CreatePayment creates an invoice and returns the hosted payment URL.
func (c *Client) CreatePayment(ctx context.Context, order *ordersdomain.Order) (*ports.CheckoutSession, error) {
	if c == nil || c.httpClient == nil {
		return nil, errors.New("nowpayments client not configured")
	}
	request := paymentRequest{
		PriceAmount:      minorToMajor(order.Total),
		PriceCurrency:    strings.ToLower(order.Currency),
		PayCurrency:      c.payCurrency,
		OrderID:          order.ID,
		OrderDescription: fmt.Sprintf("Payment for order %s", order.ID),
		IPNCallbackURL:   c.callbackURL,
	}
	body, err := json.Marshal(request)
	if err != nil {
		return nil, ports.ProviderError("nowpayments", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payment", bytes.NewReader(body))
	if err != nil {
		return nil, ports.ProviderError("nowpayments", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ports.ProviderError("nowpayments", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, ports.ProviderError("nowpayments", fmt.Errorf("unexpected status %s", resp.Status))
	}

	var payment paymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return nil, ports.ProviderError("nowpayments", fmt.Errorf("decode payment response: %w", err))
	}
	if payment.PaymentID.String() == "" {
		return nil, ports.ProviderError("nowpayments", errors.New("payment response missing id"))
	}
	session := &ports.CheckoutSession{
		ExternalID:  payment.PaymentID.String(),
		CheckoutURL: payment.PayURL,
	}
	if payment.ExpirationEstimateDate != "" {
		if expires, err := time.Parse(time.RFC3339, payment.ExpirationEstimateDate); err == nil {
			session.ExpiresAt = expires
		}
	}
	return session, nil
}

func minorToMajor(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}

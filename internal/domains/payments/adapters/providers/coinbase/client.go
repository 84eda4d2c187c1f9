// Package coinbase adapts Coinbase Commerce charges to the payment provider port.
package coinbase

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

const (
	// DefaultBaseURL is the Coinbase Commerce API root.
	DefaultBaseURL = "https://api.commerce.coinbase.com"
	apiVersion     = "2018-03-22"
)

// Client creates fixed-price charges against the Coinbase Commerce API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
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

// NewClient instantiates the Coinbase Commerce client with sane defaults.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("coinbase api key is required")
	}
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

type chargeRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	LocalPrice  localPrice        `json:"local_price"`
	PricingType string            `json:"pricing_type"`
	Metadata    map[string]string `json:"metadata"`
}

type localPrice struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type chargeResponse struct {
	Data struct {
		ID        string    `json:"id"`
		HostedURL string    `json:"hosted_url"`
		ExpiresAt time.Time `json:"expires_at"`
	} `json:"data"`
}

// CreatePayment creates a fixed-price charge and returns the hosted checkout URL.
func (c *Client) CreatePayment(ctx context.Context, order *ordersdomain.Order) (*ports.CheckoutSession, error) {
	if c == nil || c.httpClient == nil {
		return nil, errors.New("coinbase client not configured")
	}
	request := chargeRequest{
		Name:        fmt.Sprintf("Order %s", order.ID),
		Description: fmt.Sprintf("Payment for order %s", order.ID),
		LocalPrice: localPrice{
			Amount:   minorToMajor(order.Total),
			Currency: order.Currency,
		},
		PricingType: "fixed_price",
		Metadata:    map[string]string{"orderId": order.ID},
	}
	body, err := json.Marshal(request)
	if err != nil {
		return nil, ports.ProviderError("coinbase", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/charges", bytes.NewReader(body))
	if err != nil {
		return nil, ports.ProviderError("coinbase", err)
	}
	req.Header.Set("X-CC-Api-Key", c.apiKey)
	req.Header.Set("X-CC-Version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ports.ProviderError("coinbase", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, ports.ProviderError("coinbase", fmt.Errorf("unexpected status %s", resp.Status))
	}

	var charge chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&charge); err != nil {
		return nil, ports.ProviderError("coinbase", fmt.Errorf("decode charge response: %w", err))
	}
	if charge.Data.ID == "" {
		return nil, ports.ProviderError("coinbase", errors.New("charge response missing id"))
	}
	return &ports.CheckoutSession{
		ExternalID:  charge.Data.ID,
		CheckoutURL: charge.Data.HostedURL,
		ExpiresAt:   charge.Data.ExpiresAt,
	}, nil
}

// minorToMajor renders minor currency units as the decimal string the
// Coinbase and NOWPayments APIs expect.
func minorToMajor(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}

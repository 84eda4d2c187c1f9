// Package blockchain registers redemption codes with an external anchoring
// service. Registration is enrichment only; orders stay valid when it fails.
package blockchain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/ports"
)

var _ ports.BlockchainRegistrar = (*Client)(nil)

// Client posts code registrations to the anchoring API.
type Client struct {
	baseURL    string
	apiKey     string
	network    string
	httpClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithNetwork overrides the target network (default ethereum).
func WithNetwork(network string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(network); trimmed != "" {
			c.network = trimmed
		}
	}
}

// NewClient builds the registrar client for the given endpoint and key.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("blockchain registrar base URL is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("blockchain registrar api key is required")
	}
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:     apiKey,
		network:    "ethereum",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

type registerRequest struct {
	Code     string            `json:"code"`
	Metadata map[string]string `json:"metadata"`
	Network  string            `json:"network"`
}

type registerResponse struct {
	TransactionID string `json:"transactionId"`
}

// Register anchors the code. A non-2xx response yields Success=false with a
// nil error so callers treat it as the soft failure it is.
func (c *Client) Register(ctx context.Context, uniqueCode string, metadata map[string]string) (*ports.RegistrationResult, error) {
	body, err := json.Marshal(registerRequest{Code: uniqueCode, Metadata: metadata, Network: c.network})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/register-product", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &ports.RegistrationResult{Success: false}, nil
	}

	var result registerResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode registration response: %w", err)
	}
	return &ports.RegistrationResult{Success: true, TransactionID: result.TransactionID}, nil
}

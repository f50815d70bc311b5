package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Sentinel errors for the two failure classes the checkout flow distinguishes.
// Transport problems, timeouts and 5xx responses are ErrUnavailable (the
// attempt may be retried); 4xx responses are ErrRejected (the request itself
// was bad and retrying the same request will not help).
var (
	ErrUnavailable = errors.New("payment gateway unavailable")
	ErrRejected    = errors.New("payment gateway rejected request")
)

// Config holds the hosted-redirect provider connection details.
type Config struct {
	SecretKey string
	BaseURL   string        // defaults to the Paystack production API
	Timeout   time.Duration // bound on every outbound call
}

// Client is a thin wrapper over the provider's transaction API. It holds no
// state beyond its configuration, so a single instance is safe for concurrent
// use.
type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new gateway client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.paystack.co"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		secretKey:  cfg.SecretKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// InitResult is the provider's answer to a transaction initialization.
type InitResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// VerifyResult is the provider's view of a transaction. Status is reported
// verbatim; interpreting it is the caller's job.
type VerifyResult struct {
	Status          string `json:"status"` // "success", "failed", "abandoned"
	AmountMinor     int64  `json:"amount"`
	GatewayResponse string `json:"gateway_response"`
}

// Succeeded reports whether the provider considers the transaction paid.
func (r *VerifyResult) Succeeded() bool {
	return r.Status == "success"
}

// envelope is the provider's standard response wrapper.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Initialize creates a hosted-payment session for the given reference and
// returns the URL to redirect the customer to. The amount is in minor
// currency units. Callers must not re-run Initialize for a reference that
// already succeeded; that would open a second session for the same order.
func (c *Client) Initialize(ctx context.Context, email string, amountMinor int64, reference, callbackURL string) (*InitResult, error) {
	payload := map[string]interface{}{
		"email":        email,
		"amount":       amountMinor,
		"reference":    reference,
		"callback_url": callbackURL,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal initialize payload: %w", err)
	}

	data, err := c.do(ctx, http.MethodPost, "/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("initialize %s: %w", reference, err)
	}

	var result InitResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("initialize %s: malformed provider response: %w", reference, ErrUnavailable)
	}
	return &result, nil
}

// Verify fetches the provider's status for a reference. It is read-only
// against the provider and therefore safe to retry.
func (c *Client) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	data, err := c.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, fmt.Errorf("verify %s: %w", reference, err)
	}

	var result VerifyResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("verify %s: malformed provider response: %w", reference, ErrUnavailable)
	}
	return &result, nil
}

// do performs one provider call and classifies the outcome. It returns the
// raw data portion of the response envelope on success.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Covers DNS failures, refused connections, and the client timeout.
		return nil, fmt.Errorf("%s: %w", err.Error(), ErrUnavailable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", ErrUnavailable)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("provider returned %d: %w", resp.StatusCode, ErrUnavailable)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed provider envelope: %w", ErrUnavailable)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("provider returned %d (%s): %w", resp.StatusCode, env.Message, ErrRejected)
	}
	return env.Data, nil
}

// Package predictor talks to the remote UCS prediction service. One call to
// Predict is one POST; there are no retries.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-ucsform/pkg/form"
)

// DefaultEndpoint is the hosted prediction service.
const DefaultEndpoint = "https://ucs-backend-gullmaryam00.repl.co/predict"

const maxResponseBytes = 1 << 20

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets a client-level timeout. Zero leaves requests unbounded.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger attaches a zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithContract overrides the embedded service contract.
func WithContract(contract *Contract) Option {
	return func(c *Client) {
		if contract != nil {
			c.contract = contract
		}
	}
}

// Client implements form.Predictor over HTTP.
type Client struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
	contract   *Contract
	logger     *zap.Logger
}

var _ form.Predictor = (*Client)(nil)

// New builds a client for endpoint (absolute http or https URL).
func New(endpoint string, options ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		trimmed = DefaultEndpoint
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("predictor: parse endpoint: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("predictor: endpoint %q must be http or https", trimmed)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("predictor: endpoint %q has no host", trimmed)
	}

	c := &Client{
		endpoint: parsed.String(),
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	} else if c.timeout > 0 {
		clone := *c.httpClient
		clone.Timeout = c.timeout
		c.httpClient = &clone
	}
	if c.contract == nil {
		contract, err := DefaultContract()
		if err != nil {
			return nil, err
		}
		c.contract = contract
	}
	return c, nil
}

// Endpoint reports the URL requests are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Predict posts payload as JSON and returns the ucs value. Failures wrap
// form.ErrBackendUnreachable (transport, status, non-JSON body) or
// form.ErrInvalidResponse (JSON without a numeric ucs).
func (c *Client) Predict(ctx context.Context, payload form.Payload) (float64, error) {
	if err := c.contract.ValidateRecord(payload); err != nil {
		return 0, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("predictor: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("predictor: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if id := form.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", form.ErrBackendUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, fmt.Errorf("%w: read body: %v", form.ErrBackendUnreachable, err)
	}

	c.logger.Debug("prediction service responded",
		zap.String("request_id", form.RequestID(ctx)),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("%w: status %d: %s", form.ErrBackendUnreachable, resp.StatusCode, snippet(raw))
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return 0, fmt.Errorf("%w: decode body: %v", form.ErrBackendUnreachable, err)
	}
	if err := c.contract.ValidatePrediction(decoded); err != nil {
		return 0, fmt.Errorf("%w: %v", form.ErrInvalidResponse, err)
	}

	return extractUCS(decoded)
}

func extractUCS(decoded any) (float64, error) {
	obj, ok := decoded.(map[string]any)
	if !ok {
		return 0, fmt.Errorf("%w: body is not an object", form.ErrInvalidResponse)
	}
	ucs, ok := obj["ucs"].(float64)
	if !ok {
		return 0, fmt.Errorf("%w: ucs is not a number", form.ErrInvalidResponse)
	}
	return ucs, nil
}

func snippet(raw []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(raw))
	if len(s) > limit {
		return s[:limit] + "…"
	}
	return s
}

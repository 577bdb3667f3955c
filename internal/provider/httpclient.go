package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/domain"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/metrics"
)

// DefaultTimeout bounds every outbound provider call unless the config says
// otherwise.
const DefaultTimeout = 30 * time.Second

// Client is the HTTP transport shared by the provider adapters. It holds only
// immutable state, so one instance serves concurrent calls.
type Client struct {
	provider   domain.ProviderID
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a transport for one provider with a bounded timeout.
func NewClient(id domain.ProviderID, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		provider: id,
		baseURL:  baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// RequestOption mutates the outbound request before it is sent. Adapters use
// these for their authentication and idempotency headers.
type RequestOption func(*http.Request)

// WithBasicAuth sets HTTP Basic credentials (base64(user:pass)).
func WithBasicAuth(user, pass string) RequestOption {
	return func(r *http.Request) {
		r.SetBasicAuth(user, pass)
	}
}

// WithBearer sets an Authorization: Bearer header.
func WithBearer(token string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

// WithHeader sets an arbitrary header, skipping empty values.
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) {
		if value != "" {
			r.Header.Set(key, value)
		}
	}
}

// Do issues one JSON request against the provider and decodes the response.
// Non-2xx responses become *APIError carrying the provider's own error text;
// transport failures become *NetworkError. Pass a nil body for GET/DELETE.
func Do[Req any, Resp any](c *Client, ctx context.Context, operation, method, path string, reqBody *Req, opts ...RequestOption) (*Resp, error) {
	start := time.Now()
	resp, err := do[Req, Resp](c, ctx, operation, method, path, reqBody, opts...)
	metrics.ProviderCallDuration.WithLabelValues(string(c.provider), operation).Observe(time.Since(start).Seconds())
	metrics.ProviderCalls.WithLabelValues(string(c.provider), operation, outcome(err)).Inc()
	return resp, err
}

func do[Req any, Resp any](c *Client, ctx context.Context, operation, method, path string, reqBody *Req, opts ...RequestOption) (*Resp, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("error marshalling json: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	for _, opt := range opts {
		opt(httpReq)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Provider: c.provider, Operation: operation, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		var errResp errorResponse
		apiErr := &APIError{
			Provider:   c.provider,
			Operation:  operation,
			StatusCode: resp.StatusCode,
		}
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.text() == "" {
			apiErr.Message = string(body)
		} else {
			apiErr.Code = errResp.Code
			apiErr.Message = errResp.text()
		}
		return nil, apiErr
	}

	// Cancel-style endpoints answer 204 with no body.
	var providerResp Resp
	if err := json.NewDecoder(resp.Body).Decode(&providerResp); err != nil && err != io.EOF {
		return nil, &APIError{
			Provider:   c.provider,
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("malformed response body: %v", err),
		}
	}

	return &providerResp, nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if _, ok := IsNetworkError(err); ok {
		return "network_error"
	}
	return "provider_error"
}

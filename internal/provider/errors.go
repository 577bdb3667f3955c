package provider

import (
	"errors"
	"fmt"

	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/domain"
)

// APIError is a non-2xx or malformed response from a provider. Raw transport
// errors never escape an adapter unwrapped; they arrive here or as
// *NetworkError.
type APIError struct {
	Provider   domain.ProviderID
	Operation  string
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s failed [%s]: %s (status: %d)",
		e.Provider, e.Operation, e.Code, e.Message, e.StatusCode)
}

func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500
}

func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// NetworkError is a timeout or connection failure. The caller cannot assume
// the provider did not apply the side effect server-side; reconciliation goes
// through GetOrderStatus, not blind retry of a non-idempotent call.
type NetworkError struct {
	Provider  domain.ProviderID
	Operation string
	Err       error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s network failure: %v", e.Provider, e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) IsRetryable() bool {
	return true
}

func IsNetworkError(err error) (*NetworkError, bool) {
	var netErr *NetworkError
	ok := errors.As(err, &netErr)
	return netErr, ok
}

// SignatureError is a webhook signature mismatch. The event is rejected
// before any business field is parsed and is never applied to state.
type SignatureError struct {
	Provider domain.ProviderID
	Header   string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("%s webhook signature verification failed (header %s)", e.Provider, e.Header)
}

func IsSignatureError(err error) (*SignatureError, bool) {
	var sigErr *SignatureError
	ok := errors.As(err, &sigErr)
	return sigErr, ok
}

// errorResponse is the JSON error body most providers return on non-2xx.
type errorResponse struct {
	Err     string `json:"error"`
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func (r errorResponse) text() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Err
}

package application

import (
	"errors"
	"fmt"
	"net/http"
)

// ServiceError is the orchestration-level error surface. Handlers map it
// straight onto an HTTP response; everything below this layer speaks provider
// or domain errors.
type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeProviderNotConfigured = "PROVIDER_NOT_CONFIGURED"
	ErrCodeUnknownProvider       = "UNKNOWN_PROVIDER"
	ErrCodeInvalidInput          = "INVALID_INPUT"
	ErrCodeProviderAPI           = "PROVIDER_API"
	ErrCodeSignature             = "SIGNATURE_VERIFICATION"
	ErrCodeNetwork               = "NETWORK"
	ErrCodeInternal              = "INTERNAL_ERROR"
	ErrCodeIdempotencyMismatch   = "IDEMPOTENCY_MISMATCH"
)

func NewIdempotencyMismatchError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodeIdempotencyMismatch,
		Message:    "request id reused with different refund parameters",
		HTTPStatus: http.StatusConflict,
	}
}

func NewUnknownProviderError(provider string) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeUnknownProvider,
		Message:    fmt.Sprintf("unknown provider %q", provider),
		HTTPStatus: http.StatusNotFound,
	}
}

func NewProviderNotConfiguredError(provider string) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeProviderNotConfigured,
		Message:    fmt.Sprintf("provider %q has no credentials configured", provider),
		HTTPStatus: http.StatusBadRequest,
	}
}

func NewInvalidInputError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInvalidInput,
		Message:    "invalid input",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

func NewProviderAPIError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeProviderAPI,
		Message:    "provider rejected the request",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewSignatureError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeSignature,
		Message:    "webhook signature verification failed",
		HTTPStatus: http.StatusUnauthorized,
		Err:        err,
	}
}

func NewNetworkError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeNetwork,
		Message:    "provider unreachable",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewInternalError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInternal,
		Message:    "an internal error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}

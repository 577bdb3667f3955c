// Package provider defines the contract every BNPL provider adapter implements,
// plus the HTTP, signature and money helpers the adapters share.
package provider

import (
	"context"
	"net/http"

	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/domain"
)

// Provider is the single contract behind which the four BNPL providers hide
// their authentication schemes, payload shapes and money encodings.
//
// Every operation except IsConfigured and CheckEligibility is a synchronous
// remote call; none mutate in-process shared state, so one adapter instance
// serves concurrent orders without coordination.
type Provider interface {
	// ID returns the provider identifier used for routing and logging.
	ID() domain.ProviderID

	// IsConfigured reports whether the required credentials are present and
	// well-formed. Never performs network I/O.
	IsConfigured() bool

	// CheckEligibility is a pure computation against the provider's static
	// limits (min/max amount, installment counts). No network call.
	CheckEligibility(req domain.EligibilityRequest) domain.EligibilityResponse

	// CreateSession opens a checkout session. The returned Session always has
	// ExpiresAt set, using a provider-specific default when the provider
	// omits one. Failures surface as *APIError.
	CreateSession(ctx context.Context, req domain.SessionRequest) (*domain.Session, error)

	// AuthorizePayment confirms customer approval. A decline is a normal
	// Authorized=false result, never an error; only network or protocol
	// failures are errors.
	AuthorizePayment(ctx context.Context, sessionID, token string) (*domain.AuthorizationResult, error)

	// CapturePayment converts an authorization into a fund transfer. For
	// providers that capture implicitly at authorization this is a local
	// echo, not a second remote call.
	CapturePayment(ctx context.Context, authToken string, amountMinor int64) (*domain.CaptureResult, error)

	// ProcessRefund issues a refund. The request's RequestID is passed as the
	// provider's idempotency key where supported, so the same RequestID
	// yields the same RefundID without double-refunding.
	ProcessRefund(ctx context.Context, req domain.RefundRequest) (*domain.RefundResult, error)

	// CancelOrder cancels an order that has not completed capture.
	CancelOrder(ctx context.Context, orderID string) (*domain.CancelResult, error)

	// GetOrderStatus queries the provider for the order's current state,
	// mapped onto the canonical status enum.
	GetOrderStatus(ctx context.Context, orderID string) (*domain.OrderStatus, error)

	// HandleWebhook verifies the payload signature first, then parses the
	// provider-specific payload into a canonical WebhookEvent. A signature
	// mismatch is a *SignatureError raised before any business field is read.
	HandleWebhook(payload []byte, headers http.Header) (*domain.WebhookEvent, error)

	// VerifyWebhookSignature compares the provider's HMAC over the raw
	// payload bytes against signature in constant time.
	VerifyWebhookSignature(payload []byte, signature string) bool
}

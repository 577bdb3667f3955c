// Package domain defines the canonical types shared by every BNPL provider adapter.
package domain

import (
	"time"
)

// ProviderID identifies one of the supported BNPL providers.
type ProviderID string

const (
	ProviderKlarna   ProviderID = "klarna"
	ProviderAffirm   ProviderID = "affirm"
	ProviderAfterpay ProviderID = "afterpay"
	ProviderSezzle   ProviderID = "sezzle"
)

// AllProviders lists every provider id this layer knows about, in registry order.
func AllProviders() []ProviderID {
	return []ProviderID{ProviderKlarna, ProviderAffirm, ProviderAfterpay, ProviderSezzle}
}

// Customer is the buyer attached to a checkout session.
type Customer struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone"`
}

// Address holds a billing or shipping address.
type Address struct {
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" validate:"required"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required,len=2"`
}

// LineItem is one purchasable unit in a session request.
// TotalMinor must equal Quantity * UnitPriceMinor.
type LineItem struct {
	Name           string `json:"name" validate:"required"`
	Quantity       int    `json:"quantity" validate:"gt=0"`
	UnitPriceMinor int64  `json:"unit_price_minor" validate:"gt=0"`
	TotalMinor     int64  `json:"total_minor" validate:"gt=0"`
	ImageURL       string `json:"image_url"`
	ProductURL     string `json:"product_url"`
}

// SessionRequest asks a provider to open a BNPL checkout session.
// All amounts are in minor units (cents for USD).
type SessionRequest struct {
	OrderID         string     `json:"order_id" validate:"required"`
	AmountMinor     int64      `json:"amount_minor" validate:"gt=0"`
	Currency        string     `json:"currency" validate:"required,len=3"`
	Items           []LineItem `json:"items" validate:"required,min=1,dive"`
	Customer        Customer   `json:"customer"`
	BillingAddress  Address    `json:"billing_address"`
	ShippingAddress Address    `json:"shipping_address"`
	ReturnURL       string     `json:"return_url" validate:"required,url"`
	CancelURL       string     `json:"cancel_url" validate:"required,url"`
}

// Session is the provider-issued checkout handle. SessionID is opaque and
// provider-unique; ExpiresAt is always set, falling back to a provider default
// when the provider omits one.
type Session struct {
	Provider     ProviderID `json:"provider"`
	SessionID    string     `json:"session_id"`
	SessionToken string     `json:"session_token,omitempty"`
	RedirectURL  string     `json:"redirect_url"`
	ClientToken  string     `json:"client_token,omitempty"`
	ExpiresAt    time.Time  `json:"expires_at"`
}

// AuthorizationResult is the outcome of customer approval. A decline is a
// normal Authorized=false result, never an error; Authorized=false implies
// ErrorMessage is set.
type AuthorizationResult struct {
	Authorized         bool       `json:"authorized"`
	AuthorizationToken string     `json:"authorization_token,omitempty"`
	ProviderOrderID    string     `json:"provider_order_id,omitempty"`
	FraudSignal        string     `json:"fraud_signal,omitempty"`
	ErrorMessage       string     `json:"error_message,omitempty"`
	Provider           ProviderID `json:"provider"`
}

// CaptureResult is the outcome of a fund capture. Providers that capture at
// authorization time echo the authorization here without a second charge.
type CaptureResult struct {
	Captured     bool       `json:"captured"`
	CaptureID    string     `json:"capture_id,omitempty"`
	AmountMinor  int64      `json:"amount_minor"`
	ErrorMessage string     `json:"error_message,omitempty"`
	Provider     ProviderID `json:"provider"`
}

// RefundRequest describes one refund attempt. RequestID is the caller-supplied
// idempotency key: the same RequestID must yield the same RefundID on retry.
type RefundRequest struct {
	ProviderOrderID string `json:"provider_order_id" validate:"required"`
	AmountMinor     int64  `json:"amount_minor" validate:"gt=0"`
	Currency        string `json:"currency" validate:"required,len=3"`
	Reason          string `json:"reason"`
	RequestID       string `json:"request_id" validate:"required"`
}

// RefundResult is the outcome of a refund attempt.
type RefundResult struct {
	Refunded     bool       `json:"refunded"`
	RefundID     string     `json:"refund_id,omitempty"`
	AmountMinor  int64      `json:"amount_minor"`
	ErrorMessage string     `json:"error_message,omitempty"`
	Provider     ProviderID `json:"provider"`
}

// CancelResult reports an order cancellation attempt.
type CancelResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// OrderStatus is a point-in-time view of a provider order.
type OrderStatus struct {
	Status              Status `json:"status"`
	AmountMinor         int64  `json:"amount_minor"`
	Currency            string `json:"currency"`
	PaidAmountMinor     int64  `json:"paid_amount_minor"`
	RefundedAmountMinor int64  `json:"refunded_amount_minor"`
}

// EligibilityRequest is a pre-checkout suitability check. Pure computation
// against static provider limits; no network call is made.
type EligibilityRequest struct {
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
	Email       string `json:"email,omitempty"`
	Country     string `json:"country,omitempty"`
}

// EligibilityResponse reports whether an order qualifies for a provider's
// terms. Eligible=false always carries a human-readable Message.
type EligibilityResponse struct {
	Provider       ProviderID `json:"provider"`
	Eligible       bool       `json:"eligible"`
	MinAmountMinor int64      `json:"min_amount_minor"`
	MaxAmountMinor int64      `json:"max_amount_minor"`
	AvailableTerms []int      `json:"available_terms,omitempty"`
	Message        string     `json:"message,omitempty"`
}

// WebhookEvent is the canonical shape every inbound provider notification is
// normalized into. RawPayload preserves the exact bytes for audit.
type WebhookEvent struct {
	ID              string     `json:"id"`
	Provider        ProviderID `json:"provider"`
	EventType       string     `json:"event_type"`
	ProviderOrderID string     `json:"provider_order_id"`
	OrderID         string     `json:"order_id,omitempty"`
	Status          Status     `json:"status"`
	AmountMinor     int64      `json:"amount_minor,omitempty"`
	Currency        string     `json:"currency,omitempty"`
	OccurredAt      time.Time  `json:"occurred_at"`
	RawPayload      []byte     `json:"-"`
}

// ProviderConfig carries one provider's fully-resolved credentials and
// environment. Adapters read nothing from the process environment themselves.
// An empty APIKey means the provider is unconfigured; construction never fails.
type ProviderConfig struct {
	APIKey        string
	APISecret     string
	MerchantID    string
	Environment   string // "sandbox" or "production"
	BaseURL       string
	WebhookSecret string
}

// IsSandbox reports whether the config targets the provider's sandbox.
func (c ProviderConfig) IsSandbox() bool {
	return c.Environment != "production"
}

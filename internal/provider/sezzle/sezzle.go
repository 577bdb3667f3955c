// Package sezzle adapts the Sezzle-like BNPL provider to the generic contract.
//
// Wire specifics: every business call is preceded by a login call exchanging
// the key pair for a short-lived bearer token. Tokens are deliberately not
// cached on the adapter: they may expire between calls, and the adapter holds
// no mutable state. Money travels as integer cents in amount_in_cents fields;
// webhook signatures are hex HMAC in the X-Sezzle-Signature header.
package sezzle

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/domain"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/provider"
	"github.com/google/uuid"
)

const (
	sandboxBaseURL    = "https://sandbox.gateway.sezzle.com"
	productionBaseURL = "https://gateway.sezzle.com"

	// Checkout sessions expire quickly; the customer is expected to complete
	// the flow in one sitting.
	defaultSessionTTL = 30 * time.Minute

	signatureHeader = "X-Sezzle-Signature"

	minAmountMinor int64 = 100
	maxAmountMinor int64 = 250_000
)

var availableTerms = []int{4}

var statusTable = map[string]domain.Status{
	"pending":            domain.StatusPending,
	"approved":           domain.StatusAuthorized,
	"authorized":         domain.StatusAuthorized,
	"captured":           domain.StatusCaptured,
	"completed":          domain.StatusCompleted,
	"declined":           domain.StatusDeclined,
	"canceled":           domain.StatusCancelled,
	"released":           domain.StatusCancelled,
	"refunded":           domain.StatusRefunded,
	"partially_refunded": domain.StatusPartiallyRefunded,
}

type Sezzle struct {
	cfg    domain.ProviderConfig
	client *provider.Client
}

// New builds the adapter. APIKey is the public key, APISecret the private key.
// Construction never fails.
func New(cfg domain.ProviderConfig, timeout time.Duration) *Sezzle {
	if cfg.BaseURL == "" {
		if cfg.IsSandbox() {
			cfg.BaseURL = sandboxBaseURL
		} else {
			cfg.BaseURL = productionBaseURL
		}
	}
	return &Sezzle{
		cfg:    cfg,
		client: provider.NewClient(domain.ProviderSezzle, cfg.BaseURL, timeout),
	}
}

func (s *Sezzle) ID() domain.ProviderID { return domain.ProviderSezzle }

func (s *Sezzle) IsConfigured() bool {
	return s.cfg.APIKey != "" && s.cfg.APISecret != ""
}

func (s *Sezzle) CheckEligibility(req domain.EligibilityRequest) domain.EligibilityResponse {
	resp := domain.EligibilityResponse{
		Provider:       domain.ProviderSezzle,
		MinAmountMinor: minAmountMinor,
		MaxAmountMinor: maxAmountMinor,
		AvailableTerms: availableTerms,
	}
	switch {
	case req.AmountMinor < minAmountMinor:
		resp.Message = fmt.Sprintf("amount below the %d cent minimum", minAmountMinor)
	case req.AmountMinor > maxAmountMinor:
		resp.Message = fmt.Sprintf("amount above the %d cent maximum", maxAmountMinor)
	default:
		resp.Eligible = true
	}
	return resp
}

// Wire shapes.

type loginRequest struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

type loginResponse struct {
	Token          string `json:"token"`
	ExpirationDate string `json:"expiration_date"`
}

type cents struct {
	AmountInCents int64  `json:"amount_in_cents"`
	Currency      string `json:"currency"`
}

type sessionRequest struct {
	CompleteURL link         `json:"complete_url"`
	CancelURL   link         `json:"cancel_url"`
	Order       sessionOrder `json:"order"`
}

type link struct {
	Href string `json:"href"`
}

type sessionOrder struct {
	Intent      string        `json:"intent"`
	ReferenceID string        `json:"reference_id"`
	OrderAmount cents         `json:"order_amount"`
	Items       []sessionItem `json:"items"`
	Customer    customer      `json:"customer"`
}

type sessionItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    cents  `json:"price"`
}

type customer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
}

type sessionResponse struct {
	UUID        string `json:"uuid"`
	CheckoutURL string `json:"checkout_url"`
	ExpiresAt   string `json:"expires_at"`
}

type orderResponse struct {
	UUID           string        `json:"uuid"`
	ReferenceID    string        `json:"reference_id"`
	Status         string        `json:"status"`
	Authorization  authorization `json:"authorization"`
	OrderAmount    cents         `json:"order_amount"`
	CapturedAmount cents         `json:"captured_amount"`
	RefundedAmount cents         `json:"refunded_amount"`
}

type authorization struct {
	Authorized          bool   `json:"authorized"`
	ApprovedAmountCents int64  `json:"approved_amount_in_cents"`
	DeclineReason       string `json:"decline_reason"`
}

type captureAmount struct {
	AmountInCents int64 `json:"amount_in_cents"`
}

type captureRequest struct {
	CaptureAmount  captureAmount `json:"capture_amount"`
	PartialCapture bool          `json:"partial_capture"`
}

type captureResponse struct {
	UUID string `json:"uuid"`
}

type refundRequest struct {
	AmountInCents int64  `json:"amount_in_cents"`
	Currency      string `json:"currency"`
	ReferenceID   string `json:"reference_id"`
	Reason        string `json:"reason,omitempty"`
}

type refundResponse struct {
	UUID          string `json:"uuid"`
	AmountInCents int64  `json:"amount_in_cents"`
}

type webhookPayload struct {
	EventType string      `json:"event_type"`
	CreatedAt string      `json:"created_at"`
	Data      webhookData `json:"data"`
}

type webhookData struct {
	OrderUUID     string `json:"order_uuid"`
	ReferenceID   string `json:"reference_id"`
	Status        string `json:"status"`
	AmountInCents int64  `json:"amount_in_cents"`
	Currency      string `json:"currency"`
}

// login performs the pre-flight authentication call. It is repeated for every
// business call on purpose: tokens are short-lived and the adapter keeps no
// mutable session state.
func (s *Sezzle) login(ctx context.Context) (string, error) {
	body := loginRequest{PublicKey: s.cfg.APIKey, PrivateKey: s.cfg.APISecret}

	resp, err := provider.Do[loginRequest, loginResponse](
		s.client, ctx, "login", http.MethodPost, "/v2/authentication", &body)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (s *Sezzle) CreateSession(ctx context.Context, req domain.SessionRequest) (*domain.Session, error) {
	token, err := s.login(ctx)
	if err != nil {
		return nil, err
	}

	body := sessionRequest{
		CompleteURL: link{Href: req.ReturnURL},
		CancelURL:   link{Href: req.CancelURL},
		Order: sessionOrder{
			Intent:      "AUTH",
			ReferenceID: req.OrderID,
			OrderAmount: cents{AmountInCents: req.AmountMinor, Currency: req.Currency},
			Customer: customer{
				Email:     req.Customer.Email,
				FirstName: req.Customer.FirstName,
				LastName:  req.Customer.LastName,
				Phone:     req.Customer.Phone,
			},
		},
	}
	for _, item := range req.Items {
		body.Order.Items = append(body.Order.Items, sessionItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    cents{AmountInCents: item.UnitPriceMinor, Currency: req.Currency},
		})
	}

	resp, err := provider.Do[sessionRequest, sessionResponse](
		s.client, ctx, "create_session", http.MethodPost, "/v2/session", &body, provider.WithBearer(token))
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(defaultSessionTTL)
	if resp.ExpiresAt != "" {
		if parsed, parseErr := time.Parse(time.RFC3339, resp.ExpiresAt); parseErr == nil {
			expiresAt = parsed
		}
	}

	return &domain.Session{
		Provider:    domain.ProviderSezzle,
		SessionID:   resp.UUID,
		RedirectURL: resp.CheckoutURL,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *Sezzle) AuthorizePayment(ctx context.Context, sessionID, token string) (*domain.AuthorizationResult, error) {
	bearer, err := s.login(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := provider.Do[struct{}, orderResponse](
		s.client, ctx, "authorize", http.MethodGet, "/v2/order/"+sessionID, nil, provider.WithBearer(bearer))
	if err != nil {
		if apiErr, ok := provider.IsAPIError(err); ok && apiErr.StatusCode < 500 {
			return &domain.AuthorizationResult{
				Provider:     domain.ProviderSezzle,
				ErrorMessage: apiErr.Message,
			}, nil
		}
		return nil, err
	}

	if !resp.Authorization.Authorized {
		msg := resp.Authorization.DeclineReason
		if msg == "" {
			msg = "customer has not completed checkout"
		}
		return &domain.AuthorizationResult{
			Provider:     domain.ProviderSezzle,
			ErrorMessage: msg,
		}, nil
	}

	return &domain.AuthorizationResult{
		Provider:           domain.ProviderSezzle,
		Authorized:         true,
		AuthorizationToken: resp.UUID,
		ProviderOrderID:    resp.UUID,
	}, nil
}

func (s *Sezzle) CapturePayment(ctx context.Context, authToken string, amountMinor int64) (*domain.CaptureResult, error) {
	bearer, err := s.login(ctx)
	if err != nil {
		return nil, err
	}

	body := captureRequest{
		CaptureAmount: captureAmount{AmountInCents: amountMinor},
	}

	resp, err := provider.Do[captureRequest, captureResponse](
		s.client, ctx, "capture", http.MethodPost, "/v2/order/"+authToken+"/capture", &body, provider.WithBearer(bearer))
	if err != nil {
		if apiErr, ok := provider.IsAPIError(err); ok && apiErr.StatusCode < 500 {
			return &domain.CaptureResult{
				Provider:     domain.ProviderSezzle,
				AmountMinor:  amountMinor,
				ErrorMessage: apiErr.Message,
			}, nil
		}
		return nil, err
	}

	return &domain.CaptureResult{
		Provider:    domain.ProviderSezzle,
		Captured:    true,
		CaptureID:   resp.UUID,
		AmountMinor: amountMinor,
	}, nil
}

func (s *Sezzle) ProcessRefund(ctx context.Context, req domain.RefundRequest) (*domain.RefundResult, error) {
	bearer, err := s.login(ctx)
	if err != nil {
		return nil, err
	}

	body := refundRequest{
		AmountInCents: req.AmountMinor,
		Currency:      req.Currency,
		ReferenceID:   req.RequestID,
		Reason:        req.Reason,
	}

	resp, err := provider.Do[refundRequest, refundResponse](
		s.client, ctx, "refund", http.MethodPost, "/v2/order/"+req.ProviderOrderID+"/refund", &body, provider.WithBearer(bearer))
	if err != nil {
		if apiErr, ok := provider.IsAPIError(err); ok && apiErr.StatusCode < 500 {
			return &domain.RefundResult{
				Provider:     domain.ProviderSezzle,
				AmountMinor:  req.AmountMinor,
				ErrorMessage: apiErr.Message,
			}, nil
		}
		return nil, err
	}

	return &domain.RefundResult{
		Provider:    domain.ProviderSezzle,
		Refunded:    true,
		RefundID:    resp.UUID,
		AmountMinor: resp.AmountInCents,
	}, nil
}

func (s *Sezzle) CancelOrder(ctx context.Context, orderID string) (*domain.CancelResult, error) {
	bearer, err := s.login(ctx)
	if err != nil {
		return nil, err
	}

	_, err = provider.Do[struct{}, captureResponse](
		s.client, ctx, "cancel", http.MethodPost, "/v2/order/"+orderID+"/release", nil, provider.WithBearer(bearer))
	if err != nil {
		if apiErr, ok := provider.IsAPIError(err); ok && apiErr.StatusCode < 500 {
			return &domain.CancelResult{Message: apiErr.Message}, nil
		}
		return nil, err
	}
	return &domain.CancelResult{Success: true, Message: "authorization released"}, nil
}

func (s *Sezzle) GetOrderStatus(ctx context.Context, orderID string) (*domain.OrderStatus, error) {
	bearer, err := s.login(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := provider.Do[struct{}, orderResponse](
		s.client, ctx, "order_status", http.MethodGet, "/v2/order/"+orderID, nil, provider.WithBearer(bearer))
	if err != nil {
		return nil, err
	}

	return &domain.OrderStatus{
		Status:              domain.MapStatus(statusTable, resp.Status),
		AmountMinor:         resp.OrderAmount.AmountInCents,
		Currency:            resp.OrderAmount.Currency,
		PaidAmountMinor:     resp.CapturedAmount.AmountInCents,
		RefundedAmountMinor: resp.RefundedAmount.AmountInCents,
	}, nil
}

func (s *Sezzle) SignatureHeader() string { return signatureHeader }

func (s *Sezzle) VerifyWebhookSignature(payload []byte, signature string) bool {
	return provider.VerifyHex(s.cfg.WebhookSecret, payload, signature)
}

func (s *Sezzle) HandleWebhook(payload []byte, headers http.Header) (*domain.WebhookEvent, error) {
	signature := headers.Get(signatureHeader)
	if signature != "" && !s.VerifyWebhookSignature(payload, signature) {
		return nil, &provider.SignatureError{Provider: domain.ProviderSezzle, Header: signatureHeader}
	}

	var body webhookPayload
	if err := provider.UnmarshalWebhook(domain.ProviderSezzle, payload, &body); err != nil {
		return nil, err
	}

	occurredAt := time.Now()
	if body.CreatedAt != "" {
		if parsed, parseErr := time.Parse(time.RFC3339, body.CreatedAt); parseErr == nil {
			occurredAt = parsed
		}
	}

	return &domain.WebhookEvent{
		ID:              uuid.NewString(),
		Provider:        domain.ProviderSezzle,
		EventType:       body.EventType,
		ProviderOrderID: body.Data.OrderUUID,
		OrderID:         body.Data.ReferenceID,
		Status:          domain.MapStatus(statusTable, body.Data.Status),
		AmountMinor:     body.Data.AmountInCents,
		Currency:        body.Data.Currency,
		OccurredAt:      occurredAt,
		RawPayload:      payload,
	}, nil
}

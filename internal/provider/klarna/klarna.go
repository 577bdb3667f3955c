// Package klarna adapts the Klarna-like BNPL provider to the generic contract.
//
// Wire specifics: HTTP Basic auth over base64(apiKey:apiSecret), all money as
// integer minor units, idempotency via the Klarna-Idempotency-Key header,
// webhook signatures as hex HMAC-SHA256 in the Klarna-Signature header.
package klarna

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
	sandboxBaseURL    = "https://api.playground.klarna.com"
	productionBaseURL = "https://api.klarna.com"

	// Sessions live 48 hours unless the provider says otherwise.
	defaultSessionTTL = 48 * time.Hour

	signatureHeader = "Klarna-Signature"

	minAmountMinor int64 = 100
	maxAmountMinor int64 = 1_000_000
)

var availableTerms = []int{4}

// statusTable maps Klarna's native order statuses onto the canonical enum.
// Anything absent degrades to its raw uppercased form.
var statusTable = map[string]domain.Status{
	"pending":             domain.StatusPending,
	"authorized":          domain.StatusAuthorized,
	"part_captured":       domain.StatusCaptured,
	"captured":            domain.StatusCaptured,
	"closed":              domain.StatusCompleted,
	"cancelled":           domain.StatusCancelled,
	"expired":             domain.StatusCancelled,
	"rejected":            domain.StatusDeclined,
	"refunded":            domain.StatusRefunded,
	"part_refunded":       domain.StatusPartiallyRefunded,
	"checkout_incomplete": domain.StatusPending,
	"checkout_complete":   domain.StatusAuthorized,
}

type Klarna struct {
	cfg    domain.ProviderConfig
	client *provider.Client
}

// New builds the adapter. Construction never fails; a missing API key just
// makes IsConfigured return false.
func New(cfg domain.ProviderConfig, timeout time.Duration) *Klarna {
	if cfg.BaseURL == "" {
		if cfg.IsSandbox() {
			cfg.BaseURL = sandboxBaseURL
		} else {
			cfg.BaseURL = productionBaseURL
		}
	}
	return &Klarna{
		cfg:    cfg,
		client: provider.NewClient(domain.ProviderKlarna, cfg.BaseURL, timeout),
	}
}

func (k *Klarna) ID() domain.ProviderID { return domain.ProviderKlarna }

func (k *Klarna) IsConfigured() bool {
	return k.cfg.APIKey != "" && k.cfg.APISecret != ""
}

func (k *Klarna) CheckEligibility(req domain.EligibilityRequest) domain.EligibilityResponse {
	resp := domain.EligibilityResponse{
		Provider:       domain.ProviderKlarna,
		MinAmountMinor: minAmountMinor,
		MaxAmountMinor: maxAmountMinor,
		AvailableTerms: availableTerms,
	}
	switch {
	case req.AmountMinor < minAmountMinor:
		resp.Message = fmt.Sprintf("amount below the %d minor unit minimum", minAmountMinor)
	case req.AmountMinor > maxAmountMinor:
		resp.Message = fmt.Sprintf("amount above the %d minor unit maximum", maxAmountMinor)
	default:
		resp.Eligible = true
	}
	return resp
}

// Wire shapes.

type sessionRequest struct {
	PurchaseCountry  string       `json:"purchase_country"`
	PurchaseCurrency string       `json:"purchase_currency"`
	OrderAmount      int64        `json:"order_amount"`
	MerchantRef      string       `json:"merchant_reference1"`
	OrderLines       []orderLine  `json:"order_lines"`
	MerchantURLs     merchantURLs `json:"merchant_urls"`
}

type orderLine struct {
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	TotalAmount int64  `json:"total_amount"`
	ImageURL    string `json:"image_url,omitempty"`
	ProductURL  string `json:"product_url,omitempty"`
}

type merchantURLs struct {
	Confirmation string `json:"confirmation"`
	Cancellation string `json:"cancellation"`
}

type sessionResponse struct {
	SessionID   string `json:"session_id"`
	ClientToken string `json:"client_token"`
	RedirectURL string `json:"redirect_url"`
	ExpiresAt   string `json:"expires_at"`
}

type authorizeRequest struct {
	SessionID          string `json:"session_id"`
	AuthorizationToken string `json:"authorization_token,omitempty"`
}

type authorizeResponse struct {
	OrderID     string `json:"order_id"`
	FraudStatus string `json:"fraud_status"`
	Reason      string `json:"reason"`
}

type captureRequest struct {
	CapturedAmount int64 `json:"captured_amount"`
}

type captureResponse struct {
	CaptureID      string `json:"capture_id"`
	CapturedAmount int64  `json:"captured_amount"`
}

type refundRequest struct {
	RefundedAmount int64  `json:"refunded_amount"`
	Description    string `json:"description,omitempty"`
}

type refundResponse struct {
	RefundID       string `json:"refund_id"`
	RefundedAmount int64  `json:"refunded_amount"`
}

type orderResponse struct {
	Status           string `json:"status"`
	OrderAmount      int64  `json:"order_amount"`
	CapturedAmount   int64  `json:"captured_amount"`
	RefundedAmount   int64  `json:"refunded_amount"`
	PurchaseCurrency string `json:"purchase_currency"`
}

type webhookPayload struct {
	EventType  string    `json:"event_type"`
	OrderID    string    `json:"order_id"`
	Reference  string    `json:"merchant_reference1"`
	Status     string    `json:"status"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (k *Klarna) auth() provider.RequestOption {
	return provider.WithBasicAuth(k.cfg.APIKey, k.cfg.APISecret)
}

func (k *Klarna) CreateSession(ctx context.Context, req domain.SessionRequest) (*domain.Session, error) {
	body := sessionRequest{
		PurchaseCountry:  req.BillingAddress.Country,
		PurchaseCurrency: req.Currency,
		OrderAmount:      req.AmountMinor,
		MerchantRef:      req.OrderID,
		MerchantURLs: merchantURLs{
			Confirmation: req.ReturnURL,
			Cancellation: req.CancelURL,
		},
	}
	for _, item := range req.Items {
		body.OrderLines = append(body.OrderLines, orderLine{
			Name:        item.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPriceMinor,
			TotalAmount: item.TotalMinor,
			ImageURL:    item.ImageURL,
			ProductURL:  item.ProductURL,
		})
	}

	resp, err := provider.Do[sessionRequest, sessionResponse](
		k.client, ctx, "create_session", http.MethodPost, "/payments/v1/sessions", &body, k.auth())
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
		Provider:    domain.ProviderKlarna,
		SessionID:   resp.SessionID,
		ClientToken: resp.ClientToken,
		RedirectURL: resp.RedirectURL,
		ExpiresAt:   expiresAt,
	}, nil
}

func (k *Klarna) AuthorizePayment(ctx context.Context, sessionID, token string) (*domain.AuthorizationResult, error) {
	body := authorizeRequest{SessionID: sessionID, AuthorizationToken: token}

	resp, err := provider.Do[authorizeRequest, authorizeResponse](
		k.client, ctx, "authorize", http.MethodPost,
		"/payments/v1/authorizations/"+sessionID+"/order", &body, k.auth())
	if err != nil {
		if apiErr, ok := provider.IsAPIError(err); ok && apiErr.StatusCode < 500 {
			return &domain.AuthorizationResult{
				Provider:     domain.ProviderKlarna,
				ErrorMessage: apiErr.Message,
			}, nil
		}
		return nil, err
	}

	if resp.FraudStatus == "REJECTED" {
		msg := resp.Reason
		if msg == "" {
			msg = "payment rejected by risk assessment"
		}
		return &domain.AuthorizationResult{
			Provider:     domain.ProviderKlarna,
			FraudSignal:  resp.FraudStatus,
			ErrorMessage: msg,
		}, nil
	}

	return &domain.AuthorizationResult{
		Provider:           domain.ProviderKlarna,
		Authorized:         true,
		AuthorizationToken: token,
		ProviderOrderID:    resp.OrderID,
		FraudSignal:        resp.FraudStatus,
	}, nil
}

func (k *Klarna) CapturePayment(ctx context.Context, authToken string, amountMinor int64) (*domain.CaptureResult, error) {
	body := captureRequest{CapturedAmount: amountMinor}

	resp, err := provider.Do[captureRequest, captureResponse](
		k.client, ctx, "capture", http.MethodPost,
		"/ordermanagement/v1/orders/"+authToken+"/captures", &body, k.auth())
	if err != nil {
		if apiErr, ok := provider.IsAPIError(err); ok && apiErr.StatusCode < 500 {
			return &domain.CaptureResult{
				Provider:     domain.ProviderKlarna,
				AmountMinor:  amountMinor,
				ErrorMessage: apiErr.Message,
			}, nil
		}
		return nil, err
	}

	return &domain.CaptureResult{
		Provider:    domain.ProviderKlarna,
		Captured:    true,
		CaptureID:   resp.CaptureID,
		AmountMinor: resp.CapturedAmount,
	}, nil
}

func (k *Klarna) ProcessRefund(ctx context.Context, req domain.RefundRequest) (*domain.RefundResult, error) {
	body := refundRequest{RefundedAmount: req.AmountMinor, Description: req.Reason}

	resp, err := provider.Do[refundRequest, refundResponse](
		k.client, ctx, "refund", http.MethodPost,
		"/ordermanagement/v1/orders/"+req.ProviderOrderID+"/refunds", &body,
		k.auth(), provider.WithHeader("Klarna-Idempotency-Key", req.RequestID))
	if err != nil {
		if apiErr, ok := provider.IsAPIError(err); ok && apiErr.StatusCode < 500 {
			return &domain.RefundResult{
				Provider:     domain.ProviderKlarna,
				AmountMinor:  req.AmountMinor,
				ErrorMessage: apiErr.Message,
			}, nil
		}
		return nil, err
	}

	return &domain.RefundResult{
		Provider:    domain.ProviderKlarna,
		Refunded:    true,
		RefundID:    resp.RefundID,
		AmountMinor: resp.RefundedAmount,
	}, nil
}

func (k *Klarna) CancelOrder(ctx context.Context, orderID string) (*domain.CancelResult, error) {
	_, err := provider.Do[struct{}, struct{}](
		k.client, ctx, "cancel", http.MethodPost,
		"/ordermanagement/v1/orders/"+orderID+"/cancel", nil, k.auth())
	if err != nil {
		if apiErr, ok := provider.IsAPIError(err); ok && apiErr.StatusCode < 500 {
			return &domain.CancelResult{Message: apiErr.Message}, nil
		}
		return nil, err
	}
	return &domain.CancelResult{Success: true, Message: "order cancelled"}, nil
}

func (k *Klarna) GetOrderStatus(ctx context.Context, orderID string) (*domain.OrderStatus, error) {
	resp, err := provider.Do[struct{}, orderResponse](
		k.client, ctx, "order_status", http.MethodGet,
		"/ordermanagement/v1/orders/"+orderID, nil, k.auth())
	if err != nil {
		return nil, err
	}

	return &domain.OrderStatus{
		Status:              domain.MapStatus(statusTable, resp.Status),
		AmountMinor:         resp.OrderAmount,
		Currency:            resp.PurchaseCurrency,
		PaidAmountMinor:     resp.CapturedAmount,
		RefundedAmountMinor: resp.RefundedAmount,
	}, nil
}

func (k *Klarna) SignatureHeader() string { return signatureHeader }

func (k *Klarna) VerifyWebhookSignature(payload []byte, signature string) bool {
	return provider.VerifyHex(k.cfg.WebhookSecret, payload, signature)
}

func (k *Klarna) HandleWebhook(payload []byte, headers http.Header) (*domain.WebhookEvent, error) {
	signature := headers.Get(signatureHeader)
	if signature != "" && !k.VerifyWebhookSignature(payload, signature) {
		return nil, &provider.SignatureError{Provider: domain.ProviderKlarna, Header: signatureHeader}
	}

	var body webhookPayload
	if err := provider.UnmarshalWebhook(domain.ProviderKlarna, payload, &body); err != nil {
		return nil, err
	}

	occurredAt := body.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	return &domain.WebhookEvent{
		ID:              uuid.NewString(),
		Provider:        domain.ProviderKlarna,
		EventType:       body.EventType,
		ProviderOrderID: body.OrderID,
		OrderID:         body.Reference,
		Status:          domain.MapStatus(statusTable, body.Status),
		AmountMinor:     body.Amount,
		Currency:        body.Currency,
		OccurredAt:      occurredAt,
		RawPayload:      payload,
	}, nil
}

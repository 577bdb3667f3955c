// Package affirm adapts the Affirm-like BNPL provider to the generic contract.
//
// Wire specifics: HTTP Basic auth over base64(publicKey:privateKey), all
// money as integer cents, idempotency via the Idempotency-Key header, webhook
// signatures as "sha256="-prefixed hex HMAC in the X-Affirm-Signature header.
package affirm

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
	sandboxBaseURL    = "https://sandbox.affirm.com/api/v2"
	productionBaseURL = "https://api.affirm.com/api/v2"

	defaultSessionTTL = 24 * time.Hour

	signatureHeader = "X-Affirm-Signature"

	minAmountMinor int64 = 5_000
	maxAmountMinor int64 = 3_000_000
)

var availableTerms = []int{3, 6, 12}

var statusTable = map[string]domain.Status{
	"opened":             domain.StatusPending,
	"authorized":         domain.StatusAuthorized,
	"captured":           domain.StatusCaptured,
	"settled":            domain.StatusCompleted,
	"voided":             domain.StatusCancelled,
	"auth_expired":       domain.StatusCancelled,
	"declined":           domain.StatusDeclined,
	"refunded":           domain.StatusRefunded,
	"partially_refunded": domain.StatusPartiallyRefunded,
}

type Affirm struct {
	cfg    domain.ProviderConfig
	client *provider.Client
}

// New builds the adapter. APIKey is the public key, APISecret the private key.
// Construction never fails.
func New(cfg domain.ProviderConfig, timeout time.Duration) *Affirm {
	if cfg.BaseURL == "" {
		if cfg.IsSandbox() {
			cfg.BaseURL = sandboxBaseURL
		} else {
			cfg.BaseURL = productionBaseURL
		}
	}
	return &Affirm{
		cfg:    cfg,
		client: provider.NewClient(domain.ProviderAffirm, cfg.BaseURL, timeout),
	}
}

func (a *Affirm) ID() domain.ProviderID { return domain.ProviderAffirm }

func (a *Affirm) IsConfigured() bool {
	return a.cfg.APIKey != "" && a.cfg.APISecret != ""
}

func (a *Affirm) CheckEligibility(req domain.EligibilityRequest) domain.EligibilityResponse {
	resp := domain.EligibilityResponse{
		Provider:       domain.ProviderAffirm,
		MinAmountMinor: minAmountMinor,
		MaxAmountMinor: maxAmountMinor,
		AvailableTerms: availableTerms,
	}
	switch {
	case req.AmountMinor < minAmountMinor:
		resp.Message = fmt.Sprintf("orders under %s do not qualify for installments", provider.MinorToDecimal(minAmountMinor))
	case req.AmountMinor > maxAmountMinor:
		resp.Message = fmt.Sprintf("orders over %s require a different financing product", provider.MinorToDecimal(maxAmountMinor))
	default:
		resp.Eligible = true
	}
	return resp
}

// Wire shapes.

type checkoutRequest struct {
	OrderID  string           `json:"order_id"`
	Total    int64            `json:"total"`
	Currency string           `json:"currency"`
	Items    []checkoutItem   `json:"items"`
	Billing  checkoutContact  `json:"billing"`
	Shipping checkoutContact  `json:"shipping"`
	Merchant checkoutMerchant `json:"merchant"`
}

type checkoutItem struct {
	DisplayName  string `json:"display_name"`
	Qty          int    `json:"qty"`
	UnitPrice    int64  `json:"unit_price"`
	ItemURL      string `json:"item_url,omitempty"`
	ItemImageURL string `json:"item_image_url,omitempty"`
}

type checkoutContact struct {
	Name    checkoutName    `json:"name"`
	Address checkoutAddress `json:"address"`
	Email   string          `json:"email,omitempty"`
}

type checkoutName struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

type checkoutAddress struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Zipcode string `json:"zipcode"`
	Country string `json:"country"`
}

type checkoutMerchant struct {
	UserConfirmationURL string `json:"user_confirmation_url"`
	UserCancelURL       string `json:"user_cancel_url"`
}

type checkoutResponse struct {
	CheckoutID  string `json:"checkout_id"`
	RedirectURL string `json:"redirect_url"`
	ExpiresAt   string `json:"expires_at"`
}

type chargeRequest struct {
	CheckoutToken string `json:"checkout_token"`
}

type chargeResponse struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	OrderID  string `json:"order_id"`
	Message  string `json:"message"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type captureRequest struct {
	Amount int64 `json:"amount,omitempty"`
}

type captureResponse struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Status string `json:"status"`
}

type refundRequest struct {
	Amount int64 `json:"amount"`
}

type refundResponse struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Status string `json:"status"`
}

type chargeReadResponse struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	AmountCaptured int64  `json:"amount_captured"`
	AmountRefunded int64  `json:"amount_refunded"`
}

type webhookPayload struct {
	Event    string `json:"event"`
	ChargeID string `json:"charge_id"`
	OrderID  string `json:"order_id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Created  string `json:"created"`
}

func (a *Affirm) auth() provider.RequestOption {
	return provider.WithBasicAuth(a.cfg.APIKey, a.cfg.APISecret)
}

func (a *Affirm) CreateSession(ctx context.Context, req domain.SessionRequest) (*domain.Session, error) {
	body := checkoutRequest{
		OrderID:  req.OrderID,
		Total:    req.AmountMinor,
		Currency: req.Currency,
		Billing: checkoutContact{
			Name:    checkoutName{First: req.Customer.FirstName, Last: req.Customer.LastName},
			Address: toAddress(req.BillingAddress),
			Email:   req.Customer.Email,
		},
		Shipping: checkoutContact{
			Name:    checkoutName{First: req.Customer.FirstName, Last: req.Customer.LastName},
			Address: toAddress(req.ShippingAddress),
		},
		Merchant: checkoutMerchant{
			UserConfirmationURL: req.ReturnURL,
			UserCancelURL:       req.CancelURL,
		},
	}
	for _, item := range req.Items {
		body.Items = append(body.Items, checkoutItem{
			DisplayName:  item.Name,
			Qty:          item.Quantity,
			UnitPrice:    item.UnitPriceMinor,
			ItemURL:      item.ProductURL,
			ItemImageURL: item.ImageURL,
		})
	}

	resp, err := provider.Do[checkoutRequest, checkoutResponse](
		a.client, ctx, "create_session", http.MethodPost, "/checkout", &body, a.auth())
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
		Provider:    domain.ProviderAffirm,
		SessionID:   resp.CheckoutID,
		RedirectURL: resp.RedirectURL,
		ExpiresAt:   expiresAt,
	}, nil
}

// AuthorizePayment exchanges the checkout token the customer came back with
// for a charge. The session id is only used for logging context; the token is
// what the provider authorizes.
func (a *Affirm) AuthorizePayment(ctx context.Context, sessionID, token string) (*domain.AuthorizationResult, error) {
	if token == "" {
		token = sessionID
	}
	body := chargeRequest{CheckoutToken: token}

	resp, err := provider.Do[chargeRequest, chargeResponse](
		a.client, ctx, "authorize", http.MethodPost, "/charges", &body, a.auth())
	if err != nil {
		if apiErr, ok := provider.IsAPIError(err); ok && apiErr.StatusCode < 500 {
			return &domain.AuthorizationResult{
				Provider:     domain.ProviderAffirm,
				ErrorMessage: apiErr.Message,
			}, nil
		}
		return nil, err
	}

	if resp.Status == "declined" {
		msg := resp.Message
		if msg == "" {
			msg = "charge declined"
		}
		return &domain.AuthorizationResult{
			Provider:     domain.ProviderAffirm,
			ErrorMessage: msg,
		}, nil
	}

	return &domain.AuthorizationResult{
		Provider:           domain.ProviderAffirm,
		Authorized:         true,
		AuthorizationToken: resp.ID,
		ProviderOrderID:    resp.ID,
	}, nil
}

func (a *Affirm) CapturePayment(ctx context.Context, authToken string, amountMinor int64) (*domain.CaptureResult, error) {
	body := captureRequest{Amount: amountMinor}

	resp, err := provider.Do[captureRequest, captureResponse](
		a.client, ctx, "capture", http.MethodPost, "/charges/"+authToken+"/capture", &body, a.auth())
	if err != nil {
		if apiErr, ok := provider.IsAPIError(err); ok && apiErr.StatusCode < 500 {
			return &domain.CaptureResult{
				Provider:     domain.ProviderAffirm,
				AmountMinor:  amountMinor,
				ErrorMessage: apiErr.Message,
			}, nil
		}
		return nil, err
	}

	return &domain.CaptureResult{
		Provider:    domain.ProviderAffirm,
		Captured:    true,
		CaptureID:   resp.ID,
		AmountMinor: resp.Amount,
	}, nil
}

func (a *Affirm) ProcessRefund(ctx context.Context, req domain.RefundRequest) (*domain.RefundResult, error) {
	body := refundRequest{Amount: req.AmountMinor}

	resp, err := provider.Do[refundRequest, refundResponse](
		a.client, ctx, "refund", http.MethodPost, "/charges/"+req.ProviderOrderID+"/refund", &body,
		a.auth(), provider.WithHeader("Idempotency-Key", req.RequestID))
	if err != nil {
		if apiErr, ok := provider.IsAPIError(err); ok && apiErr.StatusCode < 500 {
			return &domain.RefundResult{
				Provider:     domain.ProviderAffirm,
				AmountMinor:  req.AmountMinor,
				ErrorMessage: apiErr.Message,
			}, nil
		}
		return nil, err
	}

	return &domain.RefundResult{
		Provider:    domain.ProviderAffirm,
		Refunded:    true,
		RefundID:    resp.ID,
		AmountMinor: resp.Amount,
	}, nil
}

func (a *Affirm) CancelOrder(ctx context.Context, orderID string) (*domain.CancelResult, error) {
	_, err := provider.Do[struct{}, chargeResponse](
		a.client, ctx, "cancel", http.MethodPost, "/charges/"+orderID+"/void", nil, a.auth())
	if err != nil {
		if apiErr, ok := provider.IsAPIError(err); ok && apiErr.StatusCode < 500 {
			return &domain.CancelResult{Message: apiErr.Message}, nil
		}
		return nil, err
	}
	return &domain.CancelResult{Success: true, Message: "charge voided"}, nil
}

func (a *Affirm) GetOrderStatus(ctx context.Context, orderID string) (*domain.OrderStatus, error) {
	resp, err := provider.Do[struct{}, chargeReadResponse](
		a.client, ctx, "order_status", http.MethodGet, "/charges/"+orderID, nil, a.auth())
	if err != nil {
		return nil, err
	}

	return &domain.OrderStatus{
		Status:              domain.MapStatus(statusTable, resp.Status),
		AmountMinor:         resp.Amount,
		Currency:            resp.Currency,
		PaidAmountMinor:     resp.AmountCaptured,
		RefundedAmountMinor: resp.AmountRefunded,
	}, nil
}

func (a *Affirm) SignatureHeader() string { return signatureHeader }

func (a *Affirm) VerifyWebhookSignature(payload []byte, signature string) bool {
	return provider.VerifyPrefixedHex(a.cfg.WebhookSecret, payload, signature)
}

func (a *Affirm) HandleWebhook(payload []byte, headers http.Header) (*domain.WebhookEvent, error) {
	signature := headers.Get(signatureHeader)
	if signature != "" && !a.VerifyWebhookSignature(payload, signature) {
		return nil, &provider.SignatureError{Provider: domain.ProviderAffirm, Header: signatureHeader}
	}

	var body webhookPayload
	if err := provider.UnmarshalWebhook(domain.ProviderAffirm, payload, &body); err != nil {
		return nil, err
	}

	occurredAt := time.Now()
	if body.Created != "" {
		if parsed, parseErr := time.Parse(time.RFC3339, body.Created); parseErr == nil {
			occurredAt = parsed
		}
	}

	return &domain.WebhookEvent{
		ID:              uuid.NewString(),
		Provider:        domain.ProviderAffirm,
		EventType:       body.Event,
		ProviderOrderID: body.ChargeID,
		OrderID:         body.OrderID,
		Status:          domain.MapStatus(statusTable, body.Status),
		AmountMinor:     body.Amount,
		Currency:        body.Currency,
		OccurredAt:      occurredAt,
		RawPayload:      payload,
	}, nil
}

func toAddress(a domain.Address) checkoutAddress {
	return checkoutAddress{
		Line1:   a.Line1,
		Line2:   a.Line2,
		City:    a.City,
		State:   a.Region,
		Zipcode: a.PostalCode,
		Country: a.Country,
	}
}

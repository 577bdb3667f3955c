// Package afterpay adapts the Afterpay-like BNPL provider to the generic contract.
//
// Wire specifics: bearer merchant token auth, money as two-decimal strings
// wrapped in {amount, currency} objects, funds captured at authorization time
// (the immediate payment flow), webhook signatures as lowercase hex HMAC in
// the Afterpay-Signature header.
package afterpay

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
	sandboxBaseURL    = "https://global-api-sandbox.afterpay.com"
	productionBaseURL = "https://global-api.afterpay.com"

	// Checkout tokens are short-lived.
	defaultSessionTTL = 3 * time.Hour

	signatureHeader = "Afterpay-Signature"

	minAmountMinor int64 = 100
	maxAmountMinor int64 = 200_000
)

var availableTerms = []int{4}

var statusTable = map[string]domain.Status{
	"pending":            domain.StatusPending,
	"auth_approved":      domain.StatusAuthorized,
	"approved":           domain.StatusCaptured,
	"captured":           domain.StatusCaptured,
	"declined":           domain.StatusDeclined,
	"expired":            domain.StatusCancelled,
	"voided":             domain.StatusCancelled,
	"refunded":           domain.StatusRefunded,
	"partially_refunded": domain.StatusPartiallyRefunded,
}

type Afterpay struct {
	cfg    domain.ProviderConfig
	client *provider.Client
}

// New builds the adapter. APIKey is the merchant bearer token. Construction
// never fails.
func New(cfg domain.ProviderConfig, timeout time.Duration) *Afterpay {
	if cfg.BaseURL == "" {
		if cfg.IsSandbox() {
			cfg.BaseURL = sandboxBaseURL
		} else {
			cfg.BaseURL = productionBaseURL
		}
	}
	return &Afterpay{
		cfg:    cfg,
		client: provider.NewClient(domain.ProviderAfterpay, cfg.BaseURL, timeout),
	}
}

func (p *Afterpay) ID() domain.ProviderID { return domain.ProviderAfterpay }

func (p *Afterpay) IsConfigured() bool {
	return p.cfg.APIKey != ""
}

func (p *Afterpay) CheckEligibility(req domain.EligibilityRequest) domain.EligibilityResponse {
	resp := domain.EligibilityResponse{
		Provider:       domain.ProviderAfterpay,
		MinAmountMinor: minAmountMinor,
		MaxAmountMinor: maxAmountMinor,
		AvailableTerms: availableTerms,
	}
	switch {
	case req.AmountMinor < minAmountMinor:
		resp.Message = fmt.Sprintf("order total %s is below the %s minimum",
			provider.MinorToDecimal(req.AmountMinor), provider.MinorToDecimal(minAmountMinor))
	case req.AmountMinor > maxAmountMinor:
		resp.Message = fmt.Sprintf("order total %s exceeds the %s limit",
			provider.MinorToDecimal(req.AmountMinor), provider.MinorToDecimal(maxAmountMinor))
	default:
		resp.Eligible = true
	}
	return resp
}

// Wire shapes. Money travels as {"amount":"50.00","currency":"USD"}.

type money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func toMoney(minor int64, currency string) money {
	return money{Amount: provider.MinorToDecimal(minor), Currency: currency}
}

func (m money) minor() int64 {
	minor, err := provider.DecimalToMinor(m.Amount)
	if err != nil {
		return 0
	}
	return minor
}

type checkoutRequest struct {
	Amount      money          `json:"amount"`
	MerchantRef string         `json:"merchantReference"`
	Consumer    consumer       `json:"consumer"`
	Billing     wireAddress    `json:"billing"`
	Shipping    wireAddress    `json:"shipping"`
	Items       []checkoutItem `json:"items"`
	Merchant    merchantURLs   `json:"merchant"`
}

type consumer struct {
	Email      string `json:"email"`
	GivenNames string `json:"givenNames"`
	Surname    string `json:"surname"`
	Phone      string `json:"phoneNumber,omitempty"`
}

type wireAddress struct {
	Line1    string `json:"line1"`
	Line2    string `json:"line2,omitempty"`
	Area1    string `json:"area1"`
	Region   string `json:"region,omitempty"`
	Postcode string `json:"postcode"`
	Country  string `json:"countryCode"`
}

type checkoutItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    money  `json:"price"`
	ImageURL string `json:"imageUrl,omitempty"`
	PageURL  string `json:"pageUrl,omitempty"`
}

type merchantURLs struct {
	RedirectConfirmURL string `json:"redirectConfirmUrl"`
	RedirectCancelURL  string `json:"redirectCancelUrl"`
}

type checkoutResponse struct {
	Token       string `json:"token"`
	Expires     string `json:"expires"`
	RedirectURL string `json:"redirectCheckoutUrl"`
}

type captureRequest struct {
	Token string `json:"token"`
}

type paymentResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"statusReason"`
	Amount  money  `json:"originalAmount"`
}

type refundRequest struct {
	Amount    money  `json:"amount"`
	RequestID string `json:"requestId"`
}

type refundResponse struct {
	RefundID string `json:"refundId"`
	Amount   money  `json:"amount"`
}

type paymentReadResponse struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	OriginalAmount money  `json:"originalAmount"`
	CapturedAmount money  `json:"capturedAmount"`
	RefundedAmount money  `json:"refundedAmount"`
}

type webhookPayload struct {
	EventType   string `json:"eventType"`
	PaymentID   string `json:"paymentId"`
	MerchantRef string `json:"merchantReference"`
	Status      string `json:"status"`
	Amount      money  `json:"amount"`
	OccurredAt  string `json:"occurredAt"`
}

func (p *Afterpay) auth() provider.RequestOption {
	return provider.WithBearer(p.cfg.APIKey)
}

func (p *Afterpay) CreateSession(ctx context.Context, req domain.SessionRequest) (*domain.Session, error) {
	body := checkoutRequest{
		Amount:      toMoney(req.AmountMinor, req.Currency),
		MerchantRef: req.OrderID,
		Consumer: consumer{
			Email:      req.Customer.Email,
			GivenNames: req.Customer.FirstName,
			Surname:    req.Customer.LastName,
			Phone:      req.Customer.Phone,
		},
		Billing:  toWireAddress(req.BillingAddress),
		Shipping: toWireAddress(req.ShippingAddress),
		Merchant: merchantURLs{
			RedirectConfirmURL: req.ReturnURL,
			RedirectCancelURL:  req.CancelURL,
		},
	}
	for _, item := range req.Items {
		body.Items = append(body.Items, checkoutItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    toMoney(item.UnitPriceMinor, req.Currency),
			ImageURL: item.ImageURL,
			PageURL:  item.ProductURL,
		})
	}

	resp, err := provider.Do[checkoutRequest, checkoutResponse](
		p.client, ctx, "create_session", http.MethodPost, "/v2/checkouts", &body, p.auth())
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(defaultSessionTTL)
	if resp.Expires != "" {
		if parsed, parseErr := time.Parse(time.RFC3339, resp.Expires); parseErr == nil {
			expiresAt = parsed
		}
	}

	return &domain.Session{
		Provider:     domain.ProviderAfterpay,
		SessionID:    resp.Token,
		SessionToken: resp.Token,
		RedirectURL:  resp.RedirectURL,
		ExpiresAt:    expiresAt,
	}, nil
}

// AuthorizePayment runs the immediate payment flow: approval and capture
// happen in the same provider call.
func (p *Afterpay) AuthorizePayment(ctx context.Context, sessionID, token string) (*domain.AuthorizationResult, error) {
	if token == "" {
		token = sessionID
	}
	body := captureRequest{Token: token}

	resp, err := provider.Do[captureRequest, paymentResponse](
		p.client, ctx, "authorize", http.MethodPost, "/v2/payments/capture", &body, p.auth())
	if err != nil {
		if apiErr, ok := provider.IsAPIError(err); ok && apiErr.StatusCode < 500 {
			return &domain.AuthorizationResult{
				Provider:     domain.ProviderAfterpay,
				ErrorMessage: apiErr.Message,
			}, nil
		}
		return nil, err
	}

	if resp.Status == "DECLINED" {
		msg := resp.Message
		if msg == "" {
			msg = "payment declined"
		}
		return &domain.AuthorizationResult{
			Provider:     domain.ProviderAfterpay,
			ErrorMessage: msg,
		}, nil
	}

	return &domain.AuthorizationResult{
		Provider:           domain.ProviderAfterpay,
		Authorized:         true,
		AuthorizationToken: resp.ID,
		ProviderOrderID:    resp.ID,
	}, nil
}

// CapturePayment is a local echo: funds were captured when the payment was
// authorized, so confirming again must not issue a second charge.
func (p *Afterpay) CapturePayment(ctx context.Context, authToken string, amountMinor int64) (*domain.CaptureResult, error) {
	return &domain.CaptureResult{
		Provider:    domain.ProviderAfterpay,
		Captured:    true,
		CaptureID:   authToken,
		AmountMinor: amountMinor,
	}, nil
}

func (p *Afterpay) ProcessRefund(ctx context.Context, req domain.RefundRequest) (*domain.RefundResult, error) {
	body := refundRequest{
		Amount:    toMoney(req.AmountMinor, req.Currency),
		RequestID: req.RequestID,
	}

	resp, err := provider.Do[refundRequest, refundResponse](
		p.client, ctx, "refund", http.MethodPost,
		"/v2/payments/"+req.ProviderOrderID+"/refund", &body, p.auth())
	if err != nil {
		if apiErr, ok := provider.IsAPIError(err); ok && apiErr.StatusCode < 500 {
			return &domain.RefundResult{
				Provider:     domain.ProviderAfterpay,
				AmountMinor:  req.AmountMinor,
				ErrorMessage: apiErr.Message,
			}, nil
		}
		return nil, err
	}

	return &domain.RefundResult{
		Provider:    domain.ProviderAfterpay,
		Refunded:    true,
		RefundID:    resp.RefundID,
		AmountMinor: resp.Amount.minor(),
	}, nil
}

func (p *Afterpay) CancelOrder(ctx context.Context, orderID string) (*domain.CancelResult, error) {
	_, err := provider.Do[struct{}, paymentResponse](
		p.client, ctx, "cancel", http.MethodPost, "/v2/payments/"+orderID+"/void", nil, p.auth())
	if err != nil {
		if apiErr, ok := provider.IsAPIError(err); ok && apiErr.StatusCode < 500 {
			return &domain.CancelResult{Message: apiErr.Message}, nil
		}
		return nil, err
	}
	return &domain.CancelResult{Success: true, Message: "payment voided"}, nil
}

func (p *Afterpay) GetOrderStatus(ctx context.Context, orderID string) (*domain.OrderStatus, error) {
	resp, err := provider.Do[struct{}, paymentReadResponse](
		p.client, ctx, "order_status", http.MethodGet, "/v2/payments/"+orderID, nil, p.auth())
	if err != nil {
		return nil, err
	}

	return &domain.OrderStatus{
		Status:              domain.MapStatus(statusTable, resp.Status),
		AmountMinor:         resp.OriginalAmount.minor(),
		Currency:            resp.OriginalAmount.Currency,
		PaidAmountMinor:     resp.CapturedAmount.minor(),
		RefundedAmountMinor: resp.RefundedAmount.minor(),
	}, nil
}

func (p *Afterpay) SignatureHeader() string { return signatureHeader }

func (p *Afterpay) VerifyWebhookSignature(payload []byte, signature string) bool {
	return provider.VerifyHex(p.cfg.WebhookSecret, payload, signature)
}

func (p *Afterpay) HandleWebhook(payload []byte, headers http.Header) (*domain.WebhookEvent, error) {
	signature := headers.Get(signatureHeader)
	if signature != "" && !p.VerifyWebhookSignature(payload, signature) {
		return nil, &provider.SignatureError{Provider: domain.ProviderAfterpay, Header: signatureHeader}
	}

	var body webhookPayload
	if err := provider.UnmarshalWebhook(domain.ProviderAfterpay, payload, &body); err != nil {
		return nil, err
	}

	occurredAt := time.Now()
	if body.OccurredAt != "" {
		if parsed, parseErr := time.Parse(time.RFC3339, body.OccurredAt); parseErr == nil {
			occurredAt = parsed
		}
	}

	return &domain.WebhookEvent{
		ID:              uuid.NewString(),
		Provider:        domain.ProviderAfterpay,
		EventType:       body.EventType,
		ProviderOrderID: body.PaymentID,
		OrderID:         body.MerchantRef,
		Status:          domain.MapStatus(statusTable, body.Status),
		AmountMinor:     body.Amount.minor(),
		Currency:        body.Amount.Currency,
		OccurredAt:      occurredAt,
		RawPayload:      payload,
	}, nil
}

func toWireAddress(a domain.Address) wireAddress {
	return wireAddress{
		Line1:    a.Line1,
		Line2:    a.Line2,
		Area1:    a.City,
		Region:   a.Region,
		Postcode: a.PostalCode,
		Country:  a.Country,
	}
}

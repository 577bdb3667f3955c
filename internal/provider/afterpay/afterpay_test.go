package afterpay_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/domain"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/provider"
	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/provider/afterpay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, handler http.Handler) *afterpay.Afterpay {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return afterpay.New(domain.ProviderConfig{
		APIKey:        "merchant-token",
		Environment:   "sandbox",
		BaseURL:       server.URL,
		WebhookSecret: "whsec_afterpay",
	}, 5*time.Second)
}

func TestAfterpay_IsConfigured_NeedsOnlyBearerToken(t *testing.T) {
	assert.True(t, afterpay.New(domain.ProviderConfig{APIKey: "tok"}, 0).IsConfigured())
	assert.False(t, afterpay.New(domain.ProviderConfig{}, 0).IsConfigured())
}

func TestAfterpay_CheckEligibility_Boundaries(t *testing.T) {
	adapter := afterpay.New(domain.ProviderConfig{APIKey: "tok"}, 0)

	assert.True(t, adapter.CheckEligibility(domain.EligibilityRequest{AmountMinor: 100}).Eligible)
	assert.True(t, adapter.CheckEligibility(domain.EligibilityRequest{AmountMinor: 200_000}).Eligible)
	assert.False(t, adapter.CheckEligibility(domain.EligibilityRequest{AmountMinor: 99}).Eligible)
	assert.False(t, adapter.CheckEligibility(domain.EligibilityRequest{AmountMinor: 200_001}).Eligible)
}

func TestAfterpay_CreateSession_SendsDecimalStrings(t *testing.T) {
	var gotBody map[string]any
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/checkouts", r.URL.Path)
		require.Equal(t, "Bearer merchant-token", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"token":               "chk-tok-1",
			"redirectCheckoutUrl": "https://portal.sandbox.afterpay.com/chk-tok-1",
		})
	}))

	session, err := adapter.CreateSession(context.Background(), domain.SessionRequest{
		OrderID:     "order-1",
		AmountMinor: 5000,
		Currency:    "USD",
		Items: []domain.LineItem{
			{Name: "Lamp", Quantity: 2, UnitPriceMinor: 2500, TotalMinor: 5000},
		},
		Customer:  domain.Customer{Email: "jane@example.com", FirstName: "Jane", LastName: "Doe"},
		ReturnURL: "https://shop.example.com/return",
		CancelURL: "https://shop.example.com/cancel",
	})

	require.NoError(t, err)
	assert.Equal(t, "chk-tok-1", session.SessionID)
	assert.Equal(t, "chk-tok-1", session.SessionToken)

	amount := gotBody["amount"].(map[string]any)
	assert.Equal(t, "50.00", amount["amount"])
	assert.Equal(t, "USD", amount["currency"])
	items := gotBody["items"].([]any)
	price := items[0].(map[string]any)["price"].(map[string]any)
	assert.Equal(t, "25.00", price["amount"])
}

func TestAfterpay_AuthorizePayment_ImmediateFlow(t *testing.T) {
	t.Run("approved payment captures funds in the same call", func(t *testing.T) {
		adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v2/payments/capture", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]any{
				"id":     "pay-1",
				"status": "APPROVED",
			})
		}))

		result, err := adapter.AuthorizePayment(context.Background(), "chk-tok-1", "")

		require.NoError(t, err)
		assert.True(t, result.Authorized)
		assert.Equal(t, "pay-1", result.ProviderOrderID)
	})

	t.Run("declined payment is a decline result", func(t *testing.T) {
		adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"id":           "pay-2",
				"status":       "DECLINED",
				"statusReason": "payment method declined",
			})
		}))

		result, err := adapter.AuthorizePayment(context.Background(), "chk-tok-1", "")

		require.NoError(t, err)
		assert.False(t, result.Authorized)
		assert.Equal(t, "payment method declined", result.ErrorMessage)
	})
}

func TestAfterpay_CapturePayment_IsLocalEcho(t *testing.T) {
	// Capture after the immediate flow must never reach the provider again.
	var hits int
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))

	result, err := adapter.CapturePayment(context.Background(), "pay-1", 5000)

	require.NoError(t, err)
	assert.True(t, result.Captured)
	assert.Equal(t, "pay-1", result.CaptureID)
	assert.Equal(t, int64(5000), result.AmountMinor)
	assert.Zero(t, hits)
}

func TestAfterpay_ProcessRefund_SendsRequestIDInBody(t *testing.T) {
	var gotBody map[string]any
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/payments/pay-1/refund", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"refundId": "ref-1",
			"amount":   map[string]any{"amount": "25.00", "currency": "USD"},
		})
	}))

	result, err := adapter.ProcessRefund(context.Background(), domain.RefundRequest{
		ProviderOrderID: "pay-1",
		AmountMinor:     2500,
		Currency:        "USD",
		RequestID:       "refund-req-9",
	})

	require.NoError(t, err)
	assert.True(t, result.Refunded)
	assert.Equal(t, int64(2500), result.AmountMinor)
	assert.Equal(t, "refund-req-9", gotBody["requestId"])

	amount := gotBody["amount"].(map[string]any)
	assert.Equal(t, "25.00", amount["amount"])
}

func TestAfterpay_GetOrderStatus_DecodesDecimalMoney(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/payments/pay-1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"id":             "pay-1",
			"status":         "PARTIALLY_REFUNDED",
			"originalAmount": map[string]any{"amount": "50.00", "currency": "USD"},
			"capturedAmount": map[string]any{"amount": "50.00", "currency": "USD"},
			"refundedAmount": map[string]any{"amount": "10.50", "currency": "USD"},
		})
	}))

	status, err := adapter.GetOrderStatus(context.Background(), "pay-1")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPartiallyRefunded, status.Status)
	assert.Equal(t, int64(5000), status.AmountMinor)
	assert.Equal(t, int64(1050), status.RefundedAmountMinor)
}

func TestAfterpay_HandleWebhook(t *testing.T) {
	adapter := afterpay.New(domain.ProviderConfig{
		APIKey: "tok", WebhookSecret: "whsec_afterpay",
	}, 0)

	payload := []byte(`{"eventType":"payment.refunded","paymentId":"pay-1","merchantReference":"order-1","status":"REFUNDED","amount":{"amount":"50.00","currency":"USD"}}`)

	t.Run("valid signature decodes decimal money into minor units", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("Afterpay-Signature", provider.SignHex("whsec_afterpay", payload))

		event, err := adapter.HandleWebhook(payload, headers)

		require.NoError(t, err)
		assert.Equal(t, domain.StatusRefunded, event.Status)
		assert.Equal(t, int64(5000), event.AmountMinor)
		assert.Equal(t, "order-1", event.OrderID)
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("Afterpay-Signature", provider.SignHex("wrong-secret", payload))

		_, err := adapter.HandleWebhook(payload, headers)

		require.Error(t, err)
		_, ok := provider.IsSignatureError(err)
		assert.True(t, ok)
	})
}

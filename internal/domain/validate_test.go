package domain_test

import (
	"testing"

	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSessionRequest() domain.SessionRequest {
	return domain.SessionRequest{
		OrderID:     "order-456",
		AmountMinor: 5000,
		Currency:    "USD",
		Items: []domain.LineItem{
			{Name: "Sneakers", Quantity: 2, UnitPriceMinor: 1500, TotalMinor: 3000},
			{Name: "Socks", Quantity: 1, UnitPriceMinor: 2000, TotalMinor: 2000},
		},
		Customer: domain.Customer{
			Email:     "jane@example.com",
			FirstName: "Jane",
			LastName:  "Doe",
		},
		BillingAddress: domain.Address{
			Line1:      "1 Main St",
			City:       "Springfield",
			PostalCode: "12345",
			Country:    "US",
		},
		ShippingAddress: domain.Address{
			Line1:      "1 Main St",
			City:       "Springfield",
			PostalCode: "12345",
			Country:    "US",
		},
		ReturnURL: "https://shop.example.com/return",
		CancelURL: "https://shop.example.com/cancel",
	}
}

func TestValidateSessionRequest(t *testing.T) {
	t.Run("accepts a well-formed request", func(t *testing.T) {
		assert.NoError(t, domain.ValidateSessionRequest(validSessionRequest()))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		req := validSessionRequest()
		req.Items[0].Quantity = 0

		err := domain.ValidateSessionRequest(req)

		require.Error(t, err)
		domErr, ok := domain.IsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, domain.ErrCodeValidation, domErr.Code)
	})

	t.Run("rejects line item total not matching quantity times unit price", func(t *testing.T) {
		req := validSessionRequest()
		req.Items[0].TotalMinor = 2999

		err := domain.ValidateSessionRequest(req)

		require.Error(t, err)
		domErr, ok := domain.IsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, domain.ErrCodeAmountMismatch, domErr.Code)
	})

	t.Run("rejects session amount not matching item sum", func(t *testing.T) {
		req := validSessionRequest()
		req.AmountMinor = 4999

		err := domain.ValidateSessionRequest(req)

		require.Error(t, err)
		domErr, ok := domain.IsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, domain.ErrCodeAmountMismatch, domErr.Code)
	})

	t.Run("rejects missing address fields", func(t *testing.T) {
		req := validSessionRequest()
		req.BillingAddress.Line1 = ""

		assert.Error(t, domain.ValidateSessionRequest(req))
	})

	t.Run("rejects malformed currency", func(t *testing.T) {
		req := validSessionRequest()
		req.Currency = "DOLLARS"

		assert.Error(t, domain.ValidateSessionRequest(req))
	})
}

func TestValidateRefundRequest(t *testing.T) {
	t.Run("accepts a well-formed refund", func(t *testing.T) {
		err := domain.ValidateRefundRequest(domain.RefundRequest{
			ProviderOrderID: "po-1",
			AmountMinor:     5000,
			Currency:        "USD",
			RequestID:       "r1",
		})
		assert.NoError(t, err)
	})

	t.Run("rejects a refund without a request id", func(t *testing.T) {
		err := domain.ValidateRefundRequest(domain.RefundRequest{
			ProviderOrderID: "po-1",
			AmountMinor:     5000,
			Currency:        "USD",
		})
		assert.Error(t, err)
	})
}

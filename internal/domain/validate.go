package domain

import (
	"github.com/go-playground/validator"
)

var validate = validator.New()

// ValidateSessionRequest rejects a malformed session request before any
// network call is made. Structural rules live in the validate tags; the
// arithmetic invariants the tag language cannot express are checked by hand.
func ValidateSessionRequest(req SessionRequest) error {
	if err := validate.Struct(req); err != nil {
		return NewValidationError(err)
	}

	var itemSum int64
	for _, item := range req.Items {
		if item.TotalMinor != int64(item.Quantity)*item.UnitPriceMinor {
			return NewAmountMismatchError(int64(item.Quantity)*item.UnitPriceMinor, item.TotalMinor)
		}
		itemSum += item.TotalMinor
	}

	if itemSum != req.AmountMinor {
		return NewAmountMismatchError(req.AmountMinor, itemSum)
	}

	return nil
}

// ValidateRefundRequest rejects a malformed refund request before any network
// call is made.
func ValidateRefundRequest(req RefundRequest) error {
	if err := validate.Struct(req); err != nil {
		return NewValidationError(err)
	}
	return nil
}

package provider

import (
	"fmt"
	"strconv"
	"strings"
)

// MinorToDecimal renders minor units as a fixed two-decimal string, the shape
// providers that refuse integer money want on the wire ("4999" -> "49.99").
func MinorToDecimal(amountMinor int64) string {
	sign := ""
	if amountMinor < 0 {
		sign = "-"
		amountMinor = -amountMinor
	}
	return fmt.Sprintf("%s%d.%02d", sign, amountMinor/100, amountMinor%100)
}

// DecimalToMinor parses a provider decimal string back into minor units.
// At most two fraction digits are accepted; "49.9" means 49.90.
func DecimalToMinor(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	var cents int64
	switch len(frac) {
	case 0:
	case 1:
		if frac[0] < '0' || frac[0] > '9' {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		cents = int64(frac[0]-'0') * 10
	case 2:
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q: %w", s, err)
		}
	default:
		return 0, fmt.Errorf("invalid amount %q: more than two fraction digits", s)
	}

	total := units*100 + cents
	if negative {
		total = -total
	}
	return total, nil
}

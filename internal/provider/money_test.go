package provider_test

import (
	"testing"

	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinorToDecimal(t *testing.T) {
	cases := []struct {
		minor int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{50, "0.50"},
		{4999, "49.99"},
		{5000, "50.00"},
		{123456789, "1234567.89"},
		{-4999, "-49.99"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, provider.MinorToDecimal(tc.minor), "minor=%d", tc.minor)
	}
}

func TestDecimalToMinor(t *testing.T) {
	t.Run("parses valid amounts", func(t *testing.T) {
		cases := []struct {
			in   string
			want int64
		}{
			{"0.00", 0},
			{"0.05", 5},
			{"49.99", 4999},
			{"50", 5000},
			{"49.9", 4990},
			{" 50.00 ", 5000},
			{"-49.99", -4999},
			{".99", 99},
		}

		for _, tc := range cases {
			got, err := provider.DecimalToMinor(tc.in)
			require.NoError(t, err, "in=%q", tc.in)
			assert.Equal(t, tc.want, got, "in=%q", tc.in)
		}
	})

	t.Run("rejects malformed amounts", func(t *testing.T) {
		for _, in := range []string{"", "abc", "49.999", "49.x", "4 9"} {
			_, err := provider.DecimalToMinor(in)
			assert.Error(t, err, "in=%q", in)
		}
	})

	t.Run("round-trips with MinorToDecimal", func(t *testing.T) {
		for _, minor := range []int64{0, 1, 99, 100, 4999, 1000000} {
			got, err := provider.DecimalToMinor(provider.MinorToDecimal(minor))
			require.NoError(t, err)
			assert.Equal(t, minor, got)
		}
	})
}

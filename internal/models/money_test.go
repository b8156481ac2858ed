package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1500", "1500"},
		{"₹1,500.50", "1500.5"},
		{"Rs 250", "250"},
		{"INR 10", "10"},
		{"", "0"},
		{"-20", "-20"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	_, err := ParseAmount("twelve")
	assert.Error(t, err)
}

func TestParseNonNegative(t *testing.T) {
	_, err := ParseNonNegative("amount", "-1")
	assert.ErrorContains(t, err, "amount cannot be negative")

	d, err := ParseNonNegative("qty", "3.5")
	require.NoError(t, err)
	assert.Equal(t, "3.5", d.String())
}

func TestFormatRupees(t *testing.T) {
	tests := []struct {
		in   decimal.Decimal
		want string
	}{
		{decimal.NewFromInt(0), "₹0.00"},
		{decimal.NewFromInt(999), "₹999.00"},
		{decimal.NewFromFloat(1500.5), "₹1,500.50"},
		{decimal.NewFromInt(1234567), "₹1,234,567.00"},
		{decimal.NewFromFloat(-12.345), "-₹12.35"},
		{decimal.NewFromFloat(0.999), "₹1.00"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRupees(tt.in))
		})
	}
}

package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Stored documents and backups carry quantities and prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// CurrencySymbol is prefixed to formatted amounts. The business trades in rupees only.
const CurrencySymbol = "₹"

// ParseAmount parses a user-entered monetary amount. Currency markers, spaces
// and thousands separators are ignored, so "₹1,500.50" and "Rs 1500.5" both work.
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	for _, marker := range []string{CurrencySymbol, "INR", "Rs.", "Rs", ",", " ", "'"} {
		clean = strings.ReplaceAll(clean, marker, "")
	}
	if clean == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// ParseNonNegative is ParseAmount that also rejects values below zero.
func ParseNonNegative(field, s string) (decimal.Decimal, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s cannot be negative: %s", field, s)
	}
	return d, nil
}

// FormatRupees renders an amount with two decimals and the currency symbol.
func FormatRupees(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	whole := d.Truncate(0)
	frac := d.Sub(whole).Mul(decimal.NewFromInt(100)).Round(0)
	if frac.Equal(decimal.NewFromInt(100)) {
		whole = whole.Add(decimal.NewFromInt(1))
		frac = decimal.Zero
	}
	return fmt.Sprintf("%s%s%s.%02d", sign, CurrencySymbol, groupThousands(whole.String()), frac.IntPart())
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

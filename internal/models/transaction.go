// Package models provides the data structures shared by the store, the
// migrator and the ledger computations.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidTransaction is wrapped by every error returned from Transaction.Validate.
var ErrInvalidTransaction = errors.New("invalid transaction")

// Transaction is a single buy or sell event. Records are never edited in
// place by the store; an update replaces the record with the same ID.
type Transaction struct {
	ID            TxID            `json:"id"`
	Date          string          `json:"date"`
	Direction     Direction       `json:"direction"`
	Name          string          `json:"name"`
	Product       string          `json:"product"`
	Size          string          `json:"size"`
	Qty           decimal.Decimal `json:"qty"`
	Amount        decimal.Decimal `json:"amount"`
	Status        Status          `json:"status,omitempty"`
	PaidAmount    decimal.Decimal `json:"paidAmount"`
	PromiseDate   string          `json:"promiseDate,omitempty"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	UPIID         string          `json:"upiId,omitempty"`
}

// UnmarshalJSON also understands records written before the direction field
// was renamed, where it was stored under "type". Quantities and amounts left
// blank by older entry forms ("") decode as zero.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type plain Transaction
	aux := struct {
		*plain
		LegacyType Direction    `json:"type"`
		Qty        blankDecimal `json:"qty"`
		Amount     blankDecimal `json:"amount"`
		PaidAmount blankDecimal `json:"paidAmount"`
	}{plain: (*plain)(t)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.Qty = aux.Qty.Decimal
	t.Amount = aux.Amount.Decimal
	t.PaidAmount = aux.PaidAmount.Decimal
	if t.Direction == "" {
		t.Direction = Direction(strings.ToLower(string(aux.LegacyType)))
	}
	return nil
}

type blankDecimal struct {
	decimal.Decimal
}

func (b *blankDecimal) UnmarshalJSON(data []byte) error {
	switch strings.TrimSpace(string(data)) {
	case `""`, "null":
		b.Decimal = decimal.Zero
		return nil
	}
	return b.Decimal.UnmarshalJSON(data)
}

// SignedQty is +Qty for a purchase and -Qty for a sale.
func (t Transaction) SignedQty() decimal.Decimal {
	switch t.Direction {
	case Buy:
		return t.Qty
	case Sell:
		return t.Qty.Neg()
	default:
		return decimal.Zero
	}
}

// Outstanding is what is still owed on a booked transaction. Fully purchased
// transactions owe nothing.
func (t Transaction) Outstanding() decimal.Decimal {
	if t.Status.OrDefault() != Booked {
		return decimal.Zero
	}
	return t.Amount.Sub(t.PaidAmount)
}

// ItemKey returns the "product-size" key used by inventory maps and thresholds.
func (t Transaction) ItemKey() string {
	return ItemKey(t.Product, t.Size)
}

// ItemKey joins product and size the way inventory and threshold maps key them.
func ItemKey(product, size string) string {
	return product + "-" + size
}

// Validate checks what the entry form checks before a record reaches the
// store. The store itself never validates.
func (t Transaction) Validate() error {
	var problems []string
	if !t.Direction.Valid() {
		problems = append(problems, fmt.Sprintf("unknown direction %q", t.Direction))
	}
	if strings.TrimSpace(t.Name) == "" {
		problems = append(problems, "trader name is required")
	}
	if t.Product == "" || t.Size == "" {
		problems = append(problems, "product and size are required")
	}
	if t.Qty.IsNegative() {
		problems = append(problems, "quantity cannot be negative")
	}
	if t.Amount.IsNegative() || t.PaidAmount.IsNegative() {
		problems = append(problems, "monetary amounts cannot be negative")
	}
	if !t.Status.Valid() {
		problems = append(problems, fmt.Sprintf("unknown status %q", t.Status))
	}
	if t.Status.OrDefault() == Booked && t.PaidAmount.GreaterThan(t.Amount) {
		problems = append(problems, "paid amount exceeds total amount")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTransaction, strings.Join(problems, "; "))
	}
	return nil
}

// CloneTransactions returns a copy of txs that shares nothing with the input.
func CloneTransactions(txs []Transaction) []Transaction {
	if txs == nil {
		return []Transaction{}
	}
	out := make([]Transaction, len(txs))
	copy(out, txs)
	return out
}

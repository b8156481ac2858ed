package models

import (
	"fmt"
	"strings"
)

// Direction tells whether a transaction sold goods to a customer or bought
// goods from a dealer. It also selects which catalog and which transaction
// collection a record belongs to.
type Direction string

const (
	Sell Direction = "sell"
	Buy  Direction = "buy"
)

// ParseDirection accepts the spellings used by the CLI and older exports
// ("sales", "purchase", ...) and returns the canonical Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sell", "sale", "sales":
		return Sell, nil
	case "buy", "purchase", "purchases":
		return Buy, nil
	default:
		return "", fmt.Errorf("unknown direction: %q (want sell or buy)", s)
	}
}

// Valid reports whether d is one of the two known directions.
func (d Direction) Valid() bool {
	return d == Sell || d == Buy
}

// Or returns d when it is valid and fallback otherwise.
func (d Direction) Or(fallback Direction) Direction {
	if d.Valid() {
		return d
	}
	return fallback
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Buy {
		return Sell
	}
	return Buy
}

// Status is the settlement state of a transaction.
type Status string

const (
	// Purchased means fully settled at entry time.
	Purchased Status = "purchased"
	// Booked means partly paid; PaidAmount and PromiseDate apply.
	Booked Status = "booked"
)

// OrDefault maps the empty status of older records to Purchased.
func (s Status) OrDefault() Status {
	if s == "" {
		return Purchased
	}
	return s
}

// Valid reports whether s is a known status (the empty status counts as Purchased).
func (s Status) Valid() bool {
	switch s.OrDefault() {
	case Purchased, Booked:
		return true
	}
	return false
}

// Payment methods offered by the entry form. Any other string is stored as-is.
const (
	PaymentCash = "cash"
	PaymentUPI  = "upi"
	PaymentCard = "card"
	PaymentBank = "bank"
)

// TraderType is advisory metadata used to filter contacts.
type TraderType string

const (
	Customer TraderType = "Customer"
	Dealer   TraderType = "Dealer"
)

// ParseTraderType is case-insensitive.
func ParseTraderType(s string) (TraderType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "customer":
		return Customer, nil
	case "dealer":
		return Dealer, nil
	default:
		return "", fmt.Errorf("unknown trader type: %q (want Customer or Dealer)", s)
	}
}

// TraderTypeFor returns the trader type that usually trades in direction d.
func TraderTypeFor(d Direction) TraderType {
	if d == Buy {
		return Dealer
	}
	return Customer
}

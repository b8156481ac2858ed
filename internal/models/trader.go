package models

// Trader is a customer or dealer contact. Traders are keyed by name
// (case-sensitive) in the Traders map.
type Trader struct {
	Contact string     `json:"contact"`
	Type    TraderType `json:"type"`
}

// Traders maps a trader name to its contact details.
type Traders map[string]Trader

// Clone returns a copy of the map.
func (t Traders) Clone() Traders {
	out := make(Traders, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// WalkInTrader is the counterparty used for anonymous counter sales.
const WalkInTrader = "Walk-in"

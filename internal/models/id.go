package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
)

// TxID identifies a transaction. It is the creation time in milliseconds,
// bumped when needed so that ids stay unique and strictly increasing.
type TxID int64

// ParseTxID parses the decimal form of an id. Older data sometimes stored ids
// as strings or as floats without a fractional part; both are accepted.
func ParseTxID(s string) (TxID, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return TxID(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid transaction id %q", s)
	}
	return TxID(int64(f)), nil
}

func (id TxID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// MarshalJSON always writes a JSON number.
func (id TxID) MarshalJSON() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted number.
func (id *TxID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*id = 0
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	parsed, err := ParseTxID(raw)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// IDGenerator hands out monotonic millisecond ids. Two calls inside the same
// millisecond get consecutive ids instead of colliding.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator returns a generator driven by the wall clock.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// NewIDGeneratorWithClock is used by tests to freeze time.
func NewIDGeneratorWithClock(now func() time.Time) *IDGenerator {
	return &IDGenerator{now: now}
}

// Next returns max(now in ms, last+1).
func (g *IDGenerator) Next() TxID {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now().UnixMilli()
	if now <= g.last {
		now = g.last + 1
	}
	g.last = now
	return TxID(now)
}

// Observe raises the floor so that later ids are greater than id. The store
// calls it for every loaded record, which keeps ids unique after a clock step back.
func (g *IDGenerator) Observe(id TxID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if int64(id) > g.last {
		g.last = int64(id)
	}
}

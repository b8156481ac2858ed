package dateutils

import (
	"fmt"
	"strings"
	"time"
)

// Period is a dashboard date filter.
type Period string

const (
	Daily     Period = "daily"
	Weekly    Period = "weekly"
	Monthly   Period = "monthly"
	SixMonths Period = "6months"
	OneYear   Period = "1year"
	AllTime   Period = "all"
)

// Periods lists every accepted filter in display order.
var Periods = []Period{Daily, Weekly, Monthly, SixMonths, OneYear, AllTime}

// DefaultPeriod is the filter a fresh session starts with.
const DefaultPeriod = Monthly

// ParsePeriod accepts the names in Periods, case-insensitively.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Periods {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown period: %q", s)
}

// Contains reports whether date falls inside the period ending today (now).
//
//	daily    same calendar day
//	weekly   the last 7 days, today included
//	monthly  same calendar month
//	6months  since the same day six months ago
//	1year    since the same day a year ago
func (p Period) Contains(date, now time.Time) bool {
	d, today := StartOfDay(date), StartOfDay(now)
	switch p {
	case Daily:
		return d.Equal(today)
	case Weekly:
		return !d.Before(today.AddDate(0, 0, -7))
	case Monthly:
		return SameMonth(d, today)
	case SixMonths:
		return !d.Before(today.AddDate(0, -6, 0))
	case OneYear:
		return !d.Before(today.AddDate(-1, 0, 0))
	default:
		return true
	}
}

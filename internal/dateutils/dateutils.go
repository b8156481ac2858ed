// Package dateutils provides the calendar date handling used by the ledger.
// Transaction dates are stored as plain YYYY-MM-DD strings; everything here
// works at day granularity and ignores time of day.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Date layouts accepted on input. Stored dates always use DateLayoutISO.
const (
	DateLayoutISO    = "2006-01-02"
	DateLayoutIndian = "02/01/2006"
	DateLayoutDashed = "02-01-2006"
	DateLayoutDotted = "02.01.2006"
	DateLayoutFull   = "2006-01-02 15:04:05"
	DateLayoutMonth  = "2-Jan-2006"
)

// CommonFormats is the order in which ParseDate tries layouts.
var CommonFormats = []string{
	DateLayoutISO,
	DateLayoutIndian,
	DateLayoutDashed,
	DateLayoutDotted,
	DateLayoutFull,
	DateLayoutMonth,
	time.RFC3339,
}

var spaces = regexp.MustCompile(`\s+`)

// ParseDate parses dateStr with the first matching layout in CommonFormats and
// returns the date at midnight UTC together with the layout used.
func ParseDate(dateStr string) (time.Time, string, error) {
	dateStr = CleanDateString(dateStr)
	for _, format := range CommonFormats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return StartOfDay(t), format, nil
		}
	}
	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// NormalizeDate converts any accepted input form to YYYY-MM-DD.
func NormalizeDate(dateStr string) (string, error) {
	t, _, err := ParseDate(dateStr)
	if err != nil {
		return "", err
	}
	return ToISODate(t), nil
}

// ToISODate formats date as YYYY-MM-DD.
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// CleanDateString trims and collapses whitespace.
func CleanDateString(dateStr string) string {
	return spaces.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// StartOfDay drops the time of day, keeping the calendar date as seen in
// date's own location, and returns it in UTC.
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
}

// CompareDates compares calendar days: -1, 0 or 1.
func CompareDates(date1, date2 time.Time) int {
	a, b := StartOfDay(date1), StartOfDay(date2)
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

// SameMonth reports whether both dates fall in the same calendar month.
func SameMonth(date1, date2 time.Time) bool {
	return date1.Year() == date2.Year() && date1.Month() == date2.Month()
}

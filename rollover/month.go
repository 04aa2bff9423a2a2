package rollover

import (
	"fmt"
	"strings"
	"time"

	"github.com/budgetops/budget-sheets/errs"
)

var layouts = []string{
	"2006-01",
	"January 2006",
	"Jan 2006",
}

// NextMonth returns the first day of the calendar month after now.
func NextMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
}

// ParseMonth parses a month given as 'December', 'Dec', 'December 2026' or
// '2026-12'. A month without a year is the next occurrence of that month
// (counting the current month) after now. An empty string is the month after
// now.
func ParseMonth(v string, now time.Time) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return NextMonth(now), nil
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, v, now.Location()); err == nil {
			return t, nil
		}
	}

	for _, layout := range []string{"January", "Jan"} {
		if t, err := time.Parse(layout, v); err == nil {
			year := now.Year()
			if t.Month() < now.Month() {
				year++
			}

			return time.Date(year, t.Month(), 1, 0, 0, 0, 0, now.Location()), nil
		}
	}

	return time.Time{}, &errs.ConfigurationError{Field: "month", Message: fmt.Sprintf("invalid month '%s' - expected e.g. 'December' or '2026-12'", v)}
}

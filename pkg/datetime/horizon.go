// Package datetime provides date and horizon utility functions.
package datetime

import (
	"time"

	"github.com/fincompass/goalengine/pkg/constants"
)

// DateTimeLayout is the format expected for target dates in request files and
// is also the output date format.
const DateTimeLayout = constants.DateTimeLayout

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}

// HorizonMonths returns the number of whole months between now and the target
// date. A nil target date or one in a past month resolves to the provided
// fallback so callers degrade instead of failing; a target within the current
// month yields a zero horizon.
func HorizonMonths(target *time.Time, now time.Time, fallback int) int {
	if target == nil {
		return fallback
	}
	months := monthsBetween(now, *target)
	if months < 0 {
		return fallback
	}
	return months
}

// monthsBetween counts calendar months from a to b, negative when b precedes a.
func monthsBetween(a, b time.Time) int {
	months := (b.Year()-a.Year())*constants.MonthsPerYear + int(b.Month()) - int(a.Month())
	if months > 0 && b.Day() < a.Day() {
		months--
	}
	return months
}

// YearsFromMonths converts a month count to fractional years.
func YearsFromMonths(months int) float64 {
	return float64(months) / constants.MonthsPerYear
}

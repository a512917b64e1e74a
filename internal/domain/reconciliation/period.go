package reconciliation

import (
	"time"

	"kasa/internal/domain/ledger"
)

const (
	minYear = 1900
	maxYear = 2200
)

// MonthBounds returns the first and last calendar day of the given month.
// Dates are calendar dates, not instants; no timezone conversion applies.
func MonthBounds(year, month int) (time.Time, time.Time, error) {
	if year < minYear || year > maxYear || month < 1 || month > 12 {
		return time.Time{}, time.Time{}, ledger.ErrInvalidPeriod
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end, nil
}

// IsActive decides whether an entry contributes to the month delimited by
// monthStart and monthEnd.
//
// A one-off entry is active iff its date falls inside the window. A
// recurring entry is active iff it started by monthEnd and has not ended
// before monthStart; a nil end date means it recurs forever. A recurring
// entry whose end date equals its start date is still evaluated by the
// recurring rule, with no special-casing of the zero-length interval.
func IsActive(e *ledger.Entry, monthStart, monthEnd time.Time) bool {
	if !e.IsRecurring {
		return !e.Date.Before(monthStart) && !e.Date.After(monthEnd)
	}
	if e.Date.After(monthEnd) {
		return false
	}
	return e.EndDate == nil || !e.EndDate.Before(monthStart)
}

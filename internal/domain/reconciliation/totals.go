package reconciliation

import (
	"context"
	"fmt"

	"kasa/internal/domain/ledger"
)

// Totals is the reconciled monthly aggregate for one entry kind, with a
// diagnostic breakdown of where the numbers came from.
type Totals struct {
	Total      float64 `json:"total"`
	FromBank   float64 `json:"fromBank"`
	FromManual float64 `json:"fromManual"`
	BankCount  int     `json:"bankCount"`
	// ManualCount is the number of manual entries that survived status
	// filtering and recurring-row deduplication.
	ManualCount int `json:"manualCount"`
	// DuplicateCount is how many manual entries were removed, combining
	// confirmed-duplicate exclusion and recurring-row collapse into one
	// number.
	DuplicateCount int `json:"duplicateCount"`
	// UnreviewedCount is computed over the manual set before filtering, so
	// the needs-review signal is independent of what was excluded.
	UnreviewedCount int `json:"unreviewedCount"`
}

// MonthTotals pairs a month number with its totals, for yearly reports.
type MonthTotals struct {
	Month int `json:"month"`
	Totals
}

// YearTotals is twelve monthly aggregations plus their sum.
type YearTotals struct {
	Year       int           `json:"year"`
	Kind       ledger.Kind   `json:"kind"`
	Months     []MonthTotals `json:"months"`
	Total      float64       `json:"total"`
	FromBank   float64       `json:"fromBank"`
	FromManual float64       `json:"fromManual"`
}

// Calculator computes reconciled monthly totals. It is stateless between
// invocations; each call works on its own fetched snapshot, so concurrent
// calls for different users share nothing.
type Calculator struct {
	entries ledger.EntryRepository
}

// NewCalculator creates a new totals calculator.
func NewCalculator(entries ledger.EntryRepository) *Calculator {
	return &Calculator{entries: entries}
}

// Calculate returns the reconciled totals for one user, month and entry kind.
//
// Entries active in the month are split into bank-backed and manual; manual
// entries with a confirmed duplicate status are dropped, the remainder is
// collapsed through DedupeOpenRecurring, and both partitions are summed.
// Rows with a malformed amount are excluded from sums and counts instead of
// failing the whole aggregation: this feeds a dashboard, so a best-effort
// total with a visible count mismatch beats a hard error.
func (c *Calculator) Calculate(ctx context.Context, userID int64, year, month int, kind ledger.Kind) (*Totals, error) {
	if !kind.IsValid() {
		return nil, ledger.ErrInvalidKind
	}
	monthStart, monthEnd, err := MonthBounds(year, month)
	if err != nil {
		return nil, err
	}

	entries, err := c.entries.ListByKind(ctx, userID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s entries: %w", kind, err)
	}

	var active []*ledger.Entry
	for _, e := range entries {
		if IsActive(e, monthStart, monthEnd) {
			active = append(active, e)
		}
	}

	totals := computeTotals(active)
	return &totals, nil
}

// CalculateYear aggregates all twelve months of a year for one entry kind.
func (c *Calculator) CalculateYear(ctx context.Context, userID int64, year int, kind ledger.Kind) (*YearTotals, error) {
	report := &YearTotals{
		Year:   year,
		Kind:   kind,
		Months: make([]MonthTotals, 0, 12),
	}
	for month := 1; month <= 12; month++ {
		totals, err := c.Calculate(ctx, userID, year, month, kind)
		if err != nil {
			return nil, err
		}
		report.Months = append(report.Months, MonthTotals{Month: month, Totals: *totals})
		report.Total += totals.Total
		report.FromBank += totals.FromBank
		report.FromManual += totals.FromManual
	}
	return report, nil
}

// computeTotals is the pure aggregation step over the active snapshot.
func computeTotals(active []*ledger.Entry) Totals {
	var totals Totals
	var manual []*ledger.Entry

	for _, e := range active {
		if !e.HasValidAmount() {
			// Malformed row: skipped everywhere, visible to the caller as a
			// discrepancy between fetched rows and reported counts.
			continue
		}
		if e.BankBacked() {
			totals.FromBank += e.Amount
			totals.BankCount++
			continue
		}
		manual = append(manual, e)
	}

	for _, e := range manual {
		if e.Status == ledger.StatusUnreviewed {
			totals.UnreviewedCount++
		}
	}

	kept := make([]*ledger.Entry, 0, len(manual))
	for _, e := range manual {
		if e.Status.CountsTowardTotals() {
			kept = append(kept, e)
		}
	}
	kept = DedupeOpenRecurring(kept)

	for _, e := range kept {
		totals.FromManual += e.Amount
	}
	totals.ManualCount = len(kept)
	totals.DuplicateCount = len(manual) - len(kept)
	totals.Total = totals.FromBank + totals.FromManual

	return totals
}

package reconciliation

import "kasa/internal/domain/ledger"

// recurringKey groups open recurring rows that describe the same obligation.
// Amount is deliberately not part of the key: the usual reason two open rows
// exist is that the user edited the amount, which the UI records by inserting
// a new row instead of closing the old one out.
type recurringKey struct {
	category    string
	description string
}

// DedupeOpenRecurring collapses accidental duplicate open recurring rows.
//
// Entries that are recurring with no end date are grouped by (category,
// description) and only the row with the highest ID survives per group —
// storage-assigned ids are the only guaranteed recency order, there is no
// explicit supersession link between recurring rows. All other entries pass
// through untouched. Input order is preserved, and the operation is
// idempotent.
func DedupeOpenRecurring(entries []*ledger.Entry) []*ledger.Entry {
	newest := make(map[recurringKey]int64)
	for _, e := range entries {
		if !e.IsRecurring || e.EndDate != nil {
			continue
		}
		key := recurringKey{category: e.Category, description: e.Description}
		if id, ok := newest[key]; !ok || e.ID > id {
			newest[key] = e.ID
		}
	}

	if len(newest) == 0 {
		return entries
	}

	out := make([]*ledger.Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsRecurring && e.EndDate == nil {
			key := recurringKey{category: e.Category, description: e.Description}
			if newest[key] != e.ID {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

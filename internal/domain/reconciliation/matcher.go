package reconciliation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"kasa/internal/domain/ledger"
)

const (
	// MatchWindowDays is the trailing window, from today, within which
	// entries and bank transactions are considered for matching.
	MatchWindowDays = 180

	// DefaultMinScore is the minimum combined score for a pair to be suggested.
	DefaultMinScore = 0.7

	// DefaultSuggestionLimit caps the number of suggestions returned.
	DefaultSuggestionLimit = 50
)

// Scoring weights and thresholds. Hand-tuned; the factors are mutually
// exclusive per category so the total never exceeds 1.0.
const (
	dateExactScore   = 0.3
	dateCloseScore   = 0.2
	dateCloseDays    = 3
	amountExactScore = 0.4
	amountCloseScore = 0.3
	amountExactPct   = 0.001
	amountClosePct   = 0.02
	descStrongScore  = 0.3
	descWeakScore    = 0.2
	descStrongRatio  = 0.8
	descWeakRatio    = 0.6
)

// Suggestion is a scored pairing of one manual entry and one pending bank
// transaction, produced for human review and never auto-applied.
type Suggestion struct {
	EntryID           int64       `json:"entryId"`
	EntryKind         ledger.Kind `json:"entryType"`
	BankTransactionID string      `json:"bankTransactionId"`
	Score             float64     `json:"matchScore"`
	Reasons           []string    `json:"matchReasons"`
}

// Score rates how likely a manual entry and a bank transaction describe the
// same real-world event. The result is in [0, 1], built from date proximity,
// amount proximity and description similarity.
func Score(e *ledger.Entry, tx *ledger.BankTransaction) (float64, []string) {
	var score float64
	var reasons []string

	switch {
	case sameCalendarDay(e.Date, tx.Date):
		score += dateExactScore
		reasons = append(reasons, "same date")
	case daysApart(e.Date, tx.Date) <= dateCloseDays:
		score += dateCloseScore
		reasons = append(reasons, fmt.Sprintf("within %d days", dateCloseDays))
	}

	switch diff := amountDiffPct(e.Amount, tx.Amount); {
	case diff < amountExactPct:
		score += amountExactScore
		reasons = append(reasons, "exact amount match")
	case diff <= amountClosePct:
		score += amountCloseScore
		reasons = append(reasons, "amount within 2%")
	}

	switch ratio := descriptionSimilarity(e.Description, tx.DescriptionDisplay); {
	case ratio > descStrongRatio:
		score += descStrongScore
		reasons = append(reasons, "description match")
	case ratio > descWeakRatio:
		score += descWeakScore
		reasons = append(reasons, "similar description")
	}

	return score, reasons
}

// Suggest scores every eligible (entry, transaction) pair and returns those
// at or above minScore, sorted by score descending. The sort is stable so
// ties keep pair-generation order, which keeps results deterministic.
//
// Eligible pairs: unreviewed manual entries against pending transactions
// with a compatible sign (expenses match outflows, incomes match inflows).
// Suggest never mutates its inputs.
func Suggest(entries []*ledger.Entry, transactions []*ledger.BankTransaction, minScore float64, limit int) []Suggestion {
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	var suggestions []Suggestion
	for _, e := range entries {
		if e.Status != ledger.StatusUnreviewed || e.BankBacked() {
			continue
		}
		for _, tx := range transactions {
			if tx.Status != ledger.BankTxPending {
				continue
			}
			if !signCompatible(e.Kind, tx.Amount) {
				continue
			}
			score, reasons := Score(e, tx)
			if score < minScore {
				continue
			}
			suggestions = append(suggestions, Suggestion{
				EntryID:           e.ID,
				EntryKind:         e.Kind,
				BankTransactionID: tx.ID,
				Score:             score,
				Reasons:           reasons,
			})
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}

// Matcher produces duplicate suggestions from the stored entry and bank
// transaction snapshots of a user.
type Matcher struct {
	entries ledger.EntryRepository
	bankTxs ledger.BankTransactionRepository
	now     func() time.Time
}

// NewMatcher creates a new matcher.
func NewMatcher(entries ledger.EntryRepository, bankTxs ledger.BankTransactionRepository) *Matcher {
	return &Matcher{
		entries: entries,
		bankTxs: bankTxs,
		now:     time.Now,
	}
}

// SuggestDuplicates fetches the user's unreviewed entries and pending bank
// transactions from the trailing match window and returns ranked suggestions.
func (m *Matcher) SuggestDuplicates(ctx context.Context, userID int64, limit int, minScore float64) ([]Suggestion, error) {
	since := m.now().AddDate(0, 0, -MatchWindowDays)

	entries, err := m.entries.ListUnreviewedSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list unreviewed entries: %w", err)
	}

	transactions, err := m.bankTxs.ListPendingSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending bank transactions: %w", err)
	}

	return Suggest(entries, transactions, minScore, limit), nil
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func daysApart(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}

// amountDiffPct returns the relative difference between the absolute
// amounts, in [0, 1]. Malformed amounts never match.
func amountDiffPct(entryAmount, txAmount float64) float64 {
	if math.IsNaN(entryAmount) || math.IsNaN(txAmount) {
		return 1
	}
	a := math.Abs(entryAmount)
	b := math.Abs(txAmount)
	max := math.Max(a, b)
	if max == 0 {
		return 0
	}
	return math.Abs(a-b) / max
}

// descriptionSimilarity is a normalized, case-insensitive edit-distance
// ratio in [0, 1]; 1 means identical.
func descriptionSimilarity(a, b string) float64 {
	a = strings.ToUpper(strings.TrimSpace(a))
	b = strings.ToUpper(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	// ComputeDistance counts runes, so normalize by rune length too or
	// multi-byte descriptions score inflated similarity.
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

func signCompatible(kind ledger.Kind, txAmount float64) bool {
	switch kind {
	case ledger.KindExpense:
		return txAmount < 0
	case ledger.KindIncome:
		return txAmount > 0
	}
	return false
}

package ledger

import (
	"errors"
	"math"
	"strings"
	"time"
)

// Kind distinguishes the two entry ledgers. Amounts are stored positive;
// the kind implies the sign.
type Kind string

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

// IsValid reports whether the kind is one of the known entry kinds.
func (k Kind) IsValid() bool {
	return k == KindExpense || k == KindIncome
}

// Status is the reconciliation status of an entry.
type Status string

const (
	// StatusUnreviewed is the initial status for manually created entries
	// with no bank link.
	StatusUnreviewed Status = "unreviewed"
	// StatusBankBacked is set when an entry is materialized from an accepted
	// bank transaction. It is never reachable by user action.
	StatusBankBacked Status = "bank_backed"
	// StatusManualConfirmed means a human confirmed the manual entry is a
	// distinct real transaction, not a duplicate of any bank transaction.
	StatusManualConfirmed Status = "manual_confirmed"
	// StatusDuplicateOfBank means a human confirmed the manual entry
	// duplicates a specific bank transaction. Excluded from totals.
	StatusDuplicateOfBank Status = "duplicate_of_bank"
	// StatusPreBankEra marks manual entries predating the user's bank
	// connection. Counts the same as manual_confirmed.
	StatusPreBankEra Status = "pre_bank_era"
)

// IsValid reports whether the status is one of the known reconciliation statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusUnreviewed, StatusBankBacked, StatusManualConfirmed, StatusDuplicateOfBank, StatusPreBankEra:
		return true
	}
	return false
}

// CountsTowardTotals reports whether an entry with this status is included
// in monthly totals. Everything except confirmed duplicates counts, so
// totals are never silently wrong while an entry awaits review.
func (s Status) CountsTowardTotals() bool {
	return s != StatusDuplicateOfBank
}

// BankTransactionStatus tracks whether a human has triaged an imported
// bank transaction into an entry.
type BankTransactionStatus string

const (
	BankTxPending  BankTransactionStatus = "pending"
	BankTxAccepted BankTransactionStatus = "accepted"
	BankTxRejected BankTransactionStatus = "rejected"
	BankTxIgnored  BankTransactionStatus = "ignored"
)

// IsValid reports whether the status is one of the known triage statuses.
func (s BankTransactionStatus) IsValid() bool {
	switch s {
	case BankTxPending, BankTxAccepted, BankTxRejected, BankTxIgnored:
		return true
	}
	return false
}

// Domain errors
var (
	ErrEntryNotFound               = errors.New("entry not found")
	ErrBankTransactionNotFound     = errors.New("bank transaction not found")
	ErrAlreadyBankBacked           = errors.New("entry is bank-backed and cannot be marked as a duplicate")
	ErrInconsistentDuplicateTarget = errors.New("target bank transaction belongs to a different user")
	ErrInvalidPeriod               = errors.New("invalid year or month")
	ErrInvalidKind                 = errors.New("invalid entry kind")
	ErrInvalidAmount               = errors.New("amount must be positive")
	ErrForbidden                   = errors.New("access forbidden")
)

// Entry is a single ledger line, manually entered or materialized from an
// accepted bank transaction. The ID is storage-assigned and monotonically
// increasing per kind; it is the only guaranteed total order and serves as
// the recency tiebreak for recurring-row deduplication.
type Entry struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Kind        Kind      `json:"kind"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	// Amount is always positive; NaN when the stored value is NULL or
	// otherwise malformed (such rows are excluded from sums, not fatal).
	Amount      float64    `json:"amount"`
	Date        time.Time  `json:"date"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	IsRecurring bool       `json:"isRecurring"`

	SourceBankTransactionID      *string `json:"sourceBankTransactionId,omitempty"`
	Status                       Status  `json:"status"`
	DuplicateOfBankTransactionID *string `json:"duplicateOfBankTransactionId,omitempty"`
	Note                         *string `json:"note,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BankBacked reports whether the entry was materialized from a bank
// transaction. Bank-backed entries never participate in fuzzy matching.
func (e *Entry) BankBacked() bool {
	return e.SourceBankTransactionID != nil
}

// HasValidAmount reports whether the amount survived storage intact.
func (e *Entry) HasValidAmount() bool {
	return !math.IsNaN(e.Amount) && e.Amount > 0
}

// BankTransaction is an immutable record fetched from the bank-aggregation
// provider. Amount is signed: negative means outflow (expense candidate),
// positive means inflow (income candidate).
type BankTransaction struct {
	ID                 string                `json:"id"`
	UserID             int64                 `json:"userId"`
	Amount             float64               `json:"amount"`
	Currency           string                `json:"currency"`
	Date               time.Time             `json:"date"`
	DescriptionDisplay string                `json:"descriptionDisplay"`
	MerchantName       *string               `json:"merchantName,omitempty"`
	Status             BankTransactionStatus `json:"status"`
	// IsDuplicate / DuplicateOf carry provider-level or exact-ID duplicate
	// flags detected at sync time, orthogonal to fuzzy manual/bank matching.
	IsDuplicate bool      `json:"isDuplicate"`
	DuplicateOf *string   `json:"duplicateOf,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateEntryParams contains parameters for creating a new entry.
type CreateEntryParams struct {
	UserID                  int64
	Kind                    Kind
	Category                string
	Description             string
	Amount                  float64
	Date                    time.Time
	EndDate                 *time.Time
	IsRecurring             bool
	Status                  Status // defaults to unreviewed when empty
	SourceBankTransactionID *string
}

// Validate validates the create parameters.
func (p CreateEntryParams) Validate() error {
	if p.UserID <= 0 {
		return errors.New("valid user ID is required")
	}
	if !p.Kind.IsValid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(p.Description) == "" {
		return errors.New("description is required")
	}
	if math.IsNaN(p.Amount) || p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if p.Date.IsZero() {
		return errors.New("date is required")
	}
	if p.EndDate != nil && p.EndDate.Before(p.Date) {
		return errors.New("end date must not be before start date")
	}
	if p.Status != "" && !p.Status.IsValid() {
		return errors.New("invalid reconciliation status")
	}
	if p.SourceBankTransactionID != nil && p.Status != StatusBankBacked {
		return errors.New("bank-sourced entries must be bank_backed")
	}
	return nil
}

// UpdateEntryParams contains optional fields for updating an entry.
// Nil fields are left unchanged.
type UpdateEntryParams struct {
	Category    *string
	Description *string
	Amount      *float64
	Date        *time.Time
	EndDate     *time.Time
	ClearEnd    bool // set end_date to NULL (reopen a recurring entry)
	IsRecurring *bool
}

// ReviewParams is the single atomic write a reconciliation transition
// performs: status, duplicate link and optional note change together.
type ReviewParams struct {
	Status                       Status
	DuplicateOfBankTransactionID *string
	Note                         *string
}

// UpsertBankTransactionParams is used when syncing transactions from the
// aggregation provider. The provider's transaction id is the primary key.
type UpsertBankTransactionParams struct {
	ID                 string
	UserID             int64
	Amount             float64
	Currency           string
	Date               time.Time
	DescriptionDisplay string
	MerchantName       *string
}

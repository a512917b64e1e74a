package ledger

import (
	"context"
	"time"
)

// EntryRepository defines the interface for entry data access.
type EntryRepository interface {
	Create(ctx context.Context, params CreateEntryParams) (*Entry, error)
	GetByID(ctx context.Context, id int64) (*Entry, error)
	// GetBySourceTransactionID returns the entry materialized from the given
	// bank transaction, or nil if none exists.
	GetBySourceTransactionID(ctx context.Context, bankTransactionID string) (*Entry, error)
	// ListByKind returns all entries of a kind for a user, oldest date first.
	// The caller applies period filtering.
	ListByKind(ctx context.Context, userID int64, kind Kind) ([]*Entry, error)
	ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*Entry, error)
	// ListUnreviewedSince returns manual unreviewed entries dated on or after
	// the given time. Bank-backed entries are never returned.
	ListUnreviewedSince(ctx context.Context, userID int64, since time.Time) ([]*Entry, error)
	Update(ctx context.Context, id int64, params UpdateEntryParams) (*Entry, error)
	// UpdateReview applies a reconciliation transition as a single atomic
	// read-modify-write. Returns nil, nil when the entry does not exist.
	UpdateReview(ctx context.Context, id int64, params ReviewParams) (*Entry, error)
	// MarkPreBankEra flips manual unreviewed entries dated before the cutoff
	// to pre_bank_era. Returns the number of entries updated.
	MarkPreBankEra(ctx context.Context, userID int64, before time.Time) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// BankTransactionRepository defines the interface for bank transaction data access.
type BankTransactionRepository interface {
	GetByID(ctx context.Context, id string) (*BankTransaction, error)
	ListByUserID(ctx context.Context, userID int64, status BankTransactionStatus, limit, offset int) ([]*BankTransaction, error)
	// ListPendingSince returns untriaged transactions dated on or after the
	// given time, excluding ones already flagged as duplicates.
	ListPendingSince(ctx context.Context, userID int64, since time.Time) ([]*BankTransaction, error)
	// Upsert inserts or refreshes a synced transaction. Triage status of an
	// existing row is preserved. The second return value is true when the
	// row was newly created.
	Upsert(ctx context.Context, params UpsertBankTransactionParams) (*BankTransaction, bool, error)
	UpdateStatus(ctx context.Context, id string, status BankTransactionStatus) (*BankTransaction, error)
	// FlagDuplicate marks a transaction as a provider-level/exact duplicate
	// of another transaction.
	FlagDuplicate(ctx context.Context, id, duplicateOf string) error
	// FindExactMatch returns an older transaction of the same user with the
	// same signed amount, calendar date and display description, or nil.
	FindExactMatch(ctx context.Context, userID int64, amount float64, date time.Time, description, excludeID string) (*BankTransaction, error)
}

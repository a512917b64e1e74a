package reconciliation

import (
	"context"
	"fmt"

	"kasa/internal/domain/ledger"
)

// ReviewService applies reconciliation status transitions. Transitions are
// triggered by explicit user action; the rest of the engine only interprets
// the resulting status. Each transition is a single atomic read-modify-write
// through the repository; locking discipline belongs to the storage layer.
type ReviewService struct {
	entries ledger.EntryRepository
	bankTxs ledger.BankTransactionRepository
}

// NewReviewService creates a new review service.
func NewReviewService(entries ledger.EntryRepository, bankTxs ledger.BankTransactionRepository) *ReviewService {
	return &ReviewService{entries: entries, bankTxs: bankTxs}
}

// MarkDuplicate records that a manual entry duplicates a specific bank
// transaction, excluding it from totals from this point on.
//
// Bank-backed entries are rejected with ErrAlreadyBankBacked, and the target
// transaction must belong to the same user. The duplicate link is written in
// the same update as the status change. Repeating the call with the same
// target is idempotent.
func (s *ReviewService) MarkDuplicate(ctx context.Context, userID, entryID int64, bankTransactionID string, note *string) (*ledger.Entry, error) {
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	if entry == nil || entry.UserID != userID {
		return nil, ledger.ErrEntryNotFound
	}
	if entry.BankBacked() {
		return nil, ledger.ErrAlreadyBankBacked
	}

	tx, err := s.bankTxs.GetByID(ctx, bankTransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bank transaction: %w", err)
	}
	if tx == nil {
		return nil, ledger.ErrBankTransactionNotFound
	}
	if tx.UserID != userID {
		return nil, ledger.ErrInconsistentDuplicateTarget
	}

	updated, err := s.entries.UpdateReview(ctx, entryID, ledger.ReviewParams{
		Status:                       ledger.StatusDuplicateOfBank,
		DuplicateOfBankTransactionID: &bankTransactionID,
		Note:                         note,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mark entry as duplicate: %w", err)
	}
	if updated == nil {
		return nil, ledger.ErrEntryNotFound
	}
	return updated, nil
}

// ConfirmSeparate records that a manual entry is a distinct real transaction
// rather than a duplicate of any bank transaction. Any previous duplicate
// link is cleared. Idempotent.
func (s *ReviewService) ConfirmSeparate(ctx context.Context, userID, entryID int64, note *string) (*ledger.Entry, error) {
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	if entry == nil || entry.UserID != userID {
		return nil, ledger.ErrEntryNotFound
	}
	if entry.BankBacked() {
		return nil, ledger.ErrAlreadyBankBacked
	}

	updated, err := s.entries.UpdateReview(ctx, entryID, ledger.ReviewParams{
		Status: ledger.StatusManualConfirmed,
		Note:   note,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to confirm entry: %w", err)
	}
	if updated == nil {
		return nil, ledger.ErrEntryNotFound
	}
	return updated, nil
}

// Reopen clears a previous review decision, treating the reversal as a
// fresh unreviewed write. Idempotent.
func (s *ReviewService) Reopen(ctx context.Context, userID, entryID int64) (*ledger.Entry, error) {
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	if entry == nil || entry.UserID != userID {
		return nil, ledger.ErrEntryNotFound
	}
	if entry.BankBacked() {
		return nil, ledger.ErrAlreadyBankBacked
	}

	updated, err := s.entries.UpdateReview(ctx, entryID, ledger.ReviewParams{
		Status: ledger.StatusUnreviewed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reopen entry: %w", err)
	}
	if updated == nil {
		return nil, ledger.ErrEntryNotFound
	}
	return updated, nil
}

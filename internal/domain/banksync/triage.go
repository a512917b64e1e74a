package banksync

import (
	"context"
	"fmt"

	"kasa/internal/domain/ledger"
)

// DefaultCategory is assigned to entries materialized from accepted bank
// transactions until the user recategorizes them.
const DefaultCategory = "uncategorized"

// TriageService applies user decisions to synced bank transactions.
// Accepting a transaction is the only way an entry becomes bank-backed.
type TriageService struct {
	entries ledger.EntryRepository
	bankTxs ledger.BankTransactionRepository
}

// NewTriageService creates a new triage service.
func NewTriageService(entries ledger.EntryRepository, bankTxs ledger.BankTransactionRepository) *TriageService {
	return &TriageService{entries: entries, bankTxs: bankTxs}
}

// Accept materializes a pending bank transaction into a bank-backed entry.
// The entry kind follows the transaction sign and the amount is stored
// unsigned. Accepting twice returns the existing entry.
func (s *TriageService) Accept(ctx context.Context, userID int64, transactionID string, category string) (*ledger.Entry, error) {
	tx, err := s.getOwnTransaction(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	// Idempotency: a previous accept may have already materialized the entry.
	existing, err := s.entries.GetBySourceTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing entry: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	kind := ledger.KindExpense
	amount := tx.Amount
	if amount > 0 {
		kind = ledger.KindIncome
	} else {
		amount = -amount
	}

	description := tx.DescriptionDisplay
	if tx.MerchantName != nil && *tx.MerchantName != "" {
		description = *tx.MerchantName
	}
	if category == "" {
		category = DefaultCategory
	}

	entry, err := s.entries.Create(ctx, ledger.CreateEntryParams{
		UserID:                  userID,
		Kind:                    kind,
		Category:                category,
		Description:             description,
		Amount:                  amount,
		Date:                    tx.Date,
		SourceBankTransactionID: &tx.ID,
		Status:                  ledger.StatusBankBacked,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create entry from transaction: %w", err)
	}

	if _, err := s.bankTxs.UpdateStatus(ctx, transactionID, ledger.BankTxAccepted); err != nil {
		return nil, fmt.Errorf("failed to mark transaction accepted: %w", err)
	}

	return entry, nil
}

// Reject marks a transaction as not belonging in the books (e.g. an internal
// transfer). No entry is created and the transaction leaves the triage queue.
func (s *TriageService) Reject(ctx context.Context, userID int64, transactionID string) (*ledger.BankTransaction, error) {
	if _, err := s.getOwnTransaction(ctx, userID, transactionID); err != nil {
		return nil, err
	}
	tx, err := s.bankTxs.UpdateStatus(ctx, transactionID, ledger.BankTxRejected)
	if err != nil {
		return nil, fmt.Errorf("failed to reject transaction: %w", err)
	}
	return tx, nil
}

// Ignore hides a transaction from the triage queue without judging it.
func (s *TriageService) Ignore(ctx context.Context, userID int64, transactionID string) (*ledger.BankTransaction, error) {
	if _, err := s.getOwnTransaction(ctx, userID, transactionID); err != nil {
		return nil, err
	}
	tx, err := s.bankTxs.UpdateStatus(ctx, transactionID, ledger.BankTxIgnored)
	if err != nil {
		return nil, fmt.Errorf("failed to ignore transaction: %w", err)
	}
	return tx, nil
}

func (s *TriageService) getOwnTransaction(ctx context.Context, userID int64, transactionID string) (*ledger.BankTransaction, error) {
	tx, err := s.bankTxs.GetByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if tx == nil || tx.UserID != userID {
		return nil, ledger.ErrBankTransactionNotFound
	}
	return tx, nil
}

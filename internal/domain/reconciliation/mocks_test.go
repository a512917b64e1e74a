package reconciliation

import (
	"context"
	"time"

	"kasa/internal/domain/ledger"
)

// MockEntryRepo implements ledger.EntryRepository for testing.
type MockEntryRepo struct {
	CreateFunc                   func(ctx context.Context, params ledger.CreateEntryParams) (*ledger.Entry, error)
	GetByIDFunc                  func(ctx context.Context, id int64) (*ledger.Entry, error)
	GetBySourceTransactionIDFunc func(ctx context.Context, bankTransactionID string) (*ledger.Entry, error)
	ListByKindFunc               func(ctx context.Context, userID int64, kind ledger.Kind) ([]*ledger.Entry, error)
	ListByUserIDFunc             func(ctx context.Context, userID int64, limit, offset int) ([]*ledger.Entry, error)
	ListUnreviewedSinceFunc      func(ctx context.Context, userID int64, since time.Time) ([]*ledger.Entry, error)
	UpdateFunc                   func(ctx context.Context, id int64, params ledger.UpdateEntryParams) (*ledger.Entry, error)
	UpdateReviewFunc             func(ctx context.Context, id int64, params ledger.ReviewParams) (*ledger.Entry, error)
	MarkPreBankEraFunc           func(ctx context.Context, userID int64, before time.Time) (int64, error)
	DeleteFunc                   func(ctx context.Context, id int64) error
}

func (m *MockEntryRepo) Create(ctx context.Context, params ledger.CreateEntryParams) (*ledger.Entry, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockEntryRepo) GetByID(ctx context.Context, id int64) (*ledger.Entry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockEntryRepo) GetBySourceTransactionID(ctx context.Context, bankTransactionID string) (*ledger.Entry, error) {
	if m.GetBySourceTransactionIDFunc != nil {
		return m.GetBySourceTransactionIDFunc(ctx, bankTransactionID)
	}
	return nil, nil
}

func (m *MockEntryRepo) ListByKind(ctx context.Context, userID int64, kind ledger.Kind) ([]*ledger.Entry, error) {
	if m.ListByKindFunc != nil {
		return m.ListByKindFunc(ctx, userID, kind)
	}
	return nil, nil
}

func (m *MockEntryRepo) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*ledger.Entry, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID, limit, offset)
	}
	return nil, nil
}

func (m *MockEntryRepo) ListUnreviewedSince(ctx context.Context, userID int64, since time.Time) ([]*ledger.Entry, error) {
	if m.ListUnreviewedSinceFunc != nil {
		return m.ListUnreviewedSinceFunc(ctx, userID, since)
	}
	return nil, nil
}

func (m *MockEntryRepo) Update(ctx context.Context, id int64, params ledger.UpdateEntryParams) (*ledger.Entry, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, params)
	}
	return nil, nil
}

func (m *MockEntryRepo) UpdateReview(ctx context.Context, id int64, params ledger.ReviewParams) (*ledger.Entry, error) {
	if m.UpdateReviewFunc != nil {
		return m.UpdateReviewFunc(ctx, id, params)
	}
	return nil, nil
}

func (m *MockEntryRepo) MarkPreBankEra(ctx context.Context, userID int64, before time.Time) (int64, error) {
	if m.MarkPreBankEraFunc != nil {
		return m.MarkPreBankEraFunc(ctx, userID, before)
	}
	return 0, nil
}

func (m *MockEntryRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockBankTxRepo implements ledger.BankTransactionRepository for testing.
type MockBankTxRepo struct {
	GetByIDFunc          func(ctx context.Context, id string) (*ledger.BankTransaction, error)
	ListByUserIDFunc     func(ctx context.Context, userID int64, status ledger.BankTransactionStatus, limit, offset int) ([]*ledger.BankTransaction, error)
	ListPendingSinceFunc func(ctx context.Context, userID int64, since time.Time) ([]*ledger.BankTransaction, error)
	UpsertFunc           func(ctx context.Context, params ledger.UpsertBankTransactionParams) (*ledger.BankTransaction, bool, error)
	UpdateStatusFunc     func(ctx context.Context, id string, status ledger.BankTransactionStatus) (*ledger.BankTransaction, error)
	FlagDuplicateFunc    func(ctx context.Context, id, duplicateOf string) error
	FindExactMatchFunc   func(ctx context.Context, userID int64, amount float64, date time.Time, description, excludeID string) (*ledger.BankTransaction, error)
}

func (m *MockBankTxRepo) GetByID(ctx context.Context, id string) (*ledger.BankTransaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockBankTxRepo) ListByUserID(ctx context.Context, userID int64, status ledger.BankTransactionStatus, limit, offset int) ([]*ledger.BankTransaction, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID, status, limit, offset)
	}
	return nil, nil
}

func (m *MockBankTxRepo) ListPendingSince(ctx context.Context, userID int64, since time.Time) ([]*ledger.BankTransaction, error) {
	if m.ListPendingSinceFunc != nil {
		return m.ListPendingSinceFunc(ctx, userID, since)
	}
	return nil, nil
}

func (m *MockBankTxRepo) Upsert(ctx context.Context, params ledger.UpsertBankTransactionParams) (*ledger.BankTransaction, bool, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, params)
	}
	return nil, false, nil
}

func (m *MockBankTxRepo) UpdateStatus(ctx context.Context, id string, status ledger.BankTransactionStatus) (*ledger.BankTransaction, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil, nil
}

func (m *MockBankTxRepo) FlagDuplicate(ctx context.Context, id, duplicateOf string) error {
	if m.FlagDuplicateFunc != nil {
		return m.FlagDuplicateFunc(ctx, id, duplicateOf)
	}
	return nil
}

func (m *MockBankTxRepo) FindExactMatch(ctx context.Context, userID int64, amount float64, date time.Time, description, excludeID string) (*ledger.BankTransaction, error) {
	if m.FindExactMatchFunc != nil {
		return m.FindExactMatchFunc(ctx, userID, amount, date, description, excludeID)
	}
	return nil, nil
}

package http

import (
	"context"
	"time"

	"kasa/internal/domain/ledger"
	"kasa/internal/domain/user"
	"kasa/internal/infrastructure/bankapi"
)

// MockEntryRepo implements ledger.EntryRepository for testing
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

// MockBankTxRepo implements ledger.BankTransactionRepository for testing
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

// MockUserRepo implements user.Repository for testing
type MockUserRepo struct {
	CreateFunc                   func(ctx context.Context, params user.CreateUserParams) (*user.User, error)
	GetByIDFunc                  func(ctx context.Context, id int64) (*user.User, error)
	GetByEmailFunc               func(ctx context.Context, email string) (*user.User, error)
	UpdateFunc                   func(ctx context.Context, userID int64, params user.UpdateUserParams) (*user.User, error)
	SetProviderKeyFunc           func(ctx context.Context, userID int64, key string, connectedAt time.Time) (*user.User, error)
	ListUsersWithProviderKeyFunc func(ctx context.Context) ([]*user.User, error)
}

func (m *MockUserRepo) Create(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *MockUserRepo) Update(ctx context.Context, userID int64, params user.UpdateUserParams) (*user.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, userID, params)
	}
	return nil, nil
}

func (m *MockUserRepo) SetProviderKey(ctx context.Context, userID int64, key string, connectedAt time.Time) (*user.User, error) {
	if m.SetProviderKeyFunc != nil {
		return m.SetProviderKeyFunc(ctx, userID, key, connectedAt)
	}
	return nil, nil
}

func (m *MockUserRepo) ListUsersWithProviderKey(ctx context.Context) ([]*user.User, error) {
	if m.ListUsersWithProviderKeyFunc != nil {
		return m.ListUsersWithProviderKeyFunc(ctx)
	}
	return nil, nil
}

// MockBankClient implements bankapi.ClientInterface for testing
type MockBankClient struct {
	GetTransactionsFunc   func(ctx context.Context, apiKey, startDate string) (*bankapi.TransactionResponse, error)
	GetStatusWithCodeFunc func(ctx context.Context, apiKey string) (*bankapi.StatusResponse, int, error)
}

func (m *MockBankClient) GetTransactions(ctx context.Context, apiKey, startDate string) (*bankapi.TransactionResponse, error) {
	if m.GetTransactionsFunc != nil {
		return m.GetTransactionsFunc(ctx, apiKey, startDate)
	}
	return nil, nil
}

func (m *MockBankClient) GetStatusWithCode(ctx context.Context, apiKey string) (*bankapi.StatusResponse, int, error) {
	if m.GetStatusWithCodeFunc != nil {
		return m.GetStatusWithCodeFunc(ctx, apiKey)
	}
	return nil, 0, nil
}

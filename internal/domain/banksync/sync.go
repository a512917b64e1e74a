package banksync

import (
	"context"
	"fmt"
	"log"
	"time"

	"kasa/internal/domain/ledger"
	"kasa/internal/domain/user"
	"kasa/internal/infrastructure/bankapi"
)

// SyncResult contains the results of a bank transaction sync operation
type SyncResult struct {
	UserID            int64
	TransactionsFound int
	Created           int
	Updated           int
	FlaggedDuplicate  int
	Skipped           int // Transactions that couldn't be parsed
	Errors            []string
}

// SyncService pulls transactions from the bank aggregator and stores them
// for triage. Newly stored transactions are checked against older ones and
// flagged when the provider delivers the same transaction twice under
// different IDs.
type SyncService struct {
	client    bankapi.ClientInterface
	userRepo  user.Repository
	bankTxs   ledger.BankTransactionRepository
	startDate string
}

// NewSyncService creates a new bank sync service. startDate bounds the
// initial fetch, "YYYY-MM-DD" or empty for provider default.
func NewSyncService(client bankapi.ClientInterface, userRepo user.Repository, bankTxs ledger.BankTransactionRepository, startDate string) *SyncService {
	return &SyncService{
		client:    client,
		userRepo:  userRepo,
		bankTxs:   bankTxs,
		startDate: startDate,
	}
}

// SyncUser syncs all bank transactions for a specific user
func (s *SyncService) SyncUser(ctx context.Context, userID int64) (*SyncResult, error) {
	result := &SyncResult{
		UserID: userID,
		Errors: []string{},
	}

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return nil, user.ErrNotFound
	}
	if !u.Connected() {
		return nil, user.ErrNoProviderKey
	}

	txResp, err := s.client.GetTransactions(ctx, *u.ProviderKey, s.startDate)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions from provider: %w", err)
	}

	result.TransactionsFound = len(txResp.Data)
	log.Printf("Fetched %d bank transactions for user %d", result.TransactionsFound, userID)

	for _, apiTx := range txResp.Data {
		if err := s.processTransaction(ctx, userID, &apiTx, result); err != nil {
			errMsg := fmt.Sprintf("failed to process transaction %s: %v", apiTx.ID, err)
			result.Errors = append(result.Errors, errMsg)
			log.Printf("Error: %s", errMsg)
		}
	}

	log.Printf("Bank sync completed for user %d: found=%d, created=%d, updated=%d, duplicates=%d, skipped=%d, errors=%d",
		userID, result.TransactionsFound, result.Created, result.Updated, result.FlaggedDuplicate, result.Skipped, len(result.Errors))

	return result, nil
}

// processTransaction stores a single transaction from the API
func (s *SyncService) processTransaction(ctx context.Context, userID int64, apiTx *bankapi.Transaction, result *SyncResult) error {
	amount, err := apiTx.GetAmount()
	if err != nil {
		result.Skipped++
		return fmt.Errorf("failed to parse amount: %w", err)
	}

	txDate, err := apiTx.GetDate()
	if err != nil {
		result.Skipped++
		return fmt.Errorf("failed to parse date: %w", err)
	}
	if txDate == nil {
		result.Skipped++
		return fmt.Errorf("transaction date is required")
	}

	stored, created, err := s.bankTxs.Upsert(ctx, ledger.UpsertBankTransactionParams{
		ID:                 apiTx.ID,
		UserID:             userID,
		Amount:             amount,
		Currency:           apiTx.CurrencyCode,
		Date:               *txDate,
		DescriptionDisplay: apiTx.Description,
		MerchantName:       apiTx.MerchantName,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert transaction: %w", err)
	}

	if !created {
		result.Updated++
		return nil
	}
	result.Created++

	// Provider-level duplicate: same user, amount, date and description under
	// a different ID. Flag the new row so triage and matching ignore it.
	match, err := s.bankTxs.FindExactMatch(ctx, userID, amount, *txDate, apiTx.Description, apiTx.ID)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate transaction: %w", err)
	}
	if match != nil {
		if err := s.bankTxs.FlagDuplicate(ctx, stored.ID, match.ID); err != nil {
			return fmt.Errorf("failed to flag duplicate transaction: %w", err)
		}
		result.FlaggedDuplicate++
	}

	return nil
}

// SyncAllUsers syncs bank transactions for all users with provider keys
func (s *SyncService) SyncAllUsers(ctx context.Context) ([]*SyncResult, error) {
	users, err := s.userRepo.ListUsersWithProviderKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users with provider keys: %w", err)
	}

	var results []*SyncResult
	for _, u := range users {
		result, err := s.SyncUser(ctx, u.ID)
		if err != nil {
			log.Printf("Failed to sync bank transactions for user %d: %v", u.ID, err)
			results = append(results, &SyncResult{
				UserID: u.ID,
				Errors: []string{err.Error()},
			})
			continue
		}
		results = append(results, result)
	}

	return results, nil
}

// ConnectService wires a bank aggregator key to a user account.
type ConnectService struct {
	client   bankapi.ClientInterface
	userRepo user.Repository
	entries  ledger.EntryRepository
	now      func() time.Time
}

// NewConnectService creates a new connect service.
func NewConnectService(client bankapi.ClientInterface, userRepo user.Repository, entries ledger.EntryRepository) *ConnectService {
	return &ConnectService{
		client:   client,
		userRepo: userRepo,
		entries:  entries,
		now:      time.Now,
	}
}

// Connect validates the key against the provider, stores it, and retires the
// user's manual entries that predate bank coverage. Those rows can never gain
// a bank counterpart, so asking the user to review them would be noise.
func (s *ConnectService) Connect(ctx context.Context, userID int64, apiKey string) (*user.User, int64, error) {
	_, status, err := s.client.GetStatusWithCode(ctx, apiKey)
	if err != nil {
		return nil, 0, fmt.Errorf("provider rejected key (status %d): %w", status, err)
	}

	connectedAt := s.now().UTC()
	u, err := s.userRepo.SetProviderKey(ctx, userID, apiKey, connectedAt)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to store provider key: %w", err)
	}
	if u == nil {
		return nil, 0, user.ErrNotFound
	}

	retired, err := s.entries.MarkPreBankEra(ctx, userID, connectedAt)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retire pre-bank entries: %w", err)
	}
	if retired > 0 {
		log.Printf("Retired %d pre-bank entries for user %d", retired, userID)
	}

	return u, retired, nil
}

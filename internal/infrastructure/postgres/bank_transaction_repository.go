package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kasa/internal/domain/ledger"
)

type BankTransactionRepository struct {
	db *DB
}

func NewBankTransactionRepository(db *DB) *BankTransactionRepository {
	return &BankTransactionRepository{db: db}
}

const bankTxColumns = `id, user_id, amount, currency, tx_date, description_display, merchant_name,
	       status, is_duplicate, duplicate_of, created_at, updated_at`

func scanBankTransaction(scanner interface{ Scan(...any) error }) (*ledger.BankTransaction, error) {
	var tx ledger.BankTransaction
	err := scanner.Scan(
		&tx.ID, &tx.UserID, &tx.Amount, &tx.Currency, &tx.Date,
		&tx.DescriptionDisplay, &tx.MerchantName,
		&tx.Status, &tx.IsDuplicate, &tx.DuplicateOf,
		&tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *BankTransactionRepository) GetByID(ctx context.Context, id string) (*ledger.BankTransaction, error) {
	query := `SELECT ` + bankTxColumns + ` FROM bank_transactions WHERE id = $1`

	tx, err := scanBankTransaction(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bank transaction: %w", err)
	}

	return tx, nil
}

func (r *BankTransactionRepository) ListByUserID(ctx context.Context, userID int64, status ledger.BankTransactionStatus, limit, offset int) ([]*ledger.BankTransaction, error) {
	query := `
		SELECT ` + bankTxColumns + `
		FROM bank_transactions
		WHERE user_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY tx_date DESC, id DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.QueryContext(ctx, query, userID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank transactions: %w", err)
	}
	defer rows.Close()

	return collectBankTransactions(rows)
}

func (r *BankTransactionRepository) ListPendingSince(ctx context.Context, userID int64, since time.Time) ([]*ledger.BankTransaction, error) {
	query := `
		SELECT ` + bankTxColumns + `
		FROM bank_transactions
		WHERE user_id = $1
		  AND status = $2
		  AND is_duplicate = FALSE
		  AND tx_date >= $3
		ORDER BY tx_date ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, ledger.BankTxPending, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending bank transactions: %w", err)
	}
	defer rows.Close()

	return collectBankTransactions(rows)
}

// Upsert inserts or refreshes a synced transaction. Provider fields are
// overwritten on conflict; the triage status and duplicate flags are local
// state and survive refreshes.
func (r *BankTransactionRepository) Upsert(ctx context.Context, params ledger.UpsertBankTransactionParams) (*ledger.BankTransaction, bool, error) {
	query := `
		INSERT INTO bank_transactions (id, user_id, amount, currency, tx_date, description_display,
		                               merchant_name, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
		    amount = EXCLUDED.amount,
		    currency = EXCLUDED.currency,
		    tx_date = EXCLUDED.tx_date,
		    description_display = EXCLUDED.description_display,
		    merchant_name = EXCLUDED.merchant_name,
		    updated_at = CURRENT_TIMESTAMP
		RETURNING ` + bankTxColumns + `, (xmax = 0) AS inserted
	`

	var tx ledger.BankTransaction
	var inserted bool
	err := r.db.QueryRowContext(
		ctx, query,
		params.ID, params.UserID, params.Amount, params.Currency, params.Date,
		params.DescriptionDisplay, params.MerchantName, ledger.BankTxPending,
	).Scan(
		&tx.ID, &tx.UserID, &tx.Amount, &tx.Currency, &tx.Date,
		&tx.DescriptionDisplay, &tx.MerchantName,
		&tx.Status, &tx.IsDuplicate, &tx.DuplicateOf,
		&tx.CreatedAt, &tx.UpdatedAt,
		&inserted,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert bank transaction: %w", err)
	}

	return &tx, inserted, nil
}

func (r *BankTransactionRepository) UpdateStatus(ctx context.Context, id string, status ledger.BankTransactionStatus) (*ledger.BankTransaction, error) {
	query := `
		UPDATE bank_transactions
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
		RETURNING ` + bankTxColumns + `
	`

	tx, err := scanBankTransaction(r.db.QueryRowContext(ctx, query, status, id))
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update bank transaction status: %w", err)
	}

	return tx, nil
}

func (r *BankTransactionRepository) FlagDuplicate(ctx context.Context, id, duplicateOf string) error {
	query := `
		UPDATE bank_transactions
		SET is_duplicate = TRUE, duplicate_of = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`

	result, err := r.db.ExecContext(ctx, query, duplicateOf, id)
	if err != nil {
		return fmt.Errorf("failed to flag duplicate bank transaction: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return ledger.ErrBankTransactionNotFound
	}

	return nil
}

func (r *BankTransactionRepository) FindExactMatch(ctx context.Context, userID int64, amount float64, date time.Time, description, excludeID string) (*ledger.BankTransaction, error) {
	query := `
		SELECT ` + bankTxColumns + `
		FROM bank_transactions
		WHERE user_id = $1
		  AND amount = $2
		  AND tx_date::date = $3::date
		  AND description_display = $4
		  AND id <> $5
		  AND is_duplicate = FALSE
		ORDER BY created_at ASC
		LIMIT 1
	`

	tx, err := scanBankTransaction(r.db.QueryRowContext(ctx, query, userID, amount, date, description, excludeID))
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find matching bank transaction: %w", err)
	}

	return tx, nil
}

func collectBankTransactions(rows *sql.Rows) ([]*ledger.BankTransaction, error) {
	var transactions []*ledger.BankTransaction
	for rows.Next() {
		tx, err := scanBankTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bank transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bank transactions: %w", err)
	}

	return transactions, nil
}

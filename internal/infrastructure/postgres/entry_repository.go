package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"kasa/internal/domain/ledger"
)

type EntryRepository struct {
	db *DB
}

func NewEntryRepository(db *DB) *EntryRepository {
	return &EntryRepository{db: db}
}

const entryColumns = `id, user_id, kind, category, description, amount, entry_date, end_date,
	       is_recurring, source_bank_transaction_id, status, duplicate_of_bank_transaction_id,
	       note, created_at, updated_at`

// scanEntry scans one entry row. A NULL or non-finite amount becomes NaN so
// aggregation can skip the row instead of the whole query failing.
func scanEntry(scanner interface{ Scan(...any) error }) (*ledger.Entry, error) {
	var entry ledger.Entry
	var amount sql.NullFloat64
	var endDate sql.NullTime

	err := scanner.Scan(
		&entry.ID, &entry.UserID, &entry.Kind, &entry.Category, &entry.Description,
		&amount, &entry.Date, &endDate,
		&entry.IsRecurring, &entry.SourceBankTransactionID, &entry.Status,
		&entry.DuplicateOfBankTransactionID, &entry.Note,
		&entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if amount.Valid {
		entry.Amount = amount.Float64
	} else {
		entry.Amount = math.NaN()
	}
	if endDate.Valid {
		entry.EndDate = &endDate.Time
	}

	return &entry, nil
}

func (r *EntryRepository) Create(ctx context.Context, params ledger.CreateEntryParams) (*ledger.Entry, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	status := params.Status
	if status == "" {
		status = ledger.StatusUnreviewed
	}

	query := `
		INSERT INTO entries (user_id, kind, category, description, amount, entry_date, end_date,
		                     is_recurring, source_bank_transaction_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + entryColumns + `
	`

	entry, err := scanEntry(r.db.QueryRowContext(
		ctx, query,
		params.UserID, params.Kind, params.Category, params.Description, params.Amount,
		params.Date, params.EndDate, params.IsRecurring, params.SourceBankTransactionID, status,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	return entry, nil
}

func (r *EntryRepository) GetByID(ctx context.Context, id int64) (*ledger.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	return entry, nil
}

func (r *EntryRepository) GetBySourceTransactionID(ctx context.Context, bankTransactionID string) (*ledger.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE source_bank_transaction_id = $1`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, bankTransactionID))
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry by source transaction: %w", err)
	}

	return entry, nil
}

func (r *EntryRepository) ListByKind(ctx context.Context, userID int64, kind ledger.Kind) ([]*ledger.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE user_id = $1 AND kind = $2
		ORDER BY entry_date ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func (r *EntryRepository) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*ledger.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE user_id = $1
		ORDER BY entry_date DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func (r *EntryRepository) ListUnreviewedSince(ctx context.Context, userID int64, since time.Time) ([]*ledger.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE user_id = $1
		  AND status = $2
		  AND source_bank_transaction_id IS NULL
		  AND entry_date >= $3
		ORDER BY entry_date ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, ledger.StatusUnreviewed, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list unreviewed entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func (r *EntryRepository) Update(ctx context.Context, id int64, params ledger.UpdateEntryParams) (*ledger.Entry, error) {
	query := `
		UPDATE entries
		SET category = COALESCE($1, category),
		    description = COALESCE($2, description),
		    amount = COALESCE($3, amount),
		    entry_date = COALESCE($4, entry_date),
		    end_date = CASE WHEN $5 THEN NULL ELSE COALESCE($6, end_date) END,
		    is_recurring = COALESCE($7, is_recurring),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $8
		RETURNING ` + entryColumns + `
	`

	entry, err := scanEntry(r.db.QueryRowContext(
		ctx, query,
		params.Category, params.Description, params.Amount, params.Date,
		params.ClearEnd, params.EndDate, params.IsRecurring, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}

	return entry, nil
}

// UpdateReview applies a reconciliation transition in one statement so the
// status and the duplicate link can never diverge.
func (r *EntryRepository) UpdateReview(ctx context.Context, id int64, params ledger.ReviewParams) (*ledger.Entry, error) {
	query := `
		UPDATE entries
		SET status = $1,
		    duplicate_of_bank_transaction_id = $2,
		    note = COALESCE($3, note),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
		RETURNING ` + entryColumns + `
	`

	entry, err := scanEntry(r.db.QueryRowContext(
		ctx, query,
		params.Status, params.DuplicateOfBankTransactionID, params.Note, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update entry review: %w", err)
	}

	return entry, nil
}

func (r *EntryRepository) MarkPreBankEra(ctx context.Context, userID int64, before time.Time) (int64, error) {
	query := `
		UPDATE entries
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $2
		  AND status = $3
		  AND source_bank_transaction_id IS NULL
		  AND entry_date < $4
	`

	result, err := r.db.ExecContext(ctx, query, ledger.StatusPreBankEra, userID, ledger.StatusUnreviewed, before)
	if err != nil {
		return 0, fmt.Errorf("failed to mark pre-bank entries: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows, nil
}

func (r *EntryRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM entries WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return ledger.ErrEntryNotFound
	}

	return nil
}

func collectEntries(rows *sql.Rows) ([]*ledger.Entry, error) {
	var entries []*ledger.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return entries, nil
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"

	"kasa/internal/domain/user"
	"kasa/internal/infrastructure/crypto"
)

type UserRepository struct {
	db        *DB
	encryptor *crypto.Encryptor
}

// NewUserRepository creates a user repository. Provider keys are encrypted
// at rest with the given encryptor.
func NewUserRepository(db *DB, encryptor *crypto.Encryptor) *UserRepository {
	return &UserRepository{db: db, encryptor: encryptor}
}

const userColumns = `id, email, name, password_hash, provider_key, bank_connected_at, created_at, updated_at`

func (r *UserRepository) scanUser(scanner interface{ Scan(...any) error }) (*user.User, error) {
	var u user.User
	var providerKey sql.NullString
	var connectedAt sql.NullTime

	err := scanner.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash,
		&providerKey, &connectedAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if providerKey.Valid && providerKey.String != "" {
		decrypted, err := r.encryptor.Decrypt(providerKey.String)
		if err != nil {
			// A key that no longer decrypts is unusable; treat the user as
			// disconnected rather than failing every read.
			log.Printf("Warning: failed to decrypt provider key for user %d: %v", u.ID, err)
		} else {
			u.ProviderKey = &decrypted
		}
	}
	if connectedAt.Valid {
		u.BankConnectedAt = &connectedAt.Time
	}

	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
	query := `
		INSERT INTO users (email, name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns + `
	`

	u, err := r.scanUser(r.db.QueryRowContext(ctx, query, params.Email, params.Name, params.PasswordHash))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, user.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := r.scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	u, err := r.scanUser(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, userID int64, params user.UpdateUserParams) (*user.User, error) {
	query := `
		UPDATE users
		SET name = COALESCE($1, name),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
		RETURNING ` + userColumns + `
	`

	u, err := r.scanUser(r.db.QueryRowContext(ctx, query, params.Name, userID))
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return u, nil
}

func (r *UserRepository) SetProviderKey(ctx context.Context, userID int64, key string, connectedAt time.Time) (*user.User, error) {
	encrypted, err := r.encryptor.Encrypt(key)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt provider key: %w", err)
	}

	query := `
		UPDATE users
		SET provider_key = $1,
		    bank_connected_at = COALESCE(bank_connected_at, $2),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
		RETURNING ` + userColumns + `
	`

	u, err := r.scanUser(r.db.QueryRowContext(ctx, query, encrypted, connectedAt, userID))
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set provider key: %w", err)
	}

	return u, nil
}

func (r *UserRepository) ListUsersWithProviderKey(ctx context.Context) ([]*user.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE provider_key IS NOT NULL AND provider_key <> ''
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users with provider keys: %w", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrNoProviderKey = errors.New("user has no bank provider key")
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	// ProviderKey is the decrypted bank aggregator API key. Nil until the
	// user connects a bank.
	ProviderKey *string `json:"-"`
	// BankConnectedAt records when the provider key was first set. Entries
	// dated before this moment predate bank data for the user.
	BankConnectedAt *time.Time `json:"bankConnectedAt,omitempty"`
}

// Connected reports whether the user has a bank aggregator key on file.
func (u *User) Connected() bool {
	return u.ProviderKey != nil && *u.ProviderKey != ""
}

type CreateUserParams struct {
	Email        string
	Name         string
	PasswordHash string
}

type UpdateUserParams struct {
	Name *string
}

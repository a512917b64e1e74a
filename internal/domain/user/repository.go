package user

import (
	"context"
	"time"
)

// Repository defines the interface for user data access
type Repository interface {
	Create(ctx context.Context, params CreateUserParams) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, userID int64, params UpdateUserParams) (*User, error)
	// SetProviderKey stores the bank aggregator key and stamps
	// BankConnectedAt on first connect.
	SetProviderKey(ctx context.Context, userID int64, key string, connectedAt time.Time) (*User, error)
	ListUsersWithProviderKey(ctx context.Context) ([]*User, error)
}

package identity

import "context"

// UserRepository defines persistence for account records.
type UserRepository interface {
	GetByAccountID(ctx context.Context, accountID string) (*User, error)
}

package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines user and wallet ledger persistence operations
type Repository interface {
	// Create inserts the user, or returns ErrDuplicateEmail if the email is taken
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// LockForUpdate acquires a row lock for the rest of the surrounding transaction
	LockForUpdate(ctx context.Context, email string) (*User, error)
	LockForUpdateByID(ctx context.Context, id uuid.UUID) (*User, error)

	UpdateBalance(ctx context.Context, user *User) error
	AppendTransaction(ctx context.Context, tx *Transaction) error

	// ListTransactions returns the ledger newest first
	ListTransactions(ctx context.Context, userID uuid.UUID) ([]*Transaction, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrUserNotFound indicates missing user
type ErrUserNotFound struct {
	Email string
}

func (e ErrUserNotFound) Error() string {
	return "user not found: " + e.Email
}

// Is implements the errors.Is interface for ErrUserNotFound
func (e ErrUserNotFound) Is(target error) bool {
	t, ok := target.(ErrUserNotFound)
	if !ok {
		return false
	}
	if t.Email == "" {
		return true
	}
	return e.Email == t.Email
}

// ErrDuplicateEmail indicates email uniqueness violation
type ErrDuplicateEmail struct {
	Email string
}

func (e ErrDuplicateEmail) Error() string {
	return "user with email already exists: " + e.Email
}

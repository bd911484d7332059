package ledger

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores projected wallet movements. Reads back a user's statement newest first.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*Entry, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ErrEntryNotFound matches any missing entry when TransactionID is uuid.Nil
type ErrEntryNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrEntryNotFound) Error() string {
	return "ledger entry not found: " + e.TransactionID.String()
}

func (e ErrEntryNotFound) Is(target error) bool {
	t, ok := target.(ErrEntryNotFound)
	return ok && sameTransaction(e.TransactionID, t.TransactionID)
}

// ErrDuplicateEntry is returned when a movement was already projected
type ErrDuplicateEntry struct {
	TransactionID uuid.UUID
}

func (e ErrDuplicateEntry) Error() string {
	return "duplicate ledger entry: " + e.TransactionID.String()
}

func (e ErrDuplicateEntry) Is(target error) bool {
	t, ok := target.(ErrDuplicateEntry)
	return ok && sameTransaction(e.TransactionID, t.TransactionID)
}

func sameTransaction(id, want uuid.UUID) bool {
	return want == uuid.Nil || id == want
}

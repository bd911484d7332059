package ledger

import (
	"time"

	"github.com/flight-booking-engine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry is a wallet movement projected into the document store for statements
type Entry struct {
	TransactionID uuid.UUID              `json:"transaction_id"`
	UserID        uuid.UUID              `json:"user_id"`
	UserEmail     string                 `json:"user_email"`
	Type          shared.TransactionType `json:"type"`
	Amount        decimal.Decimal        `json:"amount"`
	BalanceAfter  decimal.Decimal        `json:"balance_after"`
	Description   string                 `json:"description"`
	BookingID     *uuid.UUID             `json:"booking_id,omitempty"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	ProjectedAt   time.Time              `json:"projected_at"`
}

// FromMovement builds a ledger entry from a wallet event payload
func FromMovement(m shared.WalletMovement, correlationID string) *Entry {
	return &Entry{
		TransactionID: m.TransactionID,
		UserID:        m.UserID,
		UserEmail:     m.UserEmail,
		Type:          m.Type,
		Amount:        m.Amount,
		BalanceAfter:  m.BalanceAfter,
		Description:   m.Description,
		BookingID:     m.BookingID,
		CorrelationID: correlationID,
		CreatedAt:     m.CreatedAt,
		ProjectedAt:   time.Now().UTC(),
	}
}

package user

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/flight-booking-engine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrInvalidAmount     = errors.New("amount must be greater than 0 with at most 2 decimal places")
	ErrEmptyName         = errors.New("name cannot be empty")
	ErrInvalidEmail      = errors.New("email address is not valid")
)

// User owns a prepaid wallet. WalletBalance is a projection of the transaction
// ledger: InitialBalance plus credits minus debits. InitialBalance never changes.
type User struct {
	ID             uuid.UUID       `json:"id"`
	Email          string          `json:"email"`
	Name           string          `json:"name"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	WalletBalance  decimal.Decimal `json:"wallet_balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Transaction is one append-only wallet ledger record
type Transaction struct {
	ID          uuid.UUID              `json:"id"`
	UserID      uuid.UUID              `json:"user_id"`
	Type        shared.TransactionType `json:"type"`
	Amount      decimal.Decimal        `json:"amount"`
	Description string                 `json:"description"`
	BookingID   *uuid.UUID             `json:"booking_id,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

// NormalizeEmail lowercases and trims an email used as the user identifier
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser creates a user whose wallet starts at initialBalance
func NewUser(email, name string, initialBalance decimal.Decimal) (*User, error) {
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	if initialBalance.IsNegative() || !initialBalance.Equal(initialBalance.Round(shared.MoneyPlaces)) {
		return nil, ErrInvalidAmount
	}

	now := time.Now().UTC()
	return &User{
		ID:             uuid.New(),
		Email:          email,
		Name:           strings.TrimSpace(name),
		InitialBalance: initialBalance,
		WalletBalance:  initialBalance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Credit increases the balance and returns the matching ledger record
func (u *User) Credit(amount decimal.Decimal, description string, bookingID *uuid.UUID) (*Transaction, error) {
	if !shared.ValidAmount(amount) {
		return nil, ErrInvalidAmount
	}

	u.WalletBalance = u.WalletBalance.Add(amount)
	return u.record(shared.TransactionTypeCredit, amount, description, bookingID), nil
}

// Debit decreases the balance and returns the matching ledger record.
// On failure neither the balance nor the ledger changes.
func (u *User) Debit(amount decimal.Decimal, description string, bookingID *uuid.UUID) (*Transaction, error) {
	if !shared.ValidAmount(amount) {
		return nil, ErrInvalidAmount
	}
	if !u.CanAfford(amount) {
		return nil, ErrInsufficientFunds
	}

	u.WalletBalance = u.WalletBalance.Sub(amount)
	return u.record(shared.TransactionTypeDebit, amount, description, bookingID), nil
}

// CanAfford checks if the wallet covers amount
func (u *User) CanAfford(amount decimal.Decimal) bool {
	return u.WalletBalance.GreaterThanOrEqual(amount)
}

func (u *User) record(t shared.TransactionType, amount decimal.Decimal, description string, bookingID *uuid.UUID) *Transaction {
	now := time.Now().UTC()
	u.UpdatedAt = now
	return &Transaction{
		ID:          uuid.New(),
		UserID:      u.ID,
		Type:        t,
		Amount:      amount,
		Description: description,
		BookingID:   bookingID,
		CreatedAt:   now,
	}
}

// Reconciles reports whether the stored balance equals the replayed ledger.
// txs must be the user's complete transaction list.
func (u *User) Reconciles(txs []*Transaction) bool {
	return ReplayBalance(u.InitialBalance, txs).Equal(u.WalletBalance)
}

// ReplayBalance recomputes a balance from the initial amount and the ledger
func ReplayBalance(initial decimal.Decimal, txs []*Transaction) decimal.Decimal {
	balance := initial
	for _, tx := range txs {
		switch tx.Type {
		case shared.TransactionTypeCredit:
			balance = balance.Add(tx.Amount)
		case shared.TransactionTypeDebit:
			balance = balance.Sub(tx.Amount)
		}
	}
	return balance
}

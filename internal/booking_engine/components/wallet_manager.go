package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flight-booking-engine/internal/booking_engine/service"
	"github.com/flight-booking-engine/internal/domain/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletManagerImpl keeps the balance column and the wallet ledger in step
type WalletManagerImpl struct {
	userRepo user.Repository
	logger   *slog.Logger
}

func NewWalletManager(userRepo user.Repository, logger *slog.Logger) service.WalletManager {
	return &WalletManagerImpl{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (m *WalletManagerImpl) repo(tx pgx.Tx) user.Repository {
	if tx == nil {
		return m.userRepo
	}
	return m.userRepo.WithTx(tx)
}

// GetUser reads the user without locking. A nil tx reads outside any transaction.
func (m *WalletManagerImpl) GetUser(ctx context.Context, tx pgx.Tx, email string) (*user.User, error) {
	return m.lookup("read", email, func() (*user.User, error) {
		return m.repo(tx).GetByEmail(ctx, email)
	})
}

// LockUser loads the user under a row lock held until tx ends
func (m *WalletManagerImpl) LockUser(ctx context.Context, tx pgx.Tx, email string) (*user.User, error) {
	return m.lookup("lock", email, func() (*user.User, error) {
		return m.repo(tx).LockForUpdate(ctx, email)
	})
}

func (m *WalletManagerImpl) LockUserByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*user.User, error) {
	return m.lookup("lock", id.String(), func() (*user.User, error) {
		return m.repo(tx).LockForUpdateByID(ctx, id)
	})
}

func (m *WalletManagerImpl) lookup(op, key string, fn func() (*user.User, error)) (*user.User, error) {
	u, err := fn()
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound{}) {
			m.logger.Warn("User not found", "op", op, "user", key)
			return nil, err
		}
		m.logger.Error("Failed to load user", "op", op, "user", key, "error", err)
		return nil, fmt.Errorf("failed to %s user %s: %w", op, key, err)
	}
	return u, nil
}

// Debit charges the locked user and appends the ledger record
func (m *WalletManagerImpl) Debit(ctx context.Context, tx pgx.Tx, u *user.User, amount decimal.Decimal, description string, bookingID *uuid.UUID) (*user.Transaction, error) {
	record, err := u.Debit(amount, description, bookingID)
	if err != nil {
		m.logger.Warn("Debit rejected", "user_id", u.ID.String(), "amount", amount.String(), "balance", u.WalletBalance.String(), "error", err)
		return nil, err
	}
	return record, m.persist(ctx, tx, u, record)
}

// Credit pays the locked user and appends the ledger record
func (m *WalletManagerImpl) Credit(ctx context.Context, tx pgx.Tx, u *user.User, amount decimal.Decimal, description string, bookingID *uuid.UUID) (*user.Transaction, error) {
	record, err := u.Credit(amount, description, bookingID)
	if err != nil {
		return nil, err
	}
	return record, m.persist(ctx, tx, u, record)
}

func (m *WalletManagerImpl) persist(ctx context.Context, tx pgx.Tx, u *user.User, record *user.Transaction) error {
	repoTx := m.repo(tx)
	if err := repoTx.UpdateBalance(ctx, u); err != nil {
		m.logger.Error("Failed to update wallet balance", "user_id", u.ID.String(), "error", err)
		return fmt.Errorf("failed to update balance of user %s: %w", u.ID.String(), err)
	}
	if err := repoTx.AppendTransaction(ctx, record); err != nil {
		m.logger.Error("Failed to append wallet transaction", "user_id", u.ID.String(), "tx_id", record.ID.String(), "error", err)
		return fmt.Errorf("failed to append wallet transaction %s: %w", record.ID.String(), err)
	}
	m.logger.Info("Wallet updated",
		"user_id", u.ID.String(),
		"type", string(record.Type),
		"amount", record.Amount.String(),
		"balance", u.WalletBalance.String(),
	)
	return nil
}

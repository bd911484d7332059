package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/flight-booking-engine/internal/domain/ledger"
	"github.com/flight-booking-engine/internal/domain/user"
	"github.com/shopspring/decimal"
)

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userRepo       user.Repository
	ledgerRepo     ledger.Repository
	initialBalance decimal.Decimal
	logger         *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(logger *slog.Logger, userRepo user.Repository, ledgerRepo ledger.Repository, initialBalance decimal.Decimal) UserService {
	return &UserServiceImpl{
		userRepo:       userRepo,
		ledgerRepo:     ledgerRepo,
		initialBalance: initialBalance,
		logger:         logger,
	}
}

// CreateOrGetUser registers the email on first sight. A concurrent registration of the
// same email resolves to the row that won.
func (s *UserServiceImpl) CreateOrGetUser(ctx context.Context, email, name string) (*user.User, bool, error) {
	email = user.NormalizeEmail(email)

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, user.ErrUserNotFound{}) {
		return nil, false, err
	}

	u, err := user.NewUser(email, name, s.initialBalance)
	if err != nil {
		return nil, false, err
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		var dup user.ErrDuplicateEmail
		if errors.As(err, &dup) {
			existing, err := s.userRepo.GetByEmail(ctx, email)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	s.logger.Info("User registered",
		"user_id", u.ID.String(),
		"email", u.Email,
		"initial_balance", u.WalletBalance.String(),
	)
	return u, true, nil
}

// GetUser returns ErrUserNotFound if the email is not registered
func (s *UserServiceImpl) GetUser(ctx context.Context, email string) (*user.User, error) {
	return s.userRepo.GetByEmail(ctx, user.NormalizeEmail(email))
}

// ListTransactions returns the wallet ledger newest first
func (s *UserServiceImpl) ListTransactions(ctx context.Context, email string) ([]*user.Transaction, error) {
	u, err := s.GetUser(ctx, email)
	if err != nil {
		return nil, err
	}
	txs, err := s.userRepo.ListTransactions(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if !u.Reconciles(txs) {
		s.logger.Error("Wallet balance diverges from its ledger",
			"user_id", u.ID.String(),
			"initial_balance", u.InitialBalance.String(),
			"wallet_balance", u.WalletBalance.String(),
			"replayed_balance", user.ReplayBalance(u.InitialBalance, txs).String(),
		)
	}
	return txs, nil
}

// GetStatement retrieves a page of the wallet history projected into the document store.
// Returns entries, total count, and any error
func (s *UserServiceImpl) GetStatement(ctx context.Context, email string, page, perPage int) ([]*ledger.Entry, int64, error) {
	u, err := s.GetUser(ctx, email)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage

	entries, err := s.ledgerRepo.GetByUserID(ctx, u.ID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.ledgerRepo.CountByUserID(ctx, u.ID)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flight-booking-engine/internal/domain/shared"
	"github.com/flight-booking-engine/internal/domain/user"
	"github.com/flight-booking-engine/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, name, initial_balance, wallet_balance, created_at, updated_at`

// UserRepository implements the user.Repository interface for PostgreSQL.
// Users and their wallet_transactions rows live in the same database so a
// balance change and its ledger row always commit together.
type UserRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(logger *slog.Logger, db *persistence.PostgresDB) user.Repository {
	return &UserRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx
func (r *UserRepository) WithTx(tx pgx.Tx) user.Repository {
	return &UserRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create inserts a user. Returns ErrDuplicateEmail when the email is already registered.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, email, name, initial_balance, wallet_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.querier.Exec(ctx, query, u.ID, u.Email, u.Name, u.InitialBalance, u.WalletBalance, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return user.ErrDuplicateEmail{Email: u.Email}
		}
		r.logger.Error("Failed to create user", "email", u.Email, "error", err)
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, "get user", email, query, email)
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, "get user", id.String(), query, id)
}

// LockForUpdate obtains a row lock on the user's wallet
func (r *UserRepository) LockForUpdate(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 FOR UPDATE`
	return r.getOne(ctx, "lock user for update", email, query, email)
}

// LockForUpdateByID obtains a row lock on the user's wallet by id
func (r *UserRepository) LockForUpdateByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, "lock user for update", id.String(), query, id)
}

func (r *UserRepository) getOne(ctx context.Context, op, key, query string, arg any) (*user.User, error) {
	var u user.User
	err := r.querier.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.InitialBalance,
		&u.WalletBalance,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound{Email: key}
		}
		r.logger.Error("Failed to "+op, "user", key, "error", err)
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}

	return &u, nil
}

// UpdateBalance writes the wallet balance projection
func (r *UserRepository) UpdateBalance(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users
		SET wallet_balance = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.querier.Exec(ctx, query, u.WalletBalance, u.UpdatedAt, u.ID)
	if err != nil {
		r.logger.Error("Failed to update wallet balance", "user_id", u.ID.String(), "error", err)
		return fmt.Errorf("failed to update wallet balance: %w", err)
	}

	if result.RowsAffected() == 0 {
		return user.ErrUserNotFound{Email: u.Email}
	}

	return nil
}

// AppendTransaction inserts one wallet ledger row
func (r *UserRepository) AppendTransaction(ctx context.Context, tx *user.Transaction) error {
	query := `
		INSERT INTO wallet_transactions (id, user_id, type, amount, description, booking_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.querier.Exec(ctx, query,
		tx.ID,
		tx.UserID,
		string(tx.Type),
		tx.Amount,
		tx.Description,
		tx.BookingID,
		tx.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to append wallet transaction",
			"user_id", tx.UserID.String(),
			"type", string(tx.Type),
			"error", err,
		)
		return fmt.Errorf("failed to append wallet transaction: %w", err)
	}

	return nil
}

// ListTransactions returns a user's wallet ledger, newest first
func (r *UserRepository) ListTransactions(ctx context.Context, userID uuid.UUID) ([]*user.Transaction, error) {
	query := `
		SELECT id, user_id, type, amount, description, booking_id, created_at
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.querier.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list wallet transactions", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]*user.Transaction, 0)
	for rows.Next() {
		var (
			tx     user.Transaction
			txType string
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &txType, &tx.Amount, &tx.Description, &tx.BookingID, &tx.CreatedAt); err != nil {
			r.logger.Error("Failed to scan wallet transaction", "error", err)
			return nil, fmt.Errorf("failed to scan wallet transaction: %w", err)
		}
		tx.Type = shared.TransactionType(txType)
		txs = append(txs, &tx)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over wallet transactions", "error", err)
		return nil, fmt.Errorf("error iterating over wallet transactions: %w", err)
	}

	return txs, nil
}

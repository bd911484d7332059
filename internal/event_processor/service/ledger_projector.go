package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flight-booking-engine/internal/domain/ledger"
)

// LedgerProjectorImpl appends wallet movements to the ledger collection.
// Kafka delivers at least once, so an entry that already exists is a success.
type LedgerProjectorImpl struct {
	ledgerRepo ledger.Repository
	logger     *slog.Logger
}

func NewLedgerProjector(ledgerRepo ledger.Repository, logger *slog.Logger) *LedgerProjectorImpl {
	return &LedgerProjectorImpl{
		ledgerRepo: ledgerRepo,
		logger:     logger,
	}
}

func (p *LedgerProjectorImpl) Project(ctx context.Context, entry *ledger.Entry) error {
	logger := p.logger
	if entry.CorrelationID != "" {
		logger = p.logger.With("correlation_id", entry.CorrelationID)
	}

	existing, err := p.ledgerRepo.GetByTransactionID(ctx, entry.TransactionID)
	if err != nil && !errors.Is(err, ledger.ErrEntryNotFound{}) {
		return fmt.Errorf("failed to check existing ledger entry %s: %w", entry.TransactionID, err)
	}
	if existing != nil {
		logger.Info("Ledger entry already projected", "transaction_id", entry.TransactionID.String())
		return nil
	}

	if err := p.ledgerRepo.Create(ctx, entry); err != nil {
		if errors.Is(err, ledger.ErrDuplicateEntry{}) {
			logger.Info("Ledger entry projected concurrently", "transaction_id", entry.TransactionID.String())
			return nil
		}
		return fmt.Errorf("failed to create ledger entry %s: %w", entry.TransactionID, err)
	}

	logger.Info("Projected wallet movement into ledger",
		"transaction_id", entry.TransactionID.String(),
		"user_id", entry.UserID.String(),
		"type", entry.Type,
		"amount", entry.Amount.String(),
	)
	return nil
}

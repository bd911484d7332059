package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/flight-booking-engine/internal/domain/ledger"
	"github.com/flight-booking-engine/internal/domain/shared"
)

const (
	// LedgerCollectionName is the name of the wallet statement collection in MongoDB
	LedgerCollectionName = "wallet_ledger"
)

// ledgerDocument is the stored shape of a ledger entry. Ids are kept as strings
// and amounts as Decimal128 so the collection stays readable from the mongo shell.
type ledgerDocument struct {
	TransactionID string               `bson:"transaction_id"`
	UserID        string               `bson:"user_id"`
	UserEmail     string               `bson:"user_email"`
	Type          string               `bson:"type"`
	Amount        primitive.Decimal128 `bson:"amount"`
	BalanceAfter  primitive.Decimal128 `bson:"balance_after"`
	Description   string               `bson:"description"`
	BookingID     string               `bson:"booking_id,omitempty"`
	CorrelationID string               `bson:"correlation_id,omitempty"`
	CreatedAt     time.Time            `bson:"created_at"`
	ProjectedAt   time.Time            `bson:"projected_at"`
}

// LedgerRepository implements the ledger.Repository interface for MongoDB
type LedgerRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewLedgerRepository creates a new MongoDB ledger repository
func NewLedgerRepository(logger *slog.Logger, db *mongo.Database) *LedgerRepository {
	return &LedgerRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureIndexes creates the unique transaction index the projection relies on
// for idempotency, plus the statement lookup index.
func (r *LedgerRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(LedgerCollectionName)

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "transaction_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_transaction_id"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("user_statement"),
		},
	})
	if err != nil {
		r.logger.Error("Failed to create ledger indexes", "error", err)
		return fmt.Errorf("failed to create ledger indexes: %w", err)
	}

	return nil
}

// Create stores a new ledger entry.
// Returns ErrDuplicateEntry if an entry with the same transaction ID exists.
func (r *LedgerRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	collection := r.db.Collection(LedgerCollectionName)

	doc, err := toDocument(entry)
	if err != nil {
		return err
	}

	if _, err := collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ledger.ErrDuplicateEntry{TransactionID: entry.TransactionID}
		}
		r.logger.Error("Failed to create ledger entry",
			"transaction_id", entry.TransactionID.String(),
			"error", err)
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}

	return nil
}

// GetByTransactionID retrieves a ledger entry by its transaction ID.
// Returns ErrEntryNotFound if no entry exists for the given transaction.
func (r *LedgerRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*ledger.Entry, error) {
	collection := r.db.Collection(LedgerCollectionName)

	filter := bson.M{"transaction_id": transactionID.String()}
	var doc ledgerDocument
	err := collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ledger.ErrEntryNotFound{TransactionID: transactionID}
		}
		r.logger.Error("Failed to get ledger entry",
			"transaction_id", transactionID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}

	return fromDocument(&doc)
}

// GetByUserID retrieves paginated ledger entries for a user.
// Results are sorted by creation time in descending order (newest first).
func (r *LedgerRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*ledger.Entry, error) {
	collection := r.db.Collection(LedgerCollectionName)

	filter := bson.M{"user_id": userID.String()}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "transaction_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get ledger entries",
			"user_id", userID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []ledgerDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode ledger entries",
			"user_id", userID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode ledger entries: %w", err)
	}

	entries := make([]*ledger.Entry, 0, len(docs))
	for i := range docs {
		entry, err := fromDocument(&docs[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// CountByUserID counts the total number of ledger entries for a user
func (r *LedgerRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	collection := r.db.Collection(LedgerCollectionName)

	filter := bson.M{"user_id": userID.String()}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count ledger entries",
			"user_id", userID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	return count, nil
}

func toDocument(entry *ledger.Entry) (*ledgerDocument, error) {
	amount, err := primitive.ParseDecimal128(entry.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("invalid ledger amount: %w", err)
	}
	balance, err := primitive.ParseDecimal128(entry.BalanceAfter.String())
	if err != nil {
		return nil, fmt.Errorf("invalid ledger balance: %w", err)
	}

	doc := &ledgerDocument{
		TransactionID: entry.TransactionID.String(),
		UserID:        entry.UserID.String(),
		UserEmail:     entry.UserEmail,
		Type:          string(entry.Type),
		Amount:        amount,
		BalanceAfter:  balance,
		Description:   entry.Description,
		CorrelationID: entry.CorrelationID,
		CreatedAt:     entry.CreatedAt,
		ProjectedAt:   entry.ProjectedAt,
	}
	if entry.BookingID != nil {
		doc.BookingID = entry.BookingID.String()
	}
	return doc, nil
}

func fromDocument(doc *ledgerDocument) (*ledger.Entry, error) {
	transactionID, err := uuid.Parse(doc.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction_id %q: %w", doc.TransactionID, err)
	}
	userID, err := uuid.Parse(doc.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user_id %q: %w", doc.UserID, err)
	}
	amount, err := decimal.NewFromString(doc.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	balance, err := decimal.NewFromString(doc.BalanceAfter.String())
	if err != nil {
		return nil, fmt.Errorf("invalid balance_after: %w", err)
	}

	entry := &ledger.Entry{
		TransactionID: transactionID,
		UserID:        userID,
		UserEmail:     doc.UserEmail,
		Type:          shared.TransactionType(doc.Type),
		Amount:        amount,
		BalanceAfter:  balance,
		Description:   doc.Description,
		CorrelationID: doc.CorrelationID,
		CreatedAt:     doc.CreatedAt,
		ProjectedAt:   doc.ProjectedAt,
	}
	if doc.BookingID != "" {
		bookingID, err := uuid.Parse(doc.BookingID)
		if err != nil {
			return nil, fmt.Errorf("invalid booking_id %q: %w", doc.BookingID, err)
		}
		entry.BookingID = &bookingID
	}
	return entry, nil
}

var _ ledger.Repository = (*LedgerRepository)(nil)

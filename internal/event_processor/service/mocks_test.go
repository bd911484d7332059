package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/flight-booking-engine/internal/domain/ledger"
	"github.com/flight-booking-engine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProcessingService mocks the ProcessingService interface
type MockProcessingService struct {
	mock.Mock
}

func (m *MockProcessingService) ProcessEvent(ctx context.Context, event *shared.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockLedgerProjector struct {
	mock.Mock
}

func (m *MockLedgerProjector) Project(ctx context.Context, entry *ledger.Entry) error {
	return m.Called(ctx, entry).Error(0)
}

type MockBookingNotifier struct {
	mock.Mock
}

func (m *MockBookingNotifier) NotifyBooking(ctx context.Context, eventType shared.EventType, notice shared.BookingNotice) error {
	return m.Called(ctx, eventType, notice).Error(0)
}

// MockLedgerRepo mocks ledger.Repository
type MockLedgerRepo struct {
	mock.Mock
}

func (m *MockLedgerRepo) Create(ctx context.Context, entry *ledger.Entry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockLedgerRepo) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*ledger.Entry, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepo) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*ledger.Entry, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepo) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

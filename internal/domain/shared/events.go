package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownEventType = errors.New("unknown event type")
	ErrEmptyPayload     = errors.New("event payload is empty")
)

// EventType names a domain event published through the outbox
type EventType string

const (
	EventBookingConfirmed EventType = "booking.confirmed"
	EventBookingCancelled EventType = "booking.cancelled"
	EventWalletCredited   EventType = "wallet.credited"
	EventWalletDebited    EventType = "wallet.debited"
)

// Valid reports whether t is one of the published event types
func (t EventType) Valid() bool {
	switch t {
	case EventBookingConfirmed, EventBookingCancelled, EventWalletCredited, EventWalletDebited:
		return true
	}
	return false
}

// IsWallet reports whether the event describes a wallet movement
func (t EventType) IsWallet() bool {
	return t == EventWalletCredited || t == EventWalletDebited
}

// Event is the envelope written to the outbox and carried on Kafka
type Event struct {
	EventID       uuid.UUID       `json:"event_id"`
	Type          EventType       `json:"type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEvent wraps payload into an envelope with a fresh event id
func NewEvent(eventType EventType, aggregateID uuid.UUID, correlationID string, payload any) (*Event, error) {
	if !eventType.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, eventType)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return &Event{
		EventID:       uuid.New(),
		Type:          eventType,
		AggregateID:   aggregateID,
		CorrelationID: correlationID,
		OccurredAt:    time.Now().UTC(),
		Payload:       raw,
	}, nil
}

// DecodeEvent parses and sanity-checks an envelope read from Kafka
func DecodeEvent(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if !e.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, e.Type)
	}
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return nil, ErrEmptyPayload
	}
	return &e, nil
}

// WalletMovement is the payload of wallet.credited and wallet.debited
type WalletMovement struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	UserID        uuid.UUID       `json:"user_id"`
	UserEmail     string          `json:"user_email"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Description   string          `json:"description"`
	BookingID     *uuid.UUID      `json:"booking_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// BookingNotice is the payload of booking.confirmed and booking.cancelled
type BookingNotice struct {
	BookingID      uuid.UUID       `json:"booking_id"`
	TicketNumber   string          `json:"ticket_number"`
	Status         string          `json:"status"`
	UserEmail      string          `json:"user_email"`
	PassengerName  string          `json:"passenger_name"`
	PassengerEmail string          `json:"passenger_email"`
	Airline        string          `json:"airline"`
	FlightNumber   string          `json:"flight_number"`
	OriginCode     string          `json:"origin_code"`
	DestCode       string          `json:"destination_code"`
	DepartureTime  time.Time       `json:"departure_time"`
	Price          decimal.Decimal `json:"price"`
}

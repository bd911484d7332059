package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/flight-booking-engine/internal/domain/shared"
	"github.com/google/uuid"
)

// Message stores a domain event until the poller has published it
type Message struct {
	ID            int64               `json:"id"`
	EventID       uuid.UUID           `json:"event_id"`
	AggregateID   uuid.UUID           `json:"aggregate_id"`
	EventType     shared.EventType    `json:"event_type"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

// NewMessage serializes the full event envelope as the message payload
func NewMessage(event *shared.Event) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	return &Message{
		EventID:     event.EventID,
		AggregateID: event.AggregateID,
		EventType:   event.Type,
		Payload:     payload,
		Status:      shared.OutboxStatusPending,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// Event decodes the stored envelope
func (m *Message) Event() (*shared.Event, error) {
	return shared.DecodeEvent(m.Payload)
}

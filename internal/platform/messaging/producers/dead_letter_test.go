package producers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDLQProducer_PublishToDLQ(t *testing.T) {
	logger := newTestLogger()
	ctx := context.Background()

	t.Run("SuccessfulPublishToDLQ", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &DLQProducer{logger: logger, writer: mockWriter, dlqTopic: "booking_events_dlq"}

		key := "6a3c9e6e-0a51-4d7c-a8a4-1d5b0f6c2e11"
		original := []byte(`{"event_type":"wallet.teleported"}`)
		reason := "unknown event type"

		mockWriter.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			if len(msgs) != 1 {
				return false
			}
			msg := msgs[0]
			var payload map[string]string
			if err := json.Unmarshal(msg.Value, &payload); err != nil {
				return false
			}
			return string(msg.Key) == key &&
				len(msg.Headers) == 1 && string(msg.Headers[0].Value) == reason &&
				payload["original_value"] == string(original) &&
				payload["dlq_reason"] == reason &&
				payload["timestamp"] != ""
		})).Return(nil).Once()

		require.NoError(t, producer.PublishToDLQ(ctx, key, original, reason))
		mockWriter.AssertExpectations(t)
	})

	t.Run("WriterError", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &DLQProducer{logger: logger, writer: mockWriter, dlqTopic: "booking_events_dlq"}
		writerErr := errors.New("broker unavailable")

		mockWriter.On("WriteMessages", ctx, mock.AnythingOfType("[]kafka.Message")).Return(writerErr).Once()

		err := producer.PublishToDLQ(ctx, "k", []byte("v"), "r")
		assert.ErrorIs(t, err, writerErr)
		mockWriter.AssertExpectations(t)
	})

	t.Run("DisabledProducer", func(t *testing.T) {
		var producer *DLQProducer
		assert.ErrorIs(t, producer.PublishToDLQ(ctx, "k", []byte("v"), "r"), ErrDLQDisabled)
		assert.NoError(t, producer.Close())
	})
}

func TestDLQProducer_Close(t *testing.T) {
	mockWriter := new(MockKafkaWriter)
	producer := &DLQProducer{logger: newTestLogger(), writer: mockWriter, dlqTopic: "booking_events_dlq"}
	closeErr := errors.New("close failed")

	mockWriter.On("Close").Return(closeErr).Once()

	err := producer.Close()
	assert.ErrorIs(t, err, closeErr)
	mockWriter.AssertExpectations(t)
}

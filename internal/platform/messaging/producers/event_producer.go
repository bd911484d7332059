package producers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flight-booking-engine/internal/config"
	"github.com/segmentio/kafka-go"
)

// EventProducer writes outbox events to the booking topic. Writes are
// synchronous so the outbox row is only marked processed after the broker acked.
type EventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewEventProducer ensures the booking topic exists and opens a writer for it
func NewEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*EventProducer, error) {
	if cfg.BookingTopic == "" {
		return nil, fmt.Errorf("kafka booking topic is not configured")
	}

	conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for event producer: %w", err)
	}
	defer conn.Close()

	if err := ensureTopic(conn, cfg.BookingTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure booking topic %s exists: %w", cfg.BookingTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.BookingTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return newEventProducer(logger, writer, cfg.BookingTopic), nil
}

func newEventProducer(logger *slog.Logger, writer KafkaWriter, topic string) *EventProducer {
	return &EventProducer{
		logger: logger,
		writer: writer,
		topic:  topic,
	}
}

// Publish writes one message. The hash balancer keeps every event of an
// aggregate on the same partition, so consumers see them in commit order.
func (p *EventProducer) Publish(ctx context.Context, key string, value []byte, headers map[string]string) error {
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
	}
	for k, v := range headers {
		msg.Headers = append(msg.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish message to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published event", "topic", p.topic, "key", key)
	return nil
}

func (p *EventProducer) Close() error {
	p.logger.Info("Closing Kafka event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}

var _ MessagePublisher = (*EventProducer)(nil)

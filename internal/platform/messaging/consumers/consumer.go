package consumers

import (
	"context"
	"log/slog"
	"time"

	"github.com/flight-booking-engine/internal/config"
	"github.com/segmentio/kafka-go"
)

// MessageHandler processes one message. An error makes the consumer retry the same
// message with backoff; later offsets are not read until it succeeds.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Consumer defines the message queue consumer interface
type Consumer interface {
	Subscribe(ctx context.Context, handler MessageHandler) error
	Close() error
}

// KafkaReader wraps kafka.Reader methods for testing
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var (
	fetchRetryDelay = time.Second

	handlerRetryBase = 200 * time.Millisecond
	handlerRetryMax  = 30 * time.Second
)

// KafkaConsumer implements Consumer using a Kafka consumer group
type KafkaConsumer struct {
	reader  KafkaReader
	topic   string
	groupID string
	logger  *slog.Logger
	done    chan struct{}
}

func NewKafkaConsumer(logger *slog.Logger, cfg *config.KafkaConfig) *KafkaConsumer {
	return newKafkaConsumer(logger, kafka.NewReader(kafka.ReaderConfig{
		Brokers:     []string{cfg.Brokers},
		Topic:       cfg.BookingTopic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		StartOffset: kafka.FirstOffset,
	}), cfg.BookingTopic, cfg.ConsumerGroup)
}

func newKafkaConsumer(logger *slog.Logger, reader KafkaReader, topic, groupID string) *KafkaConsumer {
	return &KafkaConsumer{
		reader:  reader,
		topic:   topic,
		groupID: groupID,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Subscribe starts the fetch loop in the background and returns immediately.
// The loop stops when ctx is cancelled; Done is closed once it has exited.
func (c *KafkaConsumer) Subscribe(ctx context.Context, handler MessageHandler) error {
	c.logger.Info("Subscribed to Kafka topic",
		"topic", c.topic,
		"group_id", c.groupID,
	)

	go func() {
		defer close(c.done)
		for {
			if ctx.Err() != nil {
				c.logger.Info("Context canceled, stopping consumer", "topic", c.topic, "group_id", c.groupID)
				return
			}

			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					c.logger.Info("Context canceled, stopping consumer", "topic", c.topic, "group_id", c.groupID)
					return
				}
				c.logger.Error("Failed to fetch message from Kafka",
					"topic", c.topic,
					"group_id", c.groupID,
					"error", err,
				)
				select {
				case <-ctx.Done():
				case <-time.After(fetchRetryDelay):
				}
				continue
			}

			c.logger.Debug("Received message from Kafka",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"key", string(msg.Key),
			)

			if !c.handle(ctx, handler, msg) {
				c.logger.Info("Context canceled before message was handled, offset left uncommitted",
					"topic", msg.Topic,
					"partition", msg.Partition,
					"offset", msg.Offset,
				)
				return
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error("Failed to commit message after successful processing",
					"topic", msg.Topic,
					"partition", msg.Partition,
					"offset", msg.Offset,
					"error", err,
				)
			}
		}
	}()

	return nil
}

// handle runs handler until it succeeds and reports false if ctx ended first.
// A skipped message would be committed past by the next successful offset.
func (c *KafkaConsumer) handle(ctx context.Context, handler MessageHandler, msg kafka.Message) bool {
	delay := handlerRetryBase
	for attempt := 1; ; attempt++ {
		err := handler(ctx, msg.Key, msg.Value)
		if err == nil {
			return true
		}
		c.logger.Error("Failed to process message, retrying",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
			"attempt", attempt,
			"retry_in", delay.String(),
			"error", err,
		)

		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}
		delay = min(delay*2, handlerRetryMax)
	}
}

// Done is closed after the fetch loop exits
func (c *KafkaConsumer) Done() <-chan struct{} {
	return c.done
}

func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}

var _ Consumer = (*KafkaConsumer)(nil)

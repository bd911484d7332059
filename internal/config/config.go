// Package config provides configuration structures and validation for the booking services.
// Both binaries share one Config; each section maps to a subsystem (HTTP server, Postgres,
// MongoDB, Redis, Kafka, outbox, worker pool, booking rules and the repricing job).
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds the complete application configuration.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Redis       RedisConfig
	Outbox      OutboxConfig
	WorkerPool  WorkerPoolConfig
	Booking     BookingConfig
	Repricer    RepricerConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Brokers           string
	BookingTopic      string // domain events published from the outbox
	NumPartitions     int
	ReplicationFactor int
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	DLQTopic          string
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// RedisConfig contains Redis configuration for the flight cache and request guards
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	FlightCacheTTL time.Duration
	IdempotencyTTL time.Duration
}

// OutboxConfig contains outbox pattern configuration
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int
}

// BookingConfig holds the business rules of the booking engine.
type BookingConfig struct {
	InitialWalletBalance decimal.Decimal
	SurgeWindow          time.Duration
	AttemptRetention     time.Duration
	SurgeThreshold       int
	SurgeMultiplier      decimal.Decimal
	SyntheticSeats       int
	SearchResultSize     int
	MinBasePrice         decimal.Decimal
	MaxBasePrice         decimal.Decimal
}

// RepricerConfig configures the periodic price recompute job.
type RepricerConfig struct {
	Schedule  string // robfig/cron spec, e.g. "@every 1m"
	BatchSize int
}

// validate performs validation of all configuration values and reports every violation at once
func (c *Config) validate() error {
	var validationErrors []string

	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.BookingTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_BOOKING_TOPIC is required")
	}
	if c.Kafka.ConsumerGroup == "" {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
	}
	if c.Kafka.MinBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
	}
	if c.Kafka.MaxBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
	}
	if c.Kafka.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	}

	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}

	if c.Redis.Addr == "" {
		validationErrors = append(validationErrors, "REDIS_ADDR is required")
	}
	if c.Redis.FlightCacheTTL <= 0 {
		validationErrors = append(validationErrors, "REDIS_FLIGHT_CACHE_TTL must be greater than 0")
	}
	if c.Redis.IdempotencyTTL <= 0 {
		validationErrors = append(validationErrors, "REDIS_IDEMPOTENCY_TTL must be greater than 0")
	}

	if c.Outbox.PollingInterval <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_POLLING_INTERVAL must be greater than 0")
	}
	if c.Outbox.BatchSize <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_BATCH_SIZE must be greater than 0")
	}
	if c.Outbox.MaxRetryAttempts <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_MAX_RETRY_ATTEMPTS must be greater than 0")
	}

	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	if c.Booking.InitialWalletBalance.IsNegative() {
		validationErrors = append(validationErrors, "BOOKING_INITIAL_WALLET_BALANCE must not be negative")
	}
	if c.Booking.SurgeWindow <= 0 {
		validationErrors = append(validationErrors, "BOOKING_SURGE_WINDOW must be greater than 0")
	}
	if c.Booking.AttemptRetention < c.Booking.SurgeWindow {
		validationErrors = append(validationErrors, "BOOKING_ATTEMPT_RETENTION must not be shorter than BOOKING_SURGE_WINDOW")
	}
	if c.Booking.SurgeThreshold <= 0 {
		validationErrors = append(validationErrors, "BOOKING_SURGE_THRESHOLD must be greater than 0")
	}
	if !c.Booking.SurgeMultiplier.IsPositive() {
		validationErrors = append(validationErrors, "BOOKING_SURGE_MULTIPLIER must be greater than 0")
	}
	if c.Booking.SyntheticSeats <= 0 {
		validationErrors = append(validationErrors, "BOOKING_SYNTHETIC_SEATS must be greater than 0")
	}
	if c.Booking.SearchResultSize <= 0 {
		validationErrors = append(validationErrors, "BOOKING_SEARCH_RESULT_SIZE must be greater than 0")
	}
	if c.Booking.MinBasePrice.GreaterThan(c.Booking.MaxBasePrice) {
		validationErrors = append(validationErrors, "BOOKING_MIN_BASE_PRICE must not exceed BOOKING_MAX_BASE_PRICE")
	}

	if c.Repricer.Schedule == "" {
		validationErrors = append(validationErrors, "REPRICER_SCHEDULE is required")
	}
	if c.Repricer.BatchSize <= 0 {
		validationErrors = append(validationErrors, "REPRICER_BATCH_SIZE must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/flight-booking-engine/internal/booking_engine/components"
	"github.com/flight-booking-engine/internal/config"
	"github.com/flight-booking-engine/internal/data/mongo"
	"github.com/flight-booking-engine/internal/data/postgres"
	"github.com/flight-booking-engine/internal/data/redis"
	"github.com/flight-booking-engine/internal/event_processor"
	"github.com/flight-booking-engine/internal/event_processor/consumer"
	"github.com/flight-booking-engine/internal/event_processor/notifier"
	"github.com/flight-booking-engine/internal/event_processor/outbox_poller"
	"github.com/flight-booking-engine/internal/event_processor/repricer"
	"github.com/flight-booking-engine/internal/event_processor/service"
	"github.com/flight-booking-engine/internal/logger"
	"github.com/flight-booking-engine/internal/platform/health"
	"github.com/flight-booking-engine/internal/platform/messaging/consumers"
	"github.com/flight-booking-engine/internal/platform/messaging/producers"
	"github.com/flight-booking-engine/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("event_processor")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	log.Info("Starting Event Processor",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	redisClient, err := persistence.NewRedis(appCtx, log, &cfg.Redis)
	if err != nil {
		log.Error("Failed to initialize Redis", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	flightRepo := postgres.NewFlightRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	ledgerRepo := mongo.NewLedgerRepository(log, mongoDB.Database())
	if err := ledgerRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to ensure ledger indexes", "error", err)
		os.Exit(1)
	}
	flightCache := redis.NewFlightCache(log, redisClient.Client(), cfg.Redis.FlightCacheTTL)

	eventProducer, err := producers.NewEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize Kafka event producer", "error", err)
		os.Exit(1)
	}

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// A nil *DLQProducer must not reach the handler as a non-nil interface
	var deadLetters producers.DeadLetterPublisher
	if dlqProducer != nil {
		deadLetters = dlqProducer
	}

	kafkaConsumer := consumers.NewKafkaConsumer(log, &cfg.Kafka)

	baseService := service.NewEventProcessingService(
		service.NewLedgerProjector(ledgerRepo, log.With("component", "ledger_projector")),
		notifier.NewLogNotifier(log.With("component", "notifier")),
		log,
	)
	processingService, err := service.NewWorkerPoolProcessingService(baseService, service.WorkerPoolConfig{
		Size: cfg.WorkerPool.Size,
	}, log)
	if err != nil {
		log.Error("Failed to initialize worker pool", "error", err)
		os.Exit(1)
	}

	bookingEventHandler := consumer.NewBookingEventHandler(log, processingService, deadLetters)

	kafkaPublisher := outbox_poller.NewKafkaEventPublisher(outboxRepo, eventProducer, log)
	poller := outbox_poller.NewPoller(&cfg.Outbox, outboxRepo, kafkaPublisher, log)

	repricingService := components.CreateRepricingService(postgresDB, flightRepo, flightCache, log, cfg)
	priceJob := repricer.NewRepricer(&cfg.Repricer, repricingService, log.With("component", "repricer"))

	statusServer := event_processor.NewStatusServer(log, cfg, health.NewChecker(cfg.Application.Name, map[string]health.Pinger{
		"postgres": postgresDB,
		"mongodb":  mongoDB,
		"redis":    redisClient,
	}))

	errChan := make(chan error, 3)

	var wg sync.WaitGroup

	// Subscribe returns once the read loop is running
	log.Info("Starting Kafka consumer",
		"topic", cfg.Kafka.BookingTopic,
		"group", cfg.Kafka.ConsumerGroup,
	)
	if err := kafkaConsumer.Subscribe(appCtx, bookingEventHandler.HandleMessage); err != nil {
		log.Error("Failed to start Kafka consumer", "error", err)
		os.Exit(1)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Outbox Poller",
			"interval", cfg.Outbox.PollingInterval.String(),
			"batch_size", cfg.Outbox.BatchSize,
		)
		poller.Start(appCtx)
	}()

	if err := priceJob.Start(appCtx); err != nil {
		log.Error("Failed to start repricer", "error", err)
		os.Exit(1)
	}

	go func() {
		log.Info("Starting status server", "port", cfg.Server.Port)
		if err := statusServer.Start(); err != nil {
			errChan <- fmt.Errorf("status server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case <-kafkaConsumer.Done():
		log.Warn("Kafka consumer stopped unexpectedly")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	if err = priceJob.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping repricer", "error", err)
	}

	log.Info("Waiting for services to stop...")
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		<-kafkaConsumer.Done()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	log.Info("Shutting down worker pool", "running_workers", processingService.Running())
	processingService.Shutdown()

	if err = statusServer.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping status server", "error", err)
	}

	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	if err = eventProducer.Close(); err != nil {
		log.Error("Error closing Kafka event producer", "error", err)
	}

	if dlqProducer != nil {
		if err = dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}

	postgresDB.Close()

	if err = redisClient.Close(); err != nil {
		log.Error("Error closing Redis client", "error", err)
	}

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serviceErr != nil {
		log.Error("Event Processor shutdown with errors", "error", serviceErr)
	}
	if err != nil {
		log.Error("Event Processor shutdown completed with errors")
	} else {
		log.Info("Event Processor shutdown completed successfully")
	}
}

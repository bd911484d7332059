package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/flight-booking-engine/internal/api_gateway"
	"github.com/flight-booking-engine/internal/api_gateway/service"
	"github.com/flight-booking-engine/internal/booking_engine/components"
	"github.com/flight-booking-engine/internal/config"
	"github.com/flight-booking-engine/internal/data/mongo"
	"github.com/flight-booking-engine/internal/data/postgres"
	"github.com/flight-booking-engine/internal/data/redis"
	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/flight-booking-engine/internal/logger"
	"github.com/flight-booking-engine/internal/platform/health"
	"github.com/flight-booking-engine/internal/platform/persistence"
	"github.com/flight-booking-engine/internal/ticket"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	log.Info("Starting API Gateway",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	if err := persistence.RunMigrations(log, cfg.Postgres.URL, cfg.Postgres.MigrationsPath); err != nil {
		log.Error("Failed to apply database migrations", "error", err)
		os.Exit(1)
	}

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
	userRepo := postgres.NewUserRepository(log, postgresDB)
	bookingRepo := postgres.NewBookingRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	ledgerRepo := mongo.NewLedgerRepository(log, mongoDB.Database())
	if err := ledgerRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to ensure ledger indexes", "error", err)
		os.Exit(1)
	}

	flightCache := redis.NewFlightCache(log, redisClient.Client(), cfg.Redis.FlightCacheTTL)
	guard := redis.NewIdempotencyGuard(log, redisClient.Client(), cfg.Redis.IdempotencyTTL)

	// Initialize services
	bookingService := components.CreateBookingService(
		postgresDB,
		components.Repositories{
			Flights:  flightRepo,
			Users:    userRepo,
			Bookings: bookingRepo,
			Outbox:   outboxRepo,
		},
		flightCache,
		log,
		cfg,
	)
	flightService := service.NewFlightService(log, flightRepo, flightCache, cfg.Booking.SearchResultSize, flight.PriceBounds{
		Min: cfg.Booking.MinBasePrice,
		Max: cfg.Booking.MaxBasePrice,
	})
	userService := service.NewUserService(log, userRepo, ledgerRepo, cfg.Booking.InitialWalletBalance)
	queryService := service.NewBookingQueryService(log, bookingRepo, flightService, ticket.NewRenderer())

	checker := health.NewChecker(cfg.Application.Name, map[string]health.Pinger{
		"postgres": postgresDB,
		"mongodb":  mongoDB,
		"redis":    redisClient,
	})

	server := api_gateway.NewServer(log, cfg, api_gateway.Services{
		Flights:  flightService,
		Users:    userService,
		Queries:  queryService,
		Bookings: bookingService,
		Guard:    guard,
		Health:   checker,
	})
	log.Info("REST server initialized")

	errChan := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// Stop accepting requests before the pools they use go away
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	postgresDB.Close()

	if err = redisClient.Close(); err != nil {
		log.Error("Error closing Redis client", "error", err)
	}

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}

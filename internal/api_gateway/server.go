package api_gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/flight-booking-engine/internal/api_gateway/handler"
	"github.com/flight-booking-engine/internal/api_gateway/service"
	bookingsvc "github.com/flight-booking-engine/internal/booking_engine/service"
	"github.com/flight-booking-engine/internal/config"
	"github.com/flight-booking-engine/internal/platform/health"
	"github.com/gin-gonic/gin"
)

// Services bundles what the HTTP layer depends on.
// Guard is optional; without it duplicate keys are resolved by the database alone.
// Health defaults to a checker with no dependencies.
type Services struct {
	Flights  service.FlightService
	Users    service.UserService
	Queries  service.BookingQueryService
	Bookings bookingsvc.BookingService
	Guard    handler.IdempotencyGuard
	Health   *health.Checker
}

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger // For structured logging
	httpServer *http.Server // Underlying HTTP server
	httpRouter *gin.Engine  // Gin router instance
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(log *slog.Logger, cfg *config.Config, svc Services) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	flightHandler := handler.NewFlightHandler(log, svc.Flights, svc.Bookings)
	bookingHandler := handler.NewBookingHandler(log, svc.Bookings, svc.Queries, svc.Guard)
	userHandler := handler.NewUserHandler(log, svc.Users, svc.Bookings)

	checker := svc.Health
	if checker == nil {
		checker = health.NewChecker(cfg.Application.Name, nil)
	}

	setupRouter(log, httpRouter, flightHandler, bookingHandler, userHandler, checker)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Handler exposes the configured router
func (s *Server) Handler() http.Handler {
	return s.httpRouter
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server, bounded by ctx
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}

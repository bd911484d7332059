package event_processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/flight-booking-engine/internal/config"
	"github.com/flight-booking-engine/internal/platform/health"
	"github.com/flight-booking-engine/internal/platform/metrics"
	"github.com/gin-gonic/gin"
)

// StatusServer exposes liveness and Prometheus metrics for the background workers
type StatusServer struct {
	logger     *slog.Logger
	httpServer *http.Server
	router     *gin.Engine
}

func NewStatusServer(log *slog.Logger, cfg *config.Config, checker *health.Checker) *StatusServer {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/health", checker.Handler())

	return &StatusServer{
		logger: log,
		router: router,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}
}

func (s *StatusServer) Handler() http.Handler {
	return s.router
}

func (s *StatusServer) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start status server: %w", err)
	}
	return nil
}

func (s *StatusServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping status server")
	return s.httpServer.Shutdown(ctx)
}

package api_gateway

import (
	"log/slog"

	"github.com/flight-booking-engine/internal/api_gateway/handler"
	"github.com/flight-booking-engine/internal/api_gateway/middleware"
	"github.com/flight-booking-engine/internal/platform/health"
	"github.com/flight-booking-engine/internal/platform/metrics"
	"github.com/gin-gonic/gin"
)

// probe paths are served without access logs
var probePaths = []string{"/health", "/metrics"}

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	flightHandler *handler.FlightHandler,
	bookingHandler *handler.BookingHandler,
	userHandler *handler.UserHandler,
	checker *health.Checker,
) {
	// CorrelationID runs first so recovery and access logs carry the id
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger, probePaths...))
	r.Use(middleware.Metrics())

	api := r.Group("/api")
	{
		flights := api.Group("/flights")
		{
			flights.GET("/search", flightHandler.Search)
			flights.GET("/available-routes", flightHandler.AvailableRoutes)
			flights.GET("/:id", flightHandler.GetByID)
			flights.POST("/:id/attempt", flightHandler.RecordAttempt)
		}

		bookings := api.Group("/bookings")
		{
			bookings.POST("", bookingHandler.Create)
			bookings.GET("/user/:email", bookingHandler.ListByUser)
			bookings.GET("/:id", bookingHandler.GetByID)
			bookings.PUT("/:id/cancel", bookingHandler.Cancel)
			bookings.GET("/:id/ticket", bookingHandler.Ticket)
		}

		users := api.Group("/users")
		{
			users.POST("", userHandler.CreateOrGet)
			users.GET("/:email/wallet", userHandler.Wallet)
			users.POST("/:email/wallet/add", userHandler.AddFunds)
			users.GET("/:email/transactions", userHandler.Transactions)
			users.GET("/:email/statement", userHandler.Statement)
		}
	}

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.GET("/health", checker.Handler())

	r.NoRoute(func(c *gin.Context) {
		handler.RespondNotFound(c, "")
	})
}

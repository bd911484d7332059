package components

import (
	"log/slog"

	"github.com/flight-booking-engine/internal/booking_engine/service"
	"github.com/flight-booking-engine/internal/config"
	"github.com/flight-booking-engine/internal/domain/booking"
	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/flight-booking-engine/internal/domain/outbox"
	"github.com/flight-booking-engine/internal/domain/user"
	"github.com/flight-booking-engine/internal/platform/persistence"
)

// Repositories groups the stores the booking workflows write to
type Repositories struct {
	Flights  flight.Repository
	Users    user.Repository
	Bookings booking.Repository
	Outbox   outbox.Repository
}

// CreateBookingService creates a BookingService with all its dependencies.
// cache may be nil when no flight cache is configured.
func CreateBookingService(
	txRunner persistence.TxRunner,
	repos Repositories,
	cache service.FlightCacheInvalidator,
	logger *slog.Logger,
	cfg *config.Config,
) service.BookingService {
	inventory := NewInventoryManager(repos.Flights, logger.With("component", "inventory"))
	pricing := NewPricingManager(repos.Flights, PricingPolicyFromConfig(cfg.Booking), logger.With("component", "pricing"))
	wallet := NewWalletManager(repos.Users, logger.With("component", "wallet"))
	bookings := NewBookingManager(repos.Bookings, booking.NewTicketNumberGenerator(), logger.With("component", "bookings"))
	outboxManager := NewOutboxManager(repos.Outbox, logger.With("component", "outbox"))

	logger.Info("Created booking service",
		"surge_threshold", cfg.Booking.SurgeThreshold,
		"surge_window", cfg.Booking.SurgeWindow.String(),
		"synthetic_seats", cfg.Booking.SyntheticSeats,
	)

	return service.NewBookingService(
		txRunner,
		inventory,
		pricing,
		wallet,
		bookings,
		outboxManager,
		cache,
		cfg.Booking.SyntheticSeats,
		logger,
	)
}

// CreateRepricingService creates the job that resets expired surge prices
func CreateRepricingService(
	txRunner persistence.TxRunner,
	flights flight.Repository,
	cache service.FlightCacheInvalidator,
	logger *slog.Logger,
	cfg *config.Config,
) *service.RepricingService {
	return service.NewRepricingService(
		txRunner,
		flights,
		NewInventoryManager(flights, logger.With("component", "inventory")),
		NewPricingManager(flights, PricingPolicyFromConfig(cfg.Booking), logger.With("component", "pricing")),
		cache,
		logger.With("component", "repricer"),
	)
}

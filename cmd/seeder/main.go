package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/flight-booking-engine/internal/config"
	"github.com/flight-booking-engine/internal/data/postgres"
	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/flight-booking-engine/internal/logger"
	"github.com/flight-booking-engine/internal/platform/persistence"
)

func main() {
	count := flag.Int("count", 100, "number of flights to generate")
	skipIfPresent := flag.Bool("skip-if-present", true, "do nothing when flights already exist")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, err := config.LoadConfig("seeder")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	if err := persistence.RunMigrations(log, cfg.Postgres.URL, cfg.Postgres.MigrationsPath); err != nil {
		log.Error("Failed to apply database migrations", "error", err)
		os.Exit(1)
	}

	postgresDB, err := persistence.NewPostgresDB(ctx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer postgresDB.Close()

	flightRepo := postgres.NewFlightRepository(log, postgresDB)

	if *skipIfPresent {
		routes, err := flightRepo.ListRouteDates(ctx)
		if err != nil {
			log.Error("Failed to inspect existing inventory", "error", err)
			os.Exit(1)
		}
		if len(routes) > 0 {
			log.Info("Inventory already seeded, nothing to do", "route_dates", len(routes))
			return
		}
	}

	generator := flight.NewGenerator(rand.New(rand.NewSource(time.Now().UnixNano())), flight.PriceBounds{
		Min: cfg.Booking.MinBasePrice,
		Max: cfg.Booking.MaxBasePrice,
	})
	flights, err := generator.Seed(flight.Airports, *count)
	if err != nil {
		log.Error("Failed to generate flights", "error", err)
		os.Exit(1)
	}

	created, skipped := 0, 0
	for _, f := range flights {
		if err := flightRepo.Create(ctx, f); err != nil {
			var dup flight.ErrDuplicateFlightNumber
			if errors.As(err, &dup) {
				skipped++
				continue
			}
			log.Error("Seeding aborted", "created", created, "error", err)
			os.Exit(1)
		}
		created++
	}

	log.Info("Seeded flights", "created", created, "skipped_duplicates", skipped)
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/flight-booking-engine/internal/data/redis"
	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/google/uuid"
)

// FlightServiceImpl implements the FlightService interface
type FlightServiceImpl struct {
	flightRepo flight.Repository
	cache      FlightCache
	resultSize int
	logger     *slog.Logger

	mu        sync.Mutex
	generator *flight.Generator
}

// NewFlightService creates a new flight service. Searches are padded up to resultSize
// with synthetic flights priced within bounds.
func NewFlightService(logger *slog.Logger, flightRepo flight.Repository, cache FlightCache, resultSize int, bounds flight.PriceBounds) *FlightServiceImpl {
	return &FlightServiceImpl{
		flightRepo: flightRepo,
		cache:      cache,
		resultSize: resultSize,
		logger:     logger,
		generator:  flight.NewGenerator(rand.New(rand.NewSource(time.Now().UnixNano())), bounds),
	}
}

var _ FlightService = (*FlightServiceImpl)(nil)

// Search looks up the route first so an unknown route and an empty day get different answers
func (s *FlightServiceImpl) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	if q.Origin == "" || q.Destination == "" {
		return nil, ErrMissingRoute
	}

	total, err := s.flightRepo.CountByRoute(ctx, q.Origin, q.Destination)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return &SearchResult{
			Flights:        []*flight.Flight{},
			Message:        MessageNoRoute,
			AvailableDates: []flight.DateCount{},
		}, nil
	}

	from, to := dayWindow(q.Date)
	flights, err := s.flightRepo.SearchByRoute(ctx, q.Origin, q.Destination, from, to)
	if err != nil {
		return nil, err
	}

	if len(flights) == 0 {
		dates, err := s.flightRepo.AvailableDates(ctx, q.Origin, q.Destination)
		if err != nil {
			return nil, err
		}
		s.logger.Info("No flights on requested day",
			"origin", q.Origin,
			"destination", q.Destination,
			"date", from.Format(time.DateOnly),
			"available_dates", len(dates),
		)
		return &SearchResult{
			Flights:        []*flight.Flight{},
			Message:        MessageNoFlightsOnDay,
			AvailableDates: dates,
		}, nil
	}

	if missing := s.resultSize - len(flights); missing > 0 {
		flights = append(flights, s.pad(flights[0], missing, from)...)
	}
	sort.SliceStable(flights, func(i, j int) bool {
		return flights[i].DepartureTime.Before(flights[j].DepartureTime)
	})

	if !q.hasFilters() {
		return &SearchResult{Flights: flights}, nil
	}

	filtered := make([]*flight.Flight, 0, len(flights))
	for _, f := range flights {
		if q.matches(f) {
			filtered = append(filtered, f)
		}
	}
	if len(filtered) == 0 {
		return &SearchResult{
			Flights:       []*flight.Flight{},
			Message:       MessageNoFilterMatch,
			TotalFlights:  len(flights),
			FilterApplied: true,
		}, nil
	}
	return &SearchResult{Flights: filtered, TotalFlights: len(flights), FilterApplied: true}, nil
}

func (s *FlightServiceImpl) pad(template *flight.Flight, count int, day time.Time) []*flight.Flight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generator.Pad(template, count, day)
}

// GetFlight reads through the cache. Cache failures degrade to a repository read.
func (s *FlightServiceImpl) GetFlight(ctx context.Context, id uuid.UUID) (*flight.Flight, error) {
	cached, err := s.cache.GetFlight(ctx, id)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, redis.ErrCacheMiss) {
		s.logger.Warn("Flight cache read failed", "flight_id", id.String(), "error", err)
	}

	f, err := s.flightRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetFlight(ctx, f); err != nil {
		s.logger.Warn("Failed to cache flight", "flight_id", id.String(), "error", err)
	}
	return f, nil
}

// AvailableRoutes folds the per-day rows into one Route per origin/destination pair,
// keeping the repository's city and date ordering
func (s *FlightServiceImpl) AvailableRoutes(ctx context.Context) ([]Route, error) {
	rows, err := s.cache.GetRoutes(ctx)
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.logger.Warn("Route cache read failed", "error", err)
		}
		rows, err = s.flightRepo.ListRouteDates(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetRoutes(ctx, rows); err != nil {
			s.logger.Warn("Failed to cache routes", "error", err)
		}
	}

	routes := make([]Route, 0)
	index := make(map[string]int)
	for _, row := range rows {
		key := row.OriginCode + "-" + row.DestinationCode
		i, ok := index[key]
		if !ok {
			i = len(routes)
			index[key] = i
			routes = append(routes, Route{
				FromCity: row.OriginCity,
				ToCity:   row.DestinationCity,
				FromCode: row.OriginCode,
				ToCode:   row.DestinationCode,
			})
		}
		routes[i].Dates = append(routes[i].Dates, flight.DateCount{Date: row.Date, Count: row.Count})
	}
	return routes, nil
}

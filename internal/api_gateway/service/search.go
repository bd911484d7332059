package service

import (
	"errors"
	"strings"
	"time"

	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/shopspring/decimal"
)

// Search outcome messages
const (
	MessageNoRoute        = "No flights available for this route"
	MessageNoFlightsOnDay = "No flights found for the selected date"
	MessageNoFilterMatch  = "No flights match your filter criteria"
)

var (
	ErrInvalidSearchDate = errors.New("date must be formatted as YYYY-MM-DD")
	ErrMissingRoute      = errors.New("origin and destination airport codes are required")
	ErrInvalidTimeRange  = errors.New("timeRange must be one of all, morning, afternoon, evening, night")
	ErrInvalidPriceRange = errors.New("priceRange must be formatted as min-max")
)

// TimeRange is a band of departure hours, [start, end) in UTC
type TimeRange string

const (
	TimeRangeAll       TimeRange = "all"
	TimeRangeMorning   TimeRange = "morning"
	TimeRangeAfternoon TimeRange = "afternoon"
	TimeRangeEvening   TimeRange = "evening"
	TimeRangeNight     TimeRange = "night"
)

var timeRangeHours = map[TimeRange][2]int{
	TimeRangeMorning:   {6, 12},
	TimeRangeAfternoon: {12, 18},
	TimeRangeEvening:   {18, 24},
	TimeRangeNight:     {0, 6},
}

// ParseTimeRange accepts an empty string as TimeRangeAll
func ParseTimeRange(s string) (TimeRange, error) {
	tr := TimeRange(strings.ToLower(strings.TrimSpace(s)))
	if tr == "" || tr == TimeRangeAll {
		return TimeRangeAll, nil
	}
	if _, ok := timeRangeHours[tr]; !ok {
		return "", ErrInvalidTimeRange
	}
	return tr, nil
}

// Contains reports whether t departs within the band
func (r TimeRange) Contains(t time.Time) bool {
	hours, ok := timeRangeHours[r]
	if !ok {
		return true
	}
	h := t.UTC().Hour()
	return h >= hours[0] && h < hours[1]
}

// PriceRange is an inclusive bound on the current price
type PriceRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// ParsePriceRange parses "min-max". Empty input and "all" yield nil.
func ParsePriceRange(s string) (*PriceRange, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return nil, nil
	}
	lo, hi, ok := strings.Cut(s, "-")
	if !ok {
		return nil, ErrInvalidPriceRange
	}
	lower, err := decimal.NewFromString(strings.TrimSpace(lo))
	if err != nil {
		return nil, ErrInvalidPriceRange
	}
	upper, err := decimal.NewFromString(strings.TrimSpace(hi))
	if err != nil || upper.LessThan(lower) {
		return nil, ErrInvalidPriceRange
	}
	return &PriceRange{Min: lower, Max: upper}, nil
}

// Contains reports whether p lies within the range
func (r PriceRange) Contains(p decimal.Decimal) bool {
	return !p.LessThan(r.Min) && !p.GreaterThan(r.Max)
}

// ParseAirlines splits a comma separated list, dropping blanks
func ParseAirlines(s string) []flight.Airline {
	var airlines []flight.Airline
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			airlines = append(airlines, flight.Airline(part))
		}
	}
	return airlines
}

// ParseSearchDate reads a YYYY-MM-DD day as UTC midnight
func ParseSearchDate(s string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidSearchDate
	}
	return d.UTC(), nil
}

// hasFilters reports whether any filter would narrow the result
func (q SearchQuery) hasFilters() bool {
	return len(q.Airlines) > 0 || (q.TimeRange != "" && q.TimeRange != TimeRangeAll) || q.PriceRange != nil
}

// matches applies every filter of the query to one flight
func (q SearchQuery) matches(f *flight.Flight) bool {
	if len(q.Airlines) > 0 && !containsAirline(q.Airlines, f.Airline) {
		return false
	}
	if !q.TimeRange.Contains(f.DepartureTime) {
		return false
	}
	if q.PriceRange != nil && !q.PriceRange.Contains(f.CurrentPrice) {
		return false
	}
	return true
}

func containsAirline(list []flight.Airline, a flight.Airline) bool {
	for _, candidate := range list {
		if strings.EqualFold(string(candidate), string(a)) {
			return true
		}
	}
	return false
}

// dayWindow returns the half-open UTC day [start, end) containing t
func dayWindow(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

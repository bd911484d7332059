package flight

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

// Airports is the catalog used when seeding demo inventory
var Airports = []Airport{
	{Code: "DEL", Name: "Indira Gandhi International Airport", City: "Delhi"},
	{Code: "BOM", Name: "Chhatrapati Shivaji International Airport", City: "Mumbai"},
	{Code: "BLR", Name: "Kempegowda International Airport", City: "Bengaluru"},
	{Code: "MAA", Name: "Chennai International Airport", City: "Chennai"},
	{Code: "CCU", Name: "Netaji Subhash Chandra Bose International Airport", City: "Kolkata"},
	{Code: "HYD", Name: "Rajiv Gandhi International Airport", City: "Hyderabad"},
	{Code: "COK", Name: "Cochin International Airport", City: "Kochi"},
	{Code: "PNQ", Name: "Pune International Airport", City: "Pune"},
	{Code: "GOI", Name: "Goa International Airport", City: "Goa"},
	{Code: "AMD", Name: "Sardar Vallabhbhai Patel International Airport", City: "Ahmedabad"},
}

// Generator builds random flights. It is not safe for concurrent use.
type Generator struct {
	rnd    *rand.Rand
	bounds PriceBounds
	now    func() time.Time
}

func NewGenerator(rnd *rand.Rand, bounds PriceBounds) *Generator {
	return &Generator{rnd: rnd, bounds: bounds, now: time.Now}
}

// Pad generates count synthetic flights on the template's route for the given UTC day.
// Departures are spread evenly over the day, carriers rotate, durations are 1 to 3 hours.
func (g *Generator) Pad(template *Flight, count int, day time.Time) []*Flight {
	if template == nil || count <= 0 {
		return nil
	}

	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	stamp := g.now().UnixMilli() % 10000

	padded := make([]*Flight, 0, count)
	for i := 0; i < count; i++ {
		airline := Airlines[i%len(Airlines)]
		hour := i * 24 / count
		departure := midnight.Add(time.Duration(hour)*time.Hour + time.Duration(g.rnd.Intn(60))*time.Minute)
		arrival := departure.Add(time.Duration(60+g.rnd.Intn(120)) * time.Minute)
		price := g.price()
		seats := 10 + g.rnd.Intn(50)

		padded = append(padded, &Flight{
			Airline:        airline,
			FlightNumber:   fmt.Sprintf("%s-%d-%04d", airline.Prefix(), 1000+g.rnd.Intn(9000), stamp),
			Origin:         template.Origin,
			Destination:    template.Destination,
			DepartureTime:  departure,
			ArrivalTime:    arrival,
			BasePrice:      price,
			CurrentPrice:   price,
			TotalSeats:     seats,
			AvailableSeats: seats,
			Synthetic:      true,
		})
	}
	return padded
}

// Seed generates count persistable flights between random catalog airports,
// departing 1 to 30 days from now. Flight numbers are unique within the batch.
func (g *Generator) Seed(airports []Airport, count int) ([]*Flight, error) {
	if len(airports) < 2 {
		return nil, ErrInvalidAirport
	}

	now := g.now().UTC()
	used := make(map[string]struct{}, count)
	flights := make([]*Flight, 0, count)
	for len(flights) < count {
		origin := airports[g.rnd.Intn(len(airports))]
		destination := airports[g.rnd.Intn(len(airports))]
		if origin.Code == destination.Code {
			continue
		}

		airline := Airlines[g.rnd.Intn(len(Airlines))]
		number := fmt.Sprintf("%s-%d", airline.Prefix(), 1000+g.rnd.Intn(9000))
		if _, dup := used[number]; dup {
			continue
		}

		departure := now.AddDate(0, 0, 1+g.rnd.Intn(30))
		arrival := departure.Add(time.Duration(1+g.rnd.Intn(3)) * time.Hour)

		f, err := NewFlight(airline, number, origin, destination, departure, arrival, g.price(), 10+g.rnd.Intn(50), g.bounds)
		if err != nil {
			return nil, err
		}
		used[number] = struct{}{}
		flights = append(flights, f)
	}
	return flights, nil
}

func (g *Generator) price() decimal.Decimal {
	spread := g.bounds.Max.Sub(g.bounds.Min).IntPart()
	if spread <= 0 {
		return g.bounds.Min
	}
	return g.bounds.Min.Add(decimal.NewFromInt(g.rnd.Int63n(spread + 1)))
}

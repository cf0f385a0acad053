package aggregator

import (
	"math"

	"github.com/dharmasatrya/farecalendar/internal/models"
	"github.com/dharmasatrya/farecalendar/internal/providers"
	"github.com/dharmasatrya/farecalendar/internal/sampler"
)

const (
	UnknownAirline = "Unknown"
	// OtherFlightsLimit is how many of other_flights count toward a month,
	// after every best_flights entry.
	OtherFlightsLimit = 3
)

// MonthAccumulator collects the raw observations of one month while a
// calendar is being built.
type MonthAccumulator struct {
	Month    string
	Prices   []int
	Airlines []string
	Stops    []int
}

func (m *MonthAccumulator) add(offer models.FlightOffer) {
	m.Prices = append(m.Prices, offer.Price)
	m.Airlines = append(m.Airlines, offer.Airline)
	m.Stops = append(m.Stops, offer.Stops)
}

type Accumulator struct {
	Months         []*MonthAccumulator
	Trips          []models.TripRecord
	CallsAttempted int
	CallsSucceeded int
	monthsByName   map[string]*MonthAccumulator
}

// NewAccumulator prepares an empty bucket for every month in window, so
// months without data still appear in the result.
func NewAccumulator(window []string) *Accumulator {
	acc := &Accumulator{
		Months:       make([]*MonthAccumulator, 0, len(window)),
		Trips:        make([]models.TripRecord, 0),
		monthsByName: make(map[string]*MonthAccumulator, len(window)),
	}
	for _, name := range window {
		m := &MonthAccumulator{Month: name}
		acc.Months = append(acc.Months, m)
		acc.monthsByName[name] = m
	}
	return acc
}

func (acc *Accumulator) TotalFlights() int {
	return len(acc.Trips)
}

// Add folds one successful response into the month its query is labelled
// with.
func (acc *Accumulator) Add(q sampler.Query, resp *providers.Response) {
	if resp == nil {
		return
	}
	month, ok := acc.monthsByName[q.Month]
	if !ok {
		month = &MonthAccumulator{Month: q.Month}
		acc.Months = append(acc.Months, month)
		acc.monthsByName[q.Month] = month
	}

	others := resp.OtherFlights
	if len(others) > OtherFlightsLimit {
		others = others[:OtherFlightsLimit]
	}

	for _, list := range [][]providers.FlightResult{resp.BestFlights, others} {
		for _, f := range list {
			offer, ok := ExtractOffer(f)
			if !ok {
				continue
			}
			month.add(offer)
			acc.Trips = append(acc.Trips, models.NewTripRecord(q.OutboundDate, q.ReturnDate, offer))
		}
	}
}

// Fold builds an accumulator over window from every outcome. Failed outcomes
// only count as attempted calls.
func Fold(window []string, outcomes []Outcome) *Accumulator {
	acc := NewAccumulator(window)
	for _, o := range outcomes {
		acc.CallsAttempted++
		if !o.Success() {
			continue
		}
		acc.CallsSucceeded++
		acc.Add(o.Query, o.Response)
	}
	return acc
}

// ExtractOffer reads the calendar fields of a provider flight. It reports
// false for entries without a positive price.
func ExtractOffer(f providers.FlightResult) (models.FlightOffer, bool) {
	if f.Price == nil || *f.Price <= 0 {
		return models.FlightOffer{}, false
	}

	airline := UnknownAirline
	if name := f.FirstSegment().AirlineName(); name != nil && *name != "" {
		airline = *name
	}

	stops := len(f.Flights) - 1
	if stops < 0 {
		stops = 0
	}

	return models.FlightOffer{
		Price:         int(math.Round(*f.Price)),
		Airline:       airline,
		Stops:         stops,
		DepartureTime: f.FirstSegment().DepartureTime(),
		ArrivalTime:   f.LastSegment().ArrivalTime(),
		Duration:      f.TotalDuration,
	}, true
}

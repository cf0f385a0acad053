package summarizer

import (
	"math"
	"sort"

	"github.com/dharmasatrya/farecalendar/internal/aggregator"
	"github.com/dharmasatrya/farecalendar/internal/models"
)

const (
	CheapestTripsLimit = 20
	VariousAirlines    = "Various"
)

// Summarize finalizes every month of acc and picks the cheapest trips. The
// accumulator's transient lists are not referenced by the result.
func Summarize(acc *aggregator.Accumulator) (models.PricesByMonth, []models.TripRecord) {
	months := make(models.PricesByMonth, 0, len(acc.Months))
	for _, m := range acc.Months {
		months = append(months, MonthStats(m))
	}
	return months, CheapestTrips(acc.Trips, CheapestTripsLimit)
}

// MonthStats finalizes one month. A month with no prices keeps null price
// fields and a zero count.
func MonthStats(m *aggregator.MonthAccumulator) models.MonthlyStats {
	stats := models.MonthlyStats{Month: m.Month, FlightCount: len(m.Prices)}
	if len(m.Prices) == 0 {
		return stats
	}

	sum, lo, hi := 0, m.Prices[0], m.Prices[0]
	for _, p := range m.Prices {
		sum += p
		lo = min(lo, p)
		hi = max(hi, p)
	}
	avg := int(math.Round(float64(sum) / float64(len(m.Prices))))

	nonstop := 0
	for _, s := range m.Stops {
		if s == 0 {
			nonstop++
		}
	}
	pct := 0
	if len(m.Stops) > 0 {
		pct = int(math.Round(float64(nonstop) / float64(len(m.Stops)) * 100))
	}
	hasNonstop := nonstop > 0

	stats.AvgPrice = &avg
	stats.MinPrice = &lo
	stats.MaxPrice = &hi
	stats.TopAirline = TopAirline(m.Airlines)
	stats.NonstopPercent = &pct
	stats.HasNonstop = &hasNonstop
	return stats
}

// TopAirline returns the most frequent airline. On a tie the airline seen
// first wins; an empty list yields VariousAirlines.
func TopAirline(airlines []string) string {
	counts := make(map[string]int, len(airlines))
	order := make([]string, 0, len(airlines))
	for _, a := range airlines {
		if counts[a] == 0 {
			order = append(order, a)
		}
		counts[a]++
	}

	top, best := VariousAirlines, 0
	for _, a := range order {
		if counts[a] > best {
			top, best = a, counts[a]
		}
	}
	return top
}

// CheapestTrips returns up to limit trips ordered by ascending price. Trips
// with equal prices keep their aggregation order. The input is not modified.
func CheapestTrips(trips []models.TripRecord, limit int) []models.TripRecord {
	sorted := make([]models.TripRecord, len(trips))
	copy(sorted, trips)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price < sorted[j].Price
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

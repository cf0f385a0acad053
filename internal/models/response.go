package models

import "time"

const Currency = "USD"

// CalendarResult is the payload of the price-calendar endpoint.
type CalendarResult struct {
	Origin            string        `json:"origin"`
	Destination       string        `json:"destination"`
	TripDuration      int           `json:"tripDuration"`
	PricesByMonth     PricesByMonth `json:"pricesByMonth"`
	CheapestTrips     []TripRecord  `json:"cheapestTrips"`
	Currency          string        `json:"currency"`
	LastUpdated       string        `json:"lastUpdated"`
	TotalFlightsFound int           `json:"totalFlightsFound"`
	Cached            bool          `json:"cached,omitempty"`
}

// Offer is one flattened provider offer returned by the search endpoint.
// Fields the provider left out are omitted.
type Offer struct {
	Price         *float64 `json:"price,omitempty"`
	Airline       *string  `json:"airline,omitempty"`
	Stops         int      `json:"stops"`
	Duration      *int     `json:"duration,omitempty"`
	DepartureTime *string  `json:"departure_time,omitempty"`
	ArrivalTime   *string  `json:"arrival_time,omitempty"`
	BookingLink   *string  `json:"booking_link,omitempty"`
}

type SearchResult struct {
	Offers      []Offer `json:"offers"`
	LastUpdated string  `json:"lastUpdated"`
	Cached      bool    `json:"cached,omitempty"`
}

type HealthResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	API          string `json:"api"`
	FreeSearches string `json:"freeSearches"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Timestamp formats t the way lastUpdated is reported: UTC, millisecond
// precision.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

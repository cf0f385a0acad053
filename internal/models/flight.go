package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlightOffer is one priced itinerary reduced to the fields the calendar
// needs.
type FlightOffer struct {
	Price         int
	Airline       string
	Stops         int
	DepartureTime *string
	ArrivalTime   *string
	Duration      *int
}

// TripRecord is a FlightOffer tagged with the dates it was queried for.
type TripRecord struct {
	DepartureDate string  `json:"departureDate"`
	ReturnDate    string  `json:"returnDate"`
	Price         int     `json:"price"`
	Airline       string  `json:"airline"`
	Duration      *int    `json:"duration,omitempty"`
	Stops         int     `json:"stops"`
	DepartureTime *string `json:"departureTime"`
	ArrivalTime   *string `json:"arrivalTime"`
	TotalDuration *int    `json:"totalDuration"`
}

// NewTripRecord tags offer with its query dates. TotalDuration is null when
// the provider reported no duration or a zero one.
func NewTripRecord(departureDate, returnDate string, offer FlightOffer) TripRecord {
	var total *int
	if offer.Duration != nil && *offer.Duration != 0 {
		d := *offer.Duration
		total = &d
	}

	return TripRecord{
		DepartureDate: departureDate,
		ReturnDate:    returnDate,
		Price:         offer.Price,
		Airline:       offer.Airline,
		Duration:      offer.Duration,
		Stops:         offer.Stops,
		DepartureTime: offer.DepartureTime,
		ArrivalTime:   offer.ArrivalTime,
		TotalDuration: total,
	}
}

// MonthlyStats is the finalized summary for one calendar month. Months
// without flights keep the price fields null and omit the rest.
type MonthlyStats struct {
	Month          string `json:"month"`
	AvgPrice       *int   `json:"avgPrice"`
	MinPrice       *int   `json:"minPrice"`
	MaxPrice       *int   `json:"maxPrice"`
	FlightCount    int    `json:"flightCount"`
	TopAirline     string `json:"topAirline,omitempty"`
	NonstopPercent *int   `json:"nonstopPercent,omitempty"`
	HasNonstop     *bool  `json:"hasNonstop,omitempty"`
}

// PricesByMonth serializes as a JSON object keyed by month name while
// keeping the chronological order of the sampling window.
type PricesByMonth []MonthlyStats

func (p PricesByMonth) Get(month string) (MonthlyStats, bool) {
	for _, m := range p {
		if m.Month == month {
			return m, true
		}
	}
	return MonthlyStats{}, false
}

func (p PricesByMonth) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.Month)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p *PricesByMonth) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("pricesByMonth: expected object, got %v", tok)
	}

	out := PricesByMonth{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("pricesByMonth: expected key, got %v", keyTok)
		}

		var m MonthlyStats
		if err := dec.Decode(&m); err != nil {
			return fmt.Errorf("pricesByMonth[%s]: %w", key, err)
		}
		if m.Month == "" {
			m.Month = key
		}
		out = append(out, m)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*p = out
	return nil
}

package providers

// Response mirrors the parts of a Google Flights result the service reads.
// Every field is optional.
type Response struct {
	BestFlights  []FlightResult `json:"best_flights,omitempty"`
	OtherFlights []FlightResult `json:"other_flights,omitempty"`
	Error        string         `json:"error,omitempty"`
}

type FlightResult struct {
	Price         *float64  `json:"price,omitempty"`
	Flights       []Segment `json:"flights,omitempty"`
	TotalDuration *int      `json:"total_duration,omitempty"`
	BookingToken  *string   `json:"booking_token,omitempty"`
}

type Segment struct {
	Airline          *string  `json:"airline,omitempty"`
	DepartureAirport *Airport `json:"departure_airport,omitempty"`
	ArrivalAirport   *Airport `json:"arrival_airport,omitempty"`
	TravelClass      *string  `json:"travel_class,omitempty"`
}

type Airport struct {
	ID   *string `json:"id,omitempty"`
	Name *string `json:"name,omitempty"`
	Time *string `json:"time,omitempty"`
}

func (f FlightResult) FirstSegment() *Segment {
	if len(f.Flights) == 0 {
		return nil
	}
	return &f.Flights[0]
}

func (f FlightResult) LastSegment() *Segment {
	if len(f.Flights) == 0 {
		return nil
	}
	return &f.Flights[len(f.Flights)-1]
}

// DepartureTime returns the segment's departure time, nil when absent or
// empty.
func (s *Segment) DepartureTime() *string {
	if s == nil || s.DepartureAirport == nil {
		return nil
	}
	return nonEmpty(s.DepartureAirport.Time)
}

func (s *Segment) ArrivalTime() *string {
	if s == nil || s.ArrivalAirport == nil {
		return nil
	}
	return nonEmpty(s.ArrivalAirport.Time)
}

func (s *Segment) AirlineName() *string {
	if s == nil {
		return nil
	}
	return s.Airline
}

func (s *Segment) IsNonstop() bool {
	return s != nil && s.TravelClass != nil && *s.TravelClass == "Nonstop"
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

package aggregator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/farecalendar/internal/providers"
	"github.com/dharmasatrya/farecalendar/internal/sampler"
)

type fakeProvider struct {
	mu        sync.Mutex
	calls     []providers.Query
	responses map[string]*providers.Response
	failures  map[string]error
	delay     time.Duration

	inFlight    int32
	maxInFlight int32
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Search(ctx context.Context, q providers.Query) (*providers.Response, error) {
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		cur := atomic.LoadInt32(&f.maxInFlight)
		if n <= cur || atomic.CompareAndSwapInt32(&f.maxInFlight, cur, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, q)
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err, ok := f.failures[q.OutboundDate]; ok {
		return nil, err
	}
	if resp, ok := f.responses[q.OutboundDate]; ok {
		return resp, nil
	}
	return &providers.Response{}, nil
}

func ptr[T any](v T) *T { return &v }

func flight(price float64, airlines ...string) providers.FlightResult {
	segs := make([]providers.Segment, 0, len(airlines))
	for _, a := range airlines {
		segs = append(segs, providers.Segment{Airline: ptr(a)})
	}
	return providers.FlightResult{Price: ptr(price), Flights: segs}
}

var today = time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)

func TestFetchIssuesEveryQuery(t *testing.T) {
	p := &fakeProvider{}
	agg := NewAggregator(p, Config{}, nil, nil)
	queries := sampler.Build(today, 5)

	outcomes := agg.Fetch(context.Background(), "JFK", "LAX", queries)

	require.Len(t, outcomes, 12)
	assert.Len(t, p.calls, 12)
	for i, o := range outcomes {
		assert.Equal(t, queries[i], o.Query)
		assert.True(t, o.Success())
	}
	for _, c := range p.calls {
		assert.Equal(t, "JFK", c.DepartureID)
		assert.Equal(t, "LAX", c.ArrivalID)
	}
}

func TestFetchToleratesPartialFailure(t *testing.T) {
	boom := errors.New("boom")
	p := &fakeProvider{
		failures: map[string]error{"2026-10-01": boom, "2027-03-15": boom},
		delay:    5 * time.Millisecond,
	}
	agg := NewAggregator(p, Config{}, nil, nil)

	outcomes := agg.Fetch(context.Background(), "JFK", "LAX", sampler.Build(today, 7))

	require.Len(t, outcomes, 12)
	assert.Len(t, p.calls, 12)
	assert.ErrorIs(t, outcomes[0].Err, boom)
	assert.ErrorIs(t, outcomes[11].Err, boom)
	for _, o := range outcomes[1:11] {
		assert.True(t, o.Success())
	}
}

func TestFetchRespectsConcurrencyCap(t *testing.T) {
	p := &fakeProvider{delay: 5 * time.Millisecond}
	agg := NewAggregator(p, Config{MaxConcurrency: 2}, nil, nil)

	agg.Fetch(context.Background(), "JFK", "LAX", sampler.Build(today, 7))

	assert.Len(t, p.calls, 12)
	assert.LessOrEqual(t, atomic.LoadInt32(&p.maxInFlight), int32(2))
}

func TestFoldAllFailures(t *testing.T) {
	queries := sampler.Build(today, 7)
	outcomes := make([]Outcome, len(queries))
	for i, q := range queries {
		outcomes[i] = Outcome{Query: q, Err: errors.New("down")}
	}

	acc := Fold(sampler.Window(today), outcomes)

	assert.Equal(t, 12, acc.CallsAttempted)
	assert.Equal(t, 0, acc.CallsSucceeded)
	assert.Equal(t, 0, acc.TotalFlights())
	require.Len(t, acc.Months, 6)
	for _, m := range acc.Months {
		assert.Empty(t, m.Prices)
	}
}

func TestFoldReadsBestAndFirstThreeOthers(t *testing.T) {
	q := sampler.Query{MonthOffset: 1, Month: "November", OutboundDate: "2026-11-01", ReturnDate: "2026-11-08"}
	resp := &providers.Response{
		BestFlights: []providers.FlightResult{
			flight(410.4, "Delta"),
			{Flights: []providers.Segment{{Airline: ptr("NoPrice")}}},
			flight(0, "Zero"),
		},
		OtherFlights: []providers.FlightResult{
			flight(380.5, "United", "United"),
			flight(390, "JetBlue"),
			{Price: ptr(395.0)},
			flight(100, "Ignored"),
		},
	}

	acc := Fold(sampler.Window(today), []Outcome{{Query: q, Response: resp}})

	nov := acc.Months[1]
	assert.Equal(t, "November", nov.Month)
	assert.Equal(t, []int{410, 381, 390, 395}, nov.Prices)
	assert.Equal(t, []string{"Delta", "United", "JetBlue", UnknownAirline}, nov.Airlines)
	assert.Equal(t, []int{0, 1, 0, 0}, nov.Stops)
	assert.Equal(t, 4, acc.TotalFlights())
	for _, m := range acc.Months {
		if m.Month != "November" {
			assert.Empty(t, m.Prices)
		}
	}
}

func TestExtractOfferTimesAndDuration(t *testing.T) {
	f := providers.FlightResult{
		Price:         ptr(199.0),
		TotalDuration: ptr(0),
		Flights: []providers.Segment{
			{
				Airline:          ptr("Alaska"),
				DepartureAirport: &providers.Airport{Time: ptr("2026-11-15 06:10")},
				ArrivalAirport:   &providers.Airport{Time: ptr("2026-11-15 09:00")},
			},
			{
				Airline:          ptr("Alaska"),
				DepartureAirport: &providers.Airport{Time: ptr("")},
				ArrivalAirport:   &providers.Airport{Time: ptr("2026-11-15 13:45")},
			},
		},
	}

	offer, ok := ExtractOffer(f)
	require.True(t, ok)
	assert.Equal(t, 199, offer.Price)
	assert.Equal(t, 1, offer.Stops)
	assert.Equal(t, "2026-11-15 06:10", *offer.DepartureTime)
	assert.Equal(t, "2026-11-15 13:45", *offer.ArrivalTime)
	require.NotNil(t, offer.Duration)
	assert.Equal(t, 0, *offer.Duration)
}

func TestExtractOfferMissingSegments(t *testing.T) {
	offer, ok := ExtractOffer(providers.FlightResult{Price: ptr(250.49)})

	require.True(t, ok)
	assert.Equal(t, 250, offer.Price)
	assert.Equal(t, UnknownAirline, offer.Airline)
	assert.Equal(t, 0, offer.Stops)
	assert.Nil(t, offer.DepartureTime)
	assert.Nil(t, offer.ArrivalTime)
	assert.Nil(t, offer.Duration)
}

func TestFoldTripRecordsCarryQueryDates(t *testing.T) {
	q := sampler.Query{Month: "October", OutboundDate: "2026-10-15", ReturnDate: "2026-10-22"}
	f := flight(300, "Delta")
	f.TotalDuration = ptr(330)

	acc := Fold(sampler.Window(today), []Outcome{{Query: q, Response: &providers.Response{BestFlights: []providers.FlightResult{f}}}})

	require.Len(t, acc.Trips, 1)
	trip := acc.Trips[0]
	assert.Equal(t, "2026-10-15", trip.DepartureDate)
	assert.Equal(t, "2026-10-22", trip.ReturnDate)
	assert.Equal(t, 330, *trip.Duration)
	assert.Equal(t, 330, *trip.TotalDuration)
}

func TestFoldUsesOtherFlightsWithoutBest(t *testing.T) {
	q := sampler.Query{Month: "December", OutboundDate: "2026-12-15", ReturnDate: "2026-12-22"}
	resp := &providers.Response{OtherFlights: []providers.FlightResult{
		flight(220, "Spirit"),
		flight(260, "Frontier", "Frontier"),
	}}

	acc := Fold(sampler.Window(today), []Outcome{{Query: q, Response: resp}})

	dec := acc.Months[2]
	assert.Equal(t, "December", dec.Month)
	assert.Equal(t, []int{220, 260}, dec.Prices)
	assert.Equal(t, 2, acc.TotalFlights())
}

package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dharmasatrya/farecalendar/internal/aggregator"
	"github.com/dharmasatrya/farecalendar/internal/cache"
	"github.com/dharmasatrya/farecalendar/internal/metrics"
	"github.com/dharmasatrya/farecalendar/internal/models"
	"github.com/dharmasatrya/farecalendar/internal/providers"
	"github.com/dharmasatrya/farecalendar/internal/sampler"
	"github.com/dharmasatrya/farecalendar/internal/summarizer"
	"github.com/dharmasatrya/farecalendar/pkg/currency"
	appErrors "github.com/dharmasatrya/farecalendar/pkg/errors"
)

const missingKeyMessage = "Please add your SerpApi key to the .env file"

type Config struct {
	APIKeyConfigured bool
	CalendarTTL      time.Duration
	SearchTTL        time.Duration
}

// FlightService answers calendar and search requests from the cache or the
// flight provider.
type FlightService struct {
	provider   providers.Provider
	aggregator *aggregator.Aggregator
	cache      cache.Cache
	config     Config
	logger     *zap.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewFlightService(provider providers.Provider, agg *aggregator.Aggregator, c cache.Cache, cfg Config, logger *zap.Logger, m *metrics.Metrics) *FlightService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = cache.NewNoOpCache()
	}
	if cfg.CalendarTTL <= 0 {
		cfg.CalendarTTL = cache.DefaultCalendarTTL
	}
	if cfg.SearchTTL <= 0 {
		cfg.SearchTTL = cache.DefaultSearchTTL
	}
	return &FlightService{
		provider:   provider,
		aggregator: agg,
		cache:      c,
		config:     cfg,
		logger:     logger,
		metrics:    m,
		now:        time.Now,
	}
}

// PriceCalendar samples the next six months for a validated request. Work
// continues if the caller goes away so the result can still be cached.
func (s *FlightService) PriceCalendar(ctx context.Context, req models.CalendarRequest) (*models.CalendarResult, error) {
	ctx = context.WithoutCancel(ctx)
	key := req.CacheKey()

	var cached models.CalendarResult
	if s.lookup(ctx, metrics.CacheKindCalendar, key, &cached) {
		s.logger.Info("returning cached calendar", zap.String("key", key))
		cached.Cached = true
		return &cached, nil
	}

	if !s.config.APIKeyConfigured {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, missingKeyMessage)
	}

	s.logger.Info("fetching flight prices",
		zap.String("origin", req.Origin),
		zap.String("destination", req.Destination),
		zap.Int("trip_duration", req.TripDuration),
	)

	today := s.now()
	outcomes := s.aggregator.Fetch(ctx, req.Origin, req.Destination, sampler.Build(today, req.TripDuration))
	acc := aggregator.Fold(sampler.Window(today), outcomes)
	s.logger.Info("calendar calls completed",
		zap.Int("successful", acc.CallsSucceeded),
		zap.Int("total", acc.CallsAttempted),
	)

	months, cheapest := summarizer.Summarize(acc)
	result := &models.CalendarResult{
		Origin:            req.Origin,
		Destination:       req.Destination,
		TripDuration:      req.TripDuration,
		PricesByMonth:     months,
		CheapestTrips:     cheapest,
		Currency:          models.Currency,
		LastUpdated:       models.Timestamp(s.now()),
		TotalFlightsFound: acc.TotalFlights(),
	}

	fields := []zap.Field{zap.Int("total_flights", result.TotalFlightsFound)}
	if len(cheapest) > 0 {
		fields = append(fields, zap.String("cheapest", currency.FormatUSD(float64(cheapest[0].Price))))
	}
	s.logger.Info("calendar built", fields...)
	s.metrics.ObserveFlightsFound(result.TotalFlightsFound)

	s.store(ctx, key, result, s.config.CalendarTTL)
	return result, nil
}

// Search performs a single provider lookup for a validated request.
func (s *FlightService) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResult, error) {
	ctx = context.WithoutCancel(ctx)
	key := req.CacheKey()

	var cached models.SearchResult
	if s.lookup(ctx, metrics.CacheKindSearch, key, &cached) {
		s.logger.Info("returning cached search", zap.String("key", key))
		cached.Cached = true
		return &cached, nil
	}

	s.logger.Info("searching flights",
		zap.String("origin", req.Origin),
		zap.String("destination", req.Destination),
		zap.String("departure_date", req.DepartureDate),
	)

	if !s.config.APIKeyConfigured {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, missingKeyMessage)
	}

	returnDate, err := req.EffectiveReturnDate()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := s.provider.Search(ctx, providers.Query{
		DepartureID:  req.Origin,
		ArrivalID:    req.Destination,
		OutboundDate: req.DepartureDate,
		ReturnDate:   returnDate,
	})
	s.metrics.RecordUpstreamCall(err == nil, time.Since(start))
	if err != nil {
		s.logger.Error("flight search failed", zap.String("provider", s.provider.Name()), zap.Error(err))
		return nil, upstreamError(err)
	}

	all := make([]providers.FlightResult, 0, len(resp.BestFlights)+len(resp.OtherFlights))
	all = append(all, resp.BestFlights...)
	all = append(all, resp.OtherFlights...)

	result := &models.SearchResult{
		Offers:      make([]models.Offer, 0, len(all)),
		LastUpdated: models.Timestamp(s.now()),
	}
	for _, f := range all {
		result.Offers = append(result.Offers, toOffer(f))
	}

	s.store(ctx, key, result, s.config.SearchTTL)
	return result, nil
}

// lookup treats cache failures as misses.
func (s *FlightService) lookup(ctx context.Context, kind, key string, dest any) bool {
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		found = false
	}
	s.metrics.RecordCacheLookup(kind, found)
	return found
}

func (s *FlightService) store(ctx context.Context, key string, value any, ttl time.Duration) {
	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// upstreamError keeps the provider's status code and message. Calls that never
// got a response map to 500.
func upstreamError(err error) *appErrors.Error {
	status := http.StatusInternalServerError
	message := err.Error()

	var perr *providers.ProviderError
	if errors.As(err, &perr) {
		if perr.StatusCode != 0 {
			status = perr.StatusCode
		}
		message = perr.Message
	}
	return appErrors.Wrap(err, appErrors.CodeUpstreamError, status, message)
}

func toOffer(f providers.FlightResult) models.Offer {
	first := f.FirstSegment()
	stops := 1
	if first.IsNonstop() {
		stops = 0
	}
	return models.Offer{
		Price:         f.Price,
		Airline:       first.AirlineName(),
		Stops:         stops,
		Duration:      f.TotalDuration,
		DepartureTime: first.DepartureTime(),
		ArrivalTime:   first.ArrivalTime(),
		BookingLink:   f.BookingToken,
	}
}

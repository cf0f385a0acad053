package aggregator

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dharmasatrya/farecalendar/internal/metrics"
	"github.com/dharmasatrya/farecalendar/internal/providers"
	"github.com/dharmasatrya/farecalendar/internal/sampler"
)

type Config struct {
	// MaxConcurrency caps in-flight provider calls. Zero means one goroutine
	// per query.
	MaxConcurrency int
}

type Aggregator struct {
	provider providers.Provider
	config   Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// Outcome is the result of one sampled query. Exactly one of Response and
// Err is set.
type Outcome struct {
	Query    sampler.Query
	Response *providers.Response
	Err      error
}

func (o Outcome) Success() bool {
	return o.Err == nil && o.Response != nil
}

func NewAggregator(provider providers.Provider, config Config, logger *zap.Logger, m *metrics.Metrics) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		provider: provider,
		config:   config,
		logger:   logger,
		metrics:  m,
	}
}

// Fetch runs every query concurrently and waits for all of them. A failed
// call is recorded in its Outcome and never cancels the others. Outcomes are
// returned in query order.
func (a *Aggregator) Fetch(ctx context.Context, origin, destination string, queries []sampler.Query) []Outcome {
	outcomes := make([]Outcome, len(queries))

	var g errgroup.Group
	if a.config.MaxConcurrency > 0 {
		g.SetLimit(a.config.MaxConcurrency)
	}

	for i, q := range queries {
		g.Go(func() error {
			outcomes[i] = a.fetchOne(ctx, origin, destination, q)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (a *Aggregator) fetchOne(ctx context.Context, origin, destination string, q sampler.Query) Outcome {
	start := time.Now()
	resp, err := a.provider.Search(ctx, providers.Query{
		DepartureID:  origin,
		ArrivalID:    destination,
		OutboundDate: q.OutboundDate,
		ReturnDate:   q.ReturnDate,
	})
	a.metrics.RecordUpstreamCall(err == nil, time.Since(start))

	if err != nil {
		fields := []zap.Field{
			zap.String("provider", a.provider.Name()),
			zap.String("outbound_date", q.OutboundDate),
			zap.Error(err),
		}
		var perr *providers.ProviderError
		if errors.As(err, &perr) && len(perr.Body) > 0 {
			fields = append(fields, zap.ByteString("provider_body", perr.Body))
		}
		a.logger.Warn("provider call failed", fields...)
		return Outcome{Query: q, Err: err}
	}

	a.logger.Debug("provider call succeeded",
		zap.String("outbound_date", q.OutboundDate),
		zap.Int("best_flights", len(resp.BestFlights)),
	)
	return Outcome{Query: q, Response: resp}
}

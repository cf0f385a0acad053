package metrics

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	CacheKindCalendar = "calendar"
	CacheKindSearch   = "search"
)

// Metrics wraps the Prometheus collectors of the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	upstreamTotal    *prometheus.CounterVec
	upstreamDuration prometheus.Histogram
	flightsFound     prometheus.Histogram
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by payload kind and result",
	}, []string{"kind", "result"})

	upstreamTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "Flight provider calls by result",
	}, []string{"result"})

	upstreamDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Latency of flight provider calls",
		Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
	})

	flightsFound := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "calendar_flights_found",
		Help:    "Flights aggregated per computed price calendar",
		Buckets: prometheus.LinearBuckets(0, 20, 10),
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLookups, upstreamTotal, upstreamDuration, flightsFound, goroutines)

	return &Metrics{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		cacheLookups:     cacheLookups,
		upstreamTotal:    upstreamTotal,
		upstreamDuration: upstreamDuration,
		flightsFound:     flightsFound,
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

func (m *Metrics) RecordCacheLookup(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) RecordUpstreamCall(success bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	m.upstreamTotal.WithLabelValues(result).Inc()
	m.upstreamDuration.Observe(duration.Seconds())
}

func (m *Metrics) ObserveFlightsFound(n int) {
	if m == nil {
		return
	}
	m.flightsFound.Observe(float64(n))
}

// UnmatchedRoute labels requests that matched no registered route, so
// arbitrary URLs cannot grow the series count.
const UnmatchedRoute = "not_found"

func routeLabel(c echo.Context) string {
	if path := c.Path(); path != "" {
		return path
	}
	return UnmatchedRoute
}

// Middleware records one observation per request, labelled by route.
func Middleware(m *Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m == nil {
				return next(c)
			}
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			m.ObserveHTTPRequest(c.Request().Method, routeLabel(c), c.Response().Status, time.Since(start))
			return nil
		}
	}
}

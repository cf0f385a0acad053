package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	m.RecordCacheLookup(CacheKindCalendar, true)
	m.RecordUpstreamCall(false, time.Second)
	m.ObserveFlightsFound(3)
	m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCountersAdvance(t *testing.T) {
	m := New()

	m.RecordCacheLookup(CacheKindCalendar, true)
	m.RecordCacheLookup(CacheKindCalendar, false)
	m.RecordCacheLookup(CacheKindCalendar, false)
	m.RecordUpstreamCall(true, 200*time.Millisecond)
	m.RecordUpstreamCall(false, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues(CacheKindCalendar, "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues(CacheKindCalendar, "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamTotal.WithLabelValues("failure")))
}

func TestMiddlewareExposesRoute(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(Middleware(m))
	e.GET("/api/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `http_requests_total{method="GET",path="/api/health",status="200"} 1`), body)
}

func TestMiddlewareCollapsesUnmatchedRoutes(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(Middleware(m))
	e.GET("/api/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	for _, target := range []string{"/wp-admin/setup.php", "/api/nope/1", "/api/nope/2"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	for _, raw := range []string{"/wp-admin/setup.php", "/api/nope/1", "/api/nope/2"} {
		assert.NotContains(t, body, raw)
	}
	assert.Equal(t, 1, strings.Count(body, `http_requests_total{method="GET"`), body)
}

func TestRouteLabel(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/anything/123", nil), httptest.NewRecorder())

	assert.Equal(t, UnmatchedRoute, routeLabel(c))

	c.SetPath("/api/flights/search")
	assert.Equal(t, "/api/flights/search", routeLabel(c))
}

package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dharmasatrya/farecalendar/internal/handler"
	"github.com/dharmasatrya/farecalendar/internal/metrics"
)

func TestPanicIsLoggedAndCounted(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logr := zap.New(core)
	m := metrics.New()

	e := echo.New()
	e.HTTPErrorHandler = handler.ErrorHandler(logr)
	useMiddleware(e, logr, m, nil)
	e.GET("/boom", func(c echo.Context) error { panic("kaboom") })
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	requests := logs.FilterMessage("http_request").All()
	require.Len(t, requests, 1)
	fields := requests[0].ContextMap()
	assert.Equal(t, int64(http.StatusInternalServerError), fields["status"])
	assert.Equal(t, "/boom", fields["path"])

	out := httptest.NewRecorder()
	e.ServeHTTP(out, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.True(t, strings.Contains(out.Body.String(),
		`http_requests_total{method="GET",path="/boom",status="500"} 1`), out.Body.String())
}

func TestAllowedOriginsDefaultsToWildcard(t *testing.T) {
	assert.Equal(t, []string{"*"}, allowedOrigins(nil))
	assert.Equal(t, []string{"https://fares.test"}, allowedOrigins([]string{"https://fares.test"}))
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/dharmasatrya/farecalendar/internal/aggregator"
	"github.com/dharmasatrya/farecalendar/internal/cache"
	"github.com/dharmasatrya/farecalendar/internal/config"
	"github.com/dharmasatrya/farecalendar/internal/handler"
	"github.com/dharmasatrya/farecalendar/internal/metrics"
	"github.com/dharmasatrya/farecalendar/internal/providers"
	"github.com/dharmasatrya/farecalendar/internal/ratelimit"
	"github.com/dharmasatrya/farecalendar/internal/service"
	"github.com/dharmasatrya/farecalendar/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	m := metrics.New()

	flightCache, err := newCache(cfg, logr)
	if err != nil {
		logr.Fatal("Failed to initialize cache", zap.Error(err))
	}
	defer flightCache.Close() //nolint:errcheck

	limiter := ratelimit.New(ratelimit.Config{
		RequestsPerSecond: cfg.Upstream.RateLimitRPS,
		BurstSize:         cfg.Upstream.RateLimitBurst,
	})
	if limiter.Enabled() {
		logr.Info("Upstream rate limit enabled",
			zap.Float64("rps", cfg.Upstream.RateLimitRPS),
			zap.Int("burst", cfg.Upstream.RateLimitBurst),
		)
	}

	provider := providers.NewSerpAPI(providers.SerpAPIConfig{
		APIKey:  cfg.SerpAPI.APIKey,
		BaseURL: cfg.SerpAPI.BaseURL,
		Timeout: cfg.Upstream.Timeout,
		Limiter: limiter,
	})
	agg := aggregator.NewAggregator(provider, aggregator.Config{
		MaxConcurrency: cfg.Upstream.MaxConcurrency,
	}, logr, m)

	flightService := service.NewFlightService(provider, agg, flightCache, service.Config{
		APIKeyConfigured: cfg.HasAPIKey(),
		CalendarTTL:      cfg.Cache.CalendarTTL,
		SearchTTL:        cfg.Cache.SearchTTL,
	}, logr, m)
	flightHandler := handler.NewFlightHandler(flightService)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler(logr)
	useMiddleware(e, logr, m, cfg.CORS.AllowedOrigins)

	api := e.Group("/api")
	api.GET("/health", handler.HealthHandler)
	api.GET("/flights/price-calendar", flightHandler.PriceCalendar)
	api.GET("/flights/search", flightHandler.Search)
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	addr := ":" + strconv.Itoa(cfg.Port)
	logr.Info("Budget Flight Finder API starting",
		zap.Int("port", cfg.Port),
		zap.String("api", "SerpApi (Google Flights)"),
		zap.String("health_check", "http://localhost"+addr+"/api/health"),
		zap.String("cache_backend", cfg.Cache.Backend),
	)
	if !cfg.HasAPIKey() {
		logr.Warn("SERPAPI_KEY is not set; flight endpoints will return configuration errors until it is added to .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logr.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// useMiddleware installs the middleware chain. Recover sits inside the
// request logger and metrics so recovered panics are still logged and counted
// as 500s.
func useMiddleware(e *echo.Echo, logr *zap.Logger, m *metrics.Metrics, origins []string) {
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(logger.EchoMiddleware(logr))
	e.Use(metrics.Middleware(m))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins(origins),
	}))
}

func newCache(cfg *config.Config, logr *zap.Logger) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cache.DefaultRedisConfig().Prefix,
			TTL:      cfg.Cache.CalendarTTL,
		})
		if err != nil {
			return nil, err
		}
		logr.Info("Redis cache enabled", zap.String("addr", cfg.Redis.Host+":"+cfg.Redis.Port))
		return redisCache, nil
	case config.CacheBackendNone:
		logr.Info("Cache disabled")
		return cache.NewNoOpCache(), nil
	default:
		memCache := cache.NewMemoryCache(cfg.Cache.CalendarTTL, cfg.Cache.CleanupInterval)
		logr.Info("In-memory cache enabled", zap.Duration("cleanup_interval", cfg.Cache.CleanupInterval))
		return memCache, nil
	}
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

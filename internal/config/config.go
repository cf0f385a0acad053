package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
	CacheBackendNone   = "none"
)

type Config struct {
	Env  string
	Port int

	SerpAPI  SerpAPIConfig
	Upstream UpstreamConfig
	Cache    CacheConfig
	Redis    RedisConfig
	Log      LogConfig
	CORS     CORSConfig
}

type SerpAPIConfig struct {
	APIKey  string
	BaseURL string
}

// UpstreamConfig tunes calls to the flight provider. Zero values keep the
// transport defaults: no timeout, no concurrency cap, no throttling.
type UpstreamConfig struct {
	Timeout        time.Duration
	MaxConcurrency int
	RateLimitRPS   float64
	RateLimitBurst int
}

type CacheConfig struct {
	Backend         string
	CalendarTTL     time.Duration
	SearchTTL       time.Duration
	CleanupInterval time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type LogConfig struct {
	Level  string
	Format string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from the environment. A .env file in the working
// directory, when present, fills in variables the environment does not set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !isNotExist(err) {
		return nil, err
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Env:  v.GetString("ENV"),
		Port: v.GetInt("PORT"),
	}

	cfg.SerpAPI = SerpAPIConfig{
		APIKey:  strings.TrimSpace(v.GetString("SERPAPI_KEY")),
		BaseURL: v.GetString("SERPAPI_BASE_URL"),
	}

	cfg.Upstream = UpstreamConfig{
		Timeout:        parseDuration(v.GetString("UPSTREAM_TIMEOUT"), 0),
		MaxConcurrency: v.GetInt("UPSTREAM_MAX_CONCURRENCY"),
		RateLimitRPS:   v.GetFloat64("UPSTREAM_RATE_LIMIT_RPS"),
		RateLimitBurst: v.GetInt("UPSTREAM_RATE_LIMIT_BURST"),
	}

	cfg.Cache = CacheConfig{
		Backend:         strings.ToLower(v.GetString("CACHE_BACKEND")),
		CalendarTTL:     parseDuration(v.GetString("CALENDAR_CACHE_TTL"), 6*time.Hour),
		SearchTTL:       parseDuration(v.GetString("SEARCH_CACHE_TTL"), time.Hour),
		CleanupInterval: parseDuration(v.GetString("CACHE_CLEANUP_INTERVAL"), 10*time.Minute),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetString("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 3001)

	v.SetDefault("SERPAPI_KEY", "")
	v.SetDefault("SERPAPI_BASE_URL", "https://serpapi.com/search")

	v.SetDefault("UPSTREAM_TIMEOUT", "0s")
	v.SetDefault("UPSTREAM_MAX_CONCURRENCY", 0)
	v.SetDefault("UPSTREAM_RATE_LIMIT_RPS", 0)
	v.SetDefault("UPSTREAM_RATE_LIMIT_BURST", 1)

	v.SetDefault("CACHE_BACKEND", CacheBackendMemory)
	v.SetDefault("CALENDAR_CACHE_TTL", "6h")
	v.SetDefault("SEARCH_CACHE_TTL", "1h")
	v.SetDefault("CACHE_CLEANUP_INTERVAL", "10m")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("ALLOWED_ORIGINS", "")
}

// isNotExist reports a missing .env, which is not an error.
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// HasAPIKey reports whether upstream calls can be made at all.
func (c *Config) HasAPIKey() bool {
	return c != nil && c.SerpAPI.APIKey != ""
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

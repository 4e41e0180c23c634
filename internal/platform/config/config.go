package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string

	MongoURI      string
	MongoDatabase string
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string

	GraphURL string

	CacheTTL        time.Duration
	RateLimitWindow time.Duration
	FanOutLimit     int

	// RateLimitFailOpen controls limiter behavior when the backing store
	// is unreachable: admit (true) or reject with a diagnostic (false).
	RateLimitFailOpen bool

	HistoricRefreshInterval time.Duration
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "cpindex"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	database := os.Getenv("MONGO_DATABASE")
	if database == "" {
		database = "CPI"
	}

	graphURL := os.Getenv("GRAPH_URL")
	if graphURL == "" {
		graphURL = "https://api.studio.thegraph.com/query/68573/op/v0.0.1"
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,

		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: database,
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		GraphURL: graphURL,

		CacheTTL:        envDuration("CACHE_TTL", 5*time.Minute),
		RateLimitWindow: envDuration("RATE_LIMIT_WINDOW", 60*time.Second),
		FanOutLimit:     envInt("CPI_FANOUT", 8),

		RateLimitFailOpen: envBool("RATE_LIMIT_FAIL_OPEN", true),

		HistoricRefreshInterval: envDuration("HISTORIC_REFRESH_INTERVAL", time.Hour),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

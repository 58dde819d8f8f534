package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration for the record-access engine.
type Server struct {
	Addr          string
	PostgresURL   string
	RedisURL      string
	KafkaBrokers  []string
	JWTSigningKey string

	// AdminOwner seeds the administrative owner identity on first start.
	// Succession afterwards happens only through the transfer operation.
	AdminOwner string
}

// RateLimit tunes the optional redis-backed request limiter.
type RateLimit struct {
	Window      time.Duration
	MaxRequests int
}

// DefaultRateLimit allows bursts generous enough for the UI polling the
// audit feed while still containing runaway clients.
var DefaultRateLimit = RateLimit{Window: time.Minute, MaxRequests: 600}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("MEDCHAIN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	adminOwner := os.Getenv("MEDCHAIN_ADMIN_OWNER")
	if adminOwner == "" {
		adminOwner = "admin"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return Server{
		Addr:          addr,
		PostgresURL:   os.Getenv("POSTGRES_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		KafkaBrokers:  brokers,
		JWTSigningKey: jwtSigningKey,
		AdminOwner:    adminOwner,
	}
}

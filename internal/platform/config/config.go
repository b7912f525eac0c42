// Package config builds runtime configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "veriscreen/pkg/platform/strings"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	AdminToken    string
	JWTSigningKey string
	// RequireAuth is set when a signing key was explicitly configured;
	// the dev default key never turns authentication on.
	RequireAuth bool
	// APIKeyHash is the bcrypt hash the token-minting endpoint verifies
	// against. Empty disables the endpoint.
	APIKeyHash string
}

// PostgresConfig captures connection settings for the evaluation history store.
type PostgresConfig struct {
	URL string
}

// RedisConfig captures connection settings for the evaluation cache.
// An empty URL disables Redis entirely.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig captures broker settings for the audit event stream.
// An empty broker list disables Kafka publishing.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// ScreeningConfig tunes the match evaluation pipeline.
type ScreeningConfig struct {
	CacheTTL         time.Duration
	MaxCandidates    int
	ScoreParallelism int
}

// Config aggregates all runtime configuration.
type Config struct {
	Server    Server
	Postgres  PostgresConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Screening ScreeningConfig
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Config{
		Server: Server{
			Addr:          envOr("VERISCREEN_ADDR", ":8080"),
			AdminToken:    os.Getenv("VERISCREEN_ADMIN_TOKEN"),
			JWTSigningKey: jwtSigningKey,
			RequireAuth:   os.Getenv("JWT_SIGNING_KEY") != "",
			APIKeyHash:    os.Getenv("VERISCREEN_API_KEY_HASH"),
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    platformstrings.DedupeAndTrim(strings.Split(os.Getenv("KAFKA_BROKERS"), ",")),
			AuditTopic: envOr("KAFKA_AUDIT_TOPIC", "veriscreen.audit"),
		},
		Screening: ScreeningConfig{
			CacheTTL:         envDuration("VERISCREEN_CACHE_TTL", 5*time.Minute),
			MaxCandidates:    envInt("VERISCREEN_MAX_CANDIDATES", 100),
			ScoreParallelism: envInt("VERISCREEN_SCORE_PARALLELISM", 8),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

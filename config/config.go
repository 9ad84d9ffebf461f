package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ConsistencyMode selects how two related document writes are applied
type ConsistencyMode string

const (
	// TwoPhase writes the primary document first and the secondary best-effort,
	// deferring failed secondaries to the reconciler.
	TwoPhase ConsistencyMode = "two-phase"
	// Transactional wraps both writes in one database transaction.
	Transactional ConsistencyMode = "transactional"
)

// ResolvePolicy decides who may resolve role requests and set roles directly
type ResolvePolicy string

const (
	PolicyAdmin         ResolvePolicy = "admin"
	PolicyAuthenticated ResolvePolicy = "authenticated"
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	DatabaseURL string
	SQLitePath  string

	AccessTokenSecret []byte
	TokenTTL          time.Duration

	StripeSecret string
	SiteDomain   string

	Consistency       ConsistencyMode
	ResolvePolicy     ResolvePolicy
	ReconcileSchedule string

	KafkaBrokers []string
	KafkaTopic   string

	RedisAddr     string
	RedisPassword string
	StatsCacheTTL time.Duration

	RateLimitRPS   int
	RateLimitBurst int
}

// Load reads configuration from the environment, after an optional .env file
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "3000"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getEnv("SQLITE_PATH", "localchef.db"),

		AccessTokenSecret: []byte(os.Getenv("ACCESS_TOKEN_SECRET")),
		TokenTTL:          getDuration("TOKEN_TTL", 7*24*time.Hour),

		StripeSecret: os.Getenv("STRIPE_SECRET"),
		SiteDomain:   strings.TrimRight(getEnv("SITE_DOMAIN", "http://localhost:5173"), "/"),

		Consistency:       ConsistencyMode(getEnv("CONSISTENCY_MODE", string(TwoPhase))),
		ResolvePolicy:     ResolvePolicy(getEnv("ROLE_RESOLVE_POLICY", string(PolicyAdmin))),
		ReconcileSchedule: getEnv("RECONCILE_SCHEDULE", "@every 1m"),

		KafkaBrokers: csv(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "localchef.events"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		StatsCacheTTL: getDuration("STATS_CACHE_TTL", 30*time.Second),

		RateLimitRPS:   getInt("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 20),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values outside the known sets
func (c *Config) Validate() error {
	var errs []error
	switch c.Consistency {
	case TwoPhase, Transactional:
	default:
		errs = append(errs, fmt.Errorf("CONSISTENCY_MODE must be %q or %q, got %q", TwoPhase, Transactional, c.Consistency))
	}
	switch c.ResolvePolicy {
	case PolicyAdmin, PolicyAuthenticated:
	default:
		errs = append(errs, fmt.Errorf("ROLE_RESOLVE_POLICY must be %q or %q, got %q", PolicyAdmin, PolicyAuthenticated, c.ResolvePolicy))
	}
	if len(c.AccessTokenSecret) == 0 && c.GinMode == "release" {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET is required in release mode"))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return d
}

func csv(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures everything the server needs at startup. It is built once in
// main and passed explicitly to constructors; nothing reads the environment
// after boot.
type Config struct {
	Addr          string
	DatabaseURL   string
	Redis         RedisConfig
	KafkaBrokers  string
	JWTSigningKey string
	TokenTTL      time.Duration
	SeedAdmin     bool
	AdminEmail    string
	AdminPassword string
}

// RedisConfig controls the pooled Redis client used for job enqueueing.
// Timeouts come from the URL (?dial_timeout=... etc.); only the pool size
// has a code-level default.
type RedisConfig struct {
	URL      string
	PoolSize int
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	addr := os.Getenv("PULSEBOARD_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	tokenTTL := 30 * time.Minute
	if raw := os.Getenv("TOKEN_TTL_MINUTES"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			tokenTTL = time.Duration(minutes) * time.Minute
		}
	}

	return Config{
		Addr:        addr,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:      os.Getenv("REDIS_URL"),
			PoolSize: 10,
		},
		KafkaBrokers:  os.Getenv("KAFKA_BROKERS"),
		JWTSigningKey: jwtSigningKey,
		TokenTTL:      tokenTTL,
		SeedAdmin:     os.Getenv("SEED_ADMIN") == "true",
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

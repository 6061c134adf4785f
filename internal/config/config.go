// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Web server
	Bind string

	// Storage. Backend is "sqlite" (default) or "postgres".
	Backend     string
	SQLitePath  string
	DatabaseURL string

	// Expense write guard
	LockTimeout time.Duration

	// Balance cache
	CacheSize int
	CacheTTL  time.Duration

	// Event publishing (disabled when AMQPURL is empty)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Assistant (keyword-only when OpenAIKey is empty)
	OpenAIKey   string
	OpenAIModel string
}

func Load() (*Config, error) {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := &Config{
		Bind:         getEnvDefault("BIND", "0.0.0.0:8000"),
		Backend:      getEnvDefault("DATA_BACKEND", "sqlite"),
		SQLitePath:   getEnvDefault("SQLITE_DB_PATH", "data/fairsplit.db"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getEnvDefault("AMQP_EXCHANGE", "fairsplit"),
		AMQPQueue:    getEnvDefault("AMQP_QUEUE", "expense-events"),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  getEnvDefault("OPENAI_MODEL", "gpt-4o-mini"),
	}

	var err error
	if cfg.LockTimeout, err = getEnvDuration("LOCK_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getEnvDuration("BALANCE_CACHE_TTL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.CacheSize, err = getEnvInt("BALANCE_CACHE_SIZE", 256); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case "sqlite":
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("SQLITE_DB_PATH is required for the sqlite backend")
		}
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return nil, fmt.Errorf("unknown DATA_BACKEND %q, expected sqlite or postgres", cfg.Backend)
	}
	if cfg.LockTimeout <= 0 {
		return nil, fmt.Errorf("LOCK_TIMEOUT must be positive")
	}
	if cfg.CacheSize <= 0 {
		return nil, fmt.Errorf("BALANCE_CACHE_SIZE must be positive")
	}

	return cfg, nil
}

func getEnvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

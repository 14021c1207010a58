// Package config loads service configuration from the environment,
// with an optional .env file for development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port   int
	DBPath string

	JWTSecret string
	TokenTTL  time.Duration

	ModelCost      decimal.Decimal
	MaxInputLength int
}

// Load reads .env (if present) and the environment, falling back to
// development defaults.
func Load() *Config {
	// A missing .env is fine outside development.
	_ = godotenv.Load()

	return &Config{
		Port:           getEnvInt("PORT", 8080),
		DBPath:         getEnv("DB_PATH", "sci_summ.db"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		TokenTTL:       getEnvDuration("TOKEN_TTL", 30*time.Minute),
		ModelCost:      getEnvDecimal("MODEL_COST", decimal.NewFromInt(10)),
		MaxInputLength: getEnvInt("MAX_INPUT_LENGTH", 1000),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return fallback
}

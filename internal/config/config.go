// Package config loads application settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Environment string
	Address     string
	DBPath      string
	LogLevel    string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	Debug bool
}

// Load reads configuration from environment variables and an optional
// .env file. Every setting has a working default.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")

	return Config{
		Environment:  environment,
		Address:      getenv("ICMSST_ADDR", ":8080"),
		DBPath:       getenv("ICMSST_DB", "icmsst.db"),
		LogLevel:     strings.ToLower(getenv("ICMSST_LOG_LEVEL", "info")),
		ReadTimeout:  getenvDuration("ICMSST_READ_TIMEOUT", 30*time.Second),
		WriteTimeout: getenvDuration("ICMSST_WRITE_TIMEOUT", 30*time.Second),
		Debug:        environment != "production" && getenvBool("ICMSST_DEBUG", false),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kapu/messenger-api-go/internal/api"
)

type Config struct {
	API          APIConfig
	Stream       StreamConfig
	Redis        RedisConfig
	Postgres     PostgresConfig
	Session      SessionConfig
	FeatureFlags FeatureFlagConfig
	Notification NotificationConfig
	Logging      LoggingConfig
}

type APIConfig struct {
	Environment    api.Environment
	BaseURL        string
	Timeout        time.Duration
	CircuitBreaker bool
}

type StreamConfig struct {
	URL string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// PostgresConfig is optional. An empty Host leaves the conversation store
// disabled.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

func (c PostgresConfig) Enabled() bool {
	return c.Host != ""
}

type SessionConfig struct {
	TTL time.Duration
}

type FeatureFlagConfig struct {
	GlobalDefault bool
}

type NotificationConfig struct {
	Actions string
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env, err := api.ParseEnvironment(getEnv("MESSENGER_ENV", "release"))
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg := &Config{
		API: APIConfig{
			Environment:    env,
			BaseURL:        getEnv("API_BASE_URL", ""),
			Timeout:        time.Duration(getEnvInt("API_TIMEOUT_SECONDS", 10)) * time.Second,
			CircuitBreaker: getEnvBool("API_CIRCUIT_BREAKER", false),
		},
		Stream: StreamConfig{
			URL: getEnv("STREAM_URL", defaultStreamURL(env)),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", ""),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "messenger"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "messenger"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Session: SessionConfig{
			TTL: time.Duration(getEnvInt("SESSION_TTL_HOURS", 720)) * time.Hour,
		},
		FeatureFlags: FeatureFlagConfig{
			GlobalDefault: getEnvBool("FEATURE_FLAG_DEFAULT", false),
		},
		Notification: NotificationConfig{
			Actions: getEnv("NOTIFICATION_ACTIONS", "reply,call,read"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.API.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT_SECONDS must be positive")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL_HOURS must be positive")
	}
	if c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.Stream.URL == "" {
		return fmt.Errorf("STREAM_URL is required")
	}
	return nil
}

// APIBaseURL is the override when set, otherwise the environment's URL.
func (c *Config) APIBaseURL() string {
	if c.API.BaseURL != "" {
		return c.API.BaseURL
	}
	return c.API.Environment.BaseURL()
}

// defaultStreamURL is the stream endpoint next to the environment's API root.
func defaultStreamURL(env api.Environment) string {
	base := env.BaseURL()
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return strings.TrimSuffix(base, "/") + "/stream"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// Package config provides configuration management for the training console.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Feed source modes.
const (
	FeedModeOff   = "off"
	FeedModeHTTP  = "http"
	FeedModeKafka = "kafka"
)

// Config holds all configuration for the service.
type Config struct {
	Service  ServiceConfig
	Logging  LoggingConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Feed     FeedConfig
	Live     LiveConfig
	CORS     CORSConfig
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name        string
	HTTPPort    string
	Environment string
	Debug       bool

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string
	Format string // json, text
}

// RedisConfig holds Redis session-state configuration. An empty Addr keeps
// state in memory only.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
}

// DatabaseConfig holds PostgreSQL configuration for the attempt history. An
// empty Host disables Postgres and keeps history in memory.
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// FeedConfig holds the live event feed configuration.
type FeedConfig struct {
	Mode         string // off, http, kafka
	Interval     time.Duration
	FetchTimeout time.Duration

	// http mode
	URL string

	// kafka mode
	KafkaBrokers  []string
	KafkaTopic    string
	ConsumerGroup string
}

// LiveConfig holds rule engine configuration.
type LiveConfig struct {
	DedupMode string // identity, payload
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Service: ServiceConfig{
			Name:            getEnv("SERVICE_NAME", "socrange"),
			HTTPPort:        getEnv("HTTP_PORT", "8080"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			Debug:           getEnvBool("DEBUG", false),
			ReadTimeout:     getEnvDuration("READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Redis: RedisConfig{
			Addr:         getEnv("REDIS_ADDR", ""),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", ""),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "socrange"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Feed: FeedConfig{
			Mode:          getEnv("FEED_MODE", FeedModeOff),
			Interval:      getEnvDuration("FEED_INTERVAL", 3*time.Second),
			FetchTimeout:  getEnvDuration("FEED_FETCH_TIMEOUT", 10*time.Second),
			URL:           getEnv("FEED_URL", ""),
			KafkaBrokers:  getEnvSlice("FEED_KAFKA_BROKERS", []string{"localhost:9092"}),
			KafkaTopic:    getEnv("FEED_KAFKA_TOPIC", "soc.events"),
			ConsumerGroup: getEnv("FEED_CONSUMER_GROUP", "socrange"),
		},
		Live: LiveConfig{
			DedupMode: getEnv("LIVE_DEDUP_MODE", "identity"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods:   getEnvSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders:   getEnvSlice("CORS_ALLOWED_HEADERS", []string{"Accept", "Authorization", "Content-Type"}),
			AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", true),
			MaxAge:           getEnvInt("CORS_MAX_AGE", 86400),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Service.HTTPPort == "" {
		return fmt.Errorf("HTTP port is required")
	}

	switch c.Feed.Mode {
	case FeedModeOff:
	case FeedModeHTTP:
		if c.Feed.URL == "" {
			return fmt.Errorf("FEED_URL is required in http feed mode")
		}
	case FeedModeKafka:
		if len(c.Feed.KafkaBrokers) == 0 {
			return fmt.Errorf("FEED_KAFKA_BROKERS is required in kafka feed mode")
		}
		if c.Feed.KafkaTopic == "" {
			return fmt.Errorf("FEED_KAFKA_TOPIC is required in kafka feed mode")
		}
	default:
		return fmt.Errorf("unknown feed mode: %s", c.Feed.Mode)
	}

	switch c.Live.DedupMode {
	case "identity", "payload":
	default:
		return fmt.Errorf("unknown dedup mode: %s", c.Live.DedupMode)
	}

	if c.Feed.Interval <= 0 {
		return fmt.Errorf("feed interval must be positive")
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Helper functions for environment variable loading.

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return b
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return i
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return d
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				result = append(result, part)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Gateway  GatewayConfig
	Events   EventsConfig
	Payments PaymentsConfig
	Secrets  SecretsConfig
	Logger   LoggerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int
	Host            string
	MetricsPort     int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// GatewayConfig holds the simulated gateway configuration
type GatewayConfig struct {
	Latency time.Duration // simulated processing latency per call
}

// EventsConfig holds the publisher endpoints and signing secret
type EventsConfig struct {
	StreamEndpoint string // event stream ingest URL
	QueueEndpoint  string // durable queue enqueue URL
	SigningSecret  string // HMAC secret for outbound event signatures
	Timeout        time.Duration
}

// PaymentsConfig holds payment processing tunables
type PaymentsConfig struct {
	RateLimitPerMinute int    // accepted requests per customer per UTC minute
	HighValueThreshold string // decimal amount at which high-value events fire
	WebhookSecret      string // HMAC secret for inbound webhook signatures
}

// SecretsConfig selects the secret backend: env, aws or vault
type SecretsConfig struct {
	Backend      string
	AWSRegion    string
	VaultAddress string
	VaultToken   string
	VaultMount   string
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			MetricsPort:     getEnvAsInt("METRICS_PORT", 9090),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "payments"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			MaxConns: int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns: int32(getEnvAsInt("DB_MIN_CONNS", 5)),
		},
		Gateway: GatewayConfig{
			Latency: getEnvAsDuration("GATEWAY_LATENCY", 100*time.Millisecond),
		},
		Events: EventsConfig{
			StreamEndpoint: getEnv("EVENT_STREAM_ENDPOINT", "http://localhost:4317/events"),
			QueueEndpoint:  getEnv("EVENT_QUEUE_ENDPOINT", "http://localhost:4318/queue"),
			SigningSecret:  getEnv("EVENT_SIGNING_SECRET", ""),
			Timeout:        getEnvAsDuration("EVENT_TIMEOUT", 10*time.Second),
		},
		Payments: PaymentsConfig{
			RateLimitPerMinute: getEnvAsInt("PAYMENT_RATE_LIMIT_PER_MINUTE", 10),
			HighValueThreshold: getEnv("PAYMENT_HIGH_VALUE_THRESHOLD", "10000"),
			WebhookSecret:      getEnv("WEBHOOK_SECRET", ""),
		},
		Secrets: SecretsConfig{
			Backend:      getEnv("SECRETS_BACKEND", "env"),
			AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
			VaultAddress: getEnv("VAULT_ADDR", ""),
			VaultToken:   getEnv("VAULT_TOKEN", ""),
			VaultMount:   getEnv("VAULT_MOUNT", "secret"),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	// Validate required fields
	if cfg.Payments.RateLimitPerMinute < 1 {
		return nil, fmt.Errorf("PAYMENT_RATE_LIMIT_PER_MINUTE must be at least 1")
	}
	switch cfg.Secrets.Backend {
	case "env", "aws", "vault":
	default:
		return nil, fmt.Errorf("SECRETS_BACKEND must be env, aws or vault, got %q", cfg.Secrets.Backend)
	}
	if cfg.Secrets.Backend == "vault" && cfg.Secrets.VaultAddress == "" {
		return nil, fmt.Errorf("VAULT_ADDR is required when SECRETS_BACKEND=vault")
	}

	return cfg, nil
}

// ConnectionString returns PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

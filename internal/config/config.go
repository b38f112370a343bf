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
	Provider ProviderConfig
	Cache    CacheConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// ProviderConfig holds flight data provider configuration
type ProviderConfig struct {
	BaseURL        string
	AppID          string
	AppKey         string
	Airline        string
	RequestTimeout time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	PageDelay      time.Duration
	MaxPages       int
}

// CacheConfig holds response cache configuration
type CacheConfig struct {
	Duration     time.Duration
	ExpiryWindow time.Duration
}

// DatabaseConfig holds PostgreSQL configuration. Snapshot persistence is
// optional: it is enabled only when Host is set.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Enabled reports whether snapshot persistence is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Provider: ProviderConfig{
			BaseURL:        getEnv("PROVIDER_BASE_URL", "https://api.schiphol.nl/public-flights"),
			AppID:          getEnv("PROVIDER_APP_ID", ""),
			AppKey:         getEnv("PROVIDER_APP_KEY", ""),
			Airline:        getEnv("PROVIDER_AIRLINE", "KL"),
			RequestTimeout: getEnvDuration("PROVIDER_REQUEST_TIMEOUT", 10*time.Second),
			MaxRetries:     getEnvInt("PROVIDER_MAX_RETRIES", 3),
			RetryBaseDelay: getEnvDuration("PROVIDER_RETRY_BASE_DELAY", 500*time.Millisecond),
			PageDelay:      getEnvDuration("PROVIDER_PAGE_DELAY", 150*time.Millisecond),
			MaxPages:       getEnvInt("PROVIDER_MAX_PAGES", 20),
		},
		Cache: CacheConfig{
			Duration:     getEnvDuration("CACHE_DURATION", 10*time.Minute),
			ExpiryWindow: getEnvDuration("CACHE_EXPIRY_WINDOW", 15*time.Minute),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", ""),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "flightops"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "flightops"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

// Validate checks configuration consistency
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Provider.BaseURL == "" {
		return fmt.Errorf("provider base URL must not be empty")
	}

	if c.Provider.MaxRetries < 0 {
		return fmt.Errorf("provider max retries must not be negative")
	}

	if c.Provider.MaxPages <= 0 {
		return fmt.Errorf("provider max pages must be positive")
	}

	if c.Cache.ExpiryWindow < c.Cache.Duration {
		return fmt.Errorf("cache expiry window (%v) must not be shorter than cache duration (%v)",
			c.Cache.ExpiryWindow, c.Cache.Duration)
	}

	if c.Database.Enabled() && c.Database.User == "" {
		return fmt.Errorf("database user must be set when DB_HOST is configured")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

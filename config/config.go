package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/nutricoach/backend/internal/domain"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Extraction ExtractionConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig
	Recap      RecapConfig
	Log        LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig selects and configures the profile/meal store
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // "memory" or "postgres"
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// ExtractionConfig holds the meal extraction (generative AI) API configuration
type ExtractionConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Model             string        `mapstructure:"model"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type string        `mapstructure:"type"` // only "memory" for now
	TTL  time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// RecapConfig controls recap computation and the batch job
type RecapConfig struct {
	Tolerance       float64       `mapstructure:"tolerance"`
	PeriodDays      int           `mapstructure:"period_days"`
	Interval        time.Duration `mapstructure:"interval"`
	Concurrency     int           `mapstructure:"concurrency"`
	DefaultTimezone string        `mapstructure:"default_timezone"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/nutricoach/")

	v.SetEnvPrefix("NUTRICOACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads a .env file from the working directory if one exists.
// Variables already set in the environment are not overridden.
func loadEnvFile() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error reading .env file: %w", err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database defaults
	v.SetDefault("database.driver", "memory")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)

	// Extraction defaults
	v.SetDefault("extraction.api_key", "")
	v.SetDefault("extraction.base_url", "https://api.openai.com")
	v.SetDefault("extraction.model", "gpt-4o-mini")
	v.SetDefault("extraction.timeout", "30s")
	v.SetDefault("extraction.requests_per_minute", 60)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "6h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 120)

	// Recap defaults
	v.SetDefault("recap.tolerance", 0.10)
	v.SetDefault("recap.period_days", 7)
	v.SetDefault("recap.interval", "24h")
	v.SetDefault("recap.concurrency", 4)
	v.SetDefault("recap.default_timezone", "UTC")

	v.SetDefault("log.level", "info")
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Database.Driver {
	case "memory":
	case "postgres":
		if config.Database.URL == "" {
			return fmt.Errorf("database URL is required when driver is 'postgres' (set NUTRICOACH_DATABASE_URL)")
		}
	default:
		return fmt.Errorf("database driver must be 'memory' or 'postgres', got: %s", config.Database.Driver)
	}

	if config.Cache.Type != "memory" {
		return fmt.Errorf("cache type must be 'memory', got: %s", config.Cache.Type)
	}

	if config.Recap.Tolerance <= 0 || config.Recap.Tolerance > 1 {
		return fmt.Errorf("recap tolerance must be in (0, 1], got: %v", config.Recap.Tolerance)
	}

	if config.Recap.PeriodDays < 1 || config.Recap.PeriodDays > domain.MaxRecapDays {
		return fmt.Errorf("recap period_days must be between 1 and %d, got: %d", domain.MaxRecapDays, config.Recap.PeriodDays)
	}

	if config.Recap.Concurrency < 1 {
		return fmt.Errorf("recap concurrency must be positive, got: %d", config.Recap.Concurrency)
	}

	if _, err := time.LoadLocation(config.Recap.DefaultTimezone); err != nil {
		return fmt.Errorf("recap default_timezone %q is not a valid IANA timezone", config.Recap.DefaultTimezone)
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("ratelimit per_ip must not be negative, got: %d", config.RateLimit.PerIP)
	}

	return nil
}

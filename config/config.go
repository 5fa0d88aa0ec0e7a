package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/boozescore/backend/internal/domain"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Catalog CatalogConfig
	Cache   CacheConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig holds catalog API and ranking configuration
type CatalogConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RateLimit   float64       `mapstructure:"rate_limit"` // requests per second
	NoiseFloor  float64       `mapstructure:"noise_floor"`
	TopN        int           `mapstructure:"top_n"`
	DefaultSort []string      `mapstructure:"default_sort"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory", "sqlite" or "redis"
	Path     string        `mapstructure:"path"` // sqlite database file
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
	Key      string        `mapstructure:"key"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/boozescore/")

	// BOOZESCORE_CACHE_TTL maps to cache.ttl
	v.SetEnvPrefix("BOOZESCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults still apply
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

// loadEnvFile loads a .env file from the working directory if present.
// Variables already set in the environment are not overridden.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Catalog defaults
	v.SetDefault("catalog.base_url", "http://localhost:8000")
	v.SetDefault("catalog.timeout", "30s")
	v.SetDefault("catalog.rate_limit", 2.0)
	v.SetDefault("catalog.noise_floor", 1000.0)
	v.SetDefault("catalog.top_n", 10000)
	v.SetDefault("catalog.default_sort", []string{"-combined_score"})

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.path", "boozescore.db")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "30m")
	v.SetDefault("cache.key", "ProductData")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog base URL is required (set BOOZESCORE_CATALOG_BASE_URL)")
	}

	if _, err := domain.ParseSortSpec(config.Catalog.DefaultSort); err != nil {
		return fmt.Errorf("catalog default sort: %w", err)
	}

	switch config.Cache.Type {
	case "memory":
	case "sqlite":
		if config.Cache.Path == "" {
			return fmt.Errorf("cache path is required when cache type is 'sqlite'")
		}
	case "redis":
		if config.Cache.RedisURL == "" {
			return fmt.Errorf("Redis URL is required when cache type is 'redis'")
		}
	default:
		return fmt.Errorf("cache type must be 'memory', 'sqlite' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got: %s", config.Cache.TTL)
	}

	return nil
}

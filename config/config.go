package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds everything the application needs at startup. It is built
// once in main and handed to the components that need it; nothing in the
// codebase reads the environment after Load returns.
type Config struct {
	ServerAddress string
	BaseURL       string

	JWTSecret string
	TokenTTL  time.Duration

	Database Database
}

// Database holds the PostgreSQL connection settings.
type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Load reads the configuration from environment variables, falling back
// to development defaults.
func Load() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		BaseURL:       getEnv("BASE_URL", "http://localhost:8080"),
		JWTSecret:     getEnv("JWT_SECRET", "dev-only-secret-change-me"),
		TokenTTL:      24 * time.Hour,
		Database: Database{
			Host:     getEnv("DB_HOST", "127.0.0.1"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "linkcut"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "linkcut"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
	}

	if env := os.Getenv("TOKEN_TTL"); env != "" {
		ttl, err := time.ParseDuration(env)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
		}
		cfg.TokenTTL = ttl
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values that would only fail later.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("BASE_URL must not be empty")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

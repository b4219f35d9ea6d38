// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds every runtime setting the application consumes.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Gemini   GeminiConfig
	Logging  LoggingConfig
	Signup   SignupLimitConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig configures the Postgres connection.
type DatabaseConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// AuthConfig configures token issuance and password hashing.
type AuthConfig struct {
	JWTSecret     string
	TokenValidity time.Duration
	BcryptCost    int
}

// GeminiConfig configures the external generation API.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string
	Format string
}

// SignupLimitConfig configures the per-IP signup rate limiter.
type SignupLimitConfig struct {
	Window   time.Duration
	Attempts int
}

// Load reads configuration from environment variables, applying defaults and
// validating required settings.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            envString("HOST", ""),
			Port:            envInt("PORT", 5000),
			ReadTimeout:     envDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    envDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: envDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			DSN:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret:     os.Getenv("JWT_SECRET"),
			TokenValidity: envDuration("TOKEN_VALIDITY", 7*24*time.Hour),
			BcryptCost:    envInt("BCRYPT_COST", 10),
		},
		Gemini: GeminiConfig{
			APIKey:  os.Getenv("GEMINI_API_KEY"),
			Model:   os.Getenv("GEMINI_MODEL"),
			BaseURL: envString("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			Timeout: envDuration("GEMINI_TIMEOUT", 30*time.Second),
		},
		Logging: LoggingConfig{
			Level:  envString("LOG_LEVEL", "info"),
			Format: envString("LOG_FORMAT", "text"),
		},
		Signup: SignupLimitConfig{
			Window:   envDuration("SIGNUP_LIMIT_WINDOW", 15*time.Minute),
			Attempts: envInt("SIGNUP_LIMIT_ATTEMPTS", 5),
		},
	}

	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.Gemini.Model == "" {
		return nil, fmt.Errorf("GEMINI_MODEL is required")
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

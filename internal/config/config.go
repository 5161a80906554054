package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Review   ReviewConfig
	Import   ImportConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration. The secret is shared with the HRIS
// auth service that issues access tokens.
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

// ReviewConfig holds attendance review session configuration
type ReviewConfig struct {
	OverlayPolicy      string
	SessionIdleTimeout time.Duration
	SweepInterval      time.Duration
	RecalcInterval     time.Duration
	RecalcBatchSize    int
}

// ImportConfig holds raw attendance import limits
type ImportConfig struct {
	MaxRows int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "cmlabs-hris"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8081"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Review configuration
	idleTimeout, err := getEnvDuration("REVIEW_SESSION_IDLE_TIMEOUT", "30m")
	if err != nil {
		return nil, err
	}
	sweepInterval, err := getEnvDuration("REVIEW_SWEEP_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}
	recalcInterval, err := getEnvDuration("REVIEW_RECALC_INTERVAL", "1m")
	if err != nil {
		return nil, err
	}
	recalcBatch, err := strconv.Atoi(getEnv("REVIEW_RECALC_BATCH_SIZE", "200"))
	if err != nil {
		return nil, fmt.Errorf("invalid REVIEW_RECALC_BATCH_SIZE: %w", err)
	}

	config.Review = ReviewConfig{
		OverlayPolicy:      strings.ToLower(getEnv("REVIEW_OVERLAY_POLICY", "heuristic")),
		SessionIdleTimeout: idleTimeout,
		SweepInterval:      sweepInterval,
		RecalcInterval:     recalcInterval,
		RecalcBatchSize:    recalcBatch,
	}

	// Import configuration
	maxRows, err := strconv.Atoi(getEnv("IMPORT_MAX_ROWS", "1000"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMPORT_MAX_ROWS: %w", err)
	}
	config.Import = ImportConfig{MaxRows: maxRows}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	switch c.Review.OverlayPolicy {
	case "heuristic", "trust_server":
	default:
		return fmt.Errorf("REVIEW_OVERLAY_POLICY must be heuristic or trust_server")
	}
	if c.Review.SessionIdleTimeout <= 0 || c.Review.SweepInterval <= 0 || c.Review.RecalcInterval <= 0 {
		return fmt.Errorf("review durations must be positive")
	}
	if c.Review.RecalcBatchSize <= 0 {
		return fmt.Errorf("REVIEW_RECALC_BATCH_SIZE must be positive")
	}
	if c.Import.MaxRows <= 0 {
		return fmt.Errorf("IMPORT_MAX_ROWS must be positive")
	}
	return nil
}

func (a AppConfig) IsDevelopment() bool {
	return a.Env == "development"
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info
func (a AppConfig) SlogLevel() slog.Level {
	switch strings.ToLower(a.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

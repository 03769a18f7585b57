package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	JWT       JWTConfig
	App       AppConfig
	SMTP      SMTPConfig
	Storage   StorageConfig
	Renderer  RendererConfig
	Scheduler SchedulerConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Timezone       string
	FrontendURL    string
	AllowedOrigins []string
}

// SMTPConfig holds outbound mail configuration
type SMTPConfig struct {
	Host             string
	Port             int
	Username         string
	Password         string
	From             string
	FromName         string
	DefaultRecipient string
}

// StorageConfig selects and configures the artifact store
type StorageConfig struct {
	Type     string
	BasePath string
	BaseURL  string
	MinIO    MinIOConfig
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// RendererConfig controls the headless browser used for report PDFs
type RendererConfig struct {
	BaseURL       string
	MaxConcurrent int
	Timeout       time.Duration
	SettleDelay   time.Duration
}

type SchedulerConfig struct {
	Interval time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "worktrack"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Timezone:    getEnv("APP_TIMEZONE", "UTC"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}
	config.App.AllowedOrigins = getEnvSlice("CORS_ALLOWED_ORIGINS")
	if len(config.App.AllowedOrigins) == 0 {
		config.App.AllowedOrigins = []string{config.App.FrontendURL}
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// SMTP configuration
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	config.SMTP = SMTPConfig{
		Host:             getEnv("SMTP_HOST", ""),
		Port:             smtpPort,
		Username:         getEnv("SMTP_USERNAME", ""),
		Password:         getEnv("SMTP_PASSWORD", ""),
		From:             getEnv("SMTP_FROM", "reports@localhost"),
		FromName:         getEnv("SMTP_FROM_NAME", "Worktrack Reports"),
		DefaultRecipient: getEnv("REPORT_DEFAULT_RECIPIENT", ""),
	}

	// Storage configuration
	minioSSL, err := strconv.ParseBool(getEnv("MINIO_USE_SSL", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid MINIO_USE_SSL: %w", err)
	}

	config.Storage = StorageConfig{
		Type:     getEnv("STORAGE_TYPE", "local"),
		BasePath: getEnv("STORAGE_BASE_PATH", "./storage"),
		BaseURL:  getEnv("STORAGE_BASE_URL", "http://localhost:8080/storage"),
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			UseSSL:    minioSSL,
			Bucket:    getEnv("MINIO_BUCKET", "worktrack"),
		},
	}

	// Renderer configuration
	maxConcurrent, err := strconv.Atoi(getEnv("RENDERER_MAX_CONCURRENT", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid RENDERER_MAX_CONCURRENT: %w", err)
	}
	renderTimeout, err := time.ParseDuration(getEnv("RENDERER_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RENDERER_TIMEOUT: %w", err)
	}
	settleDelay, err := time.ParseDuration(getEnv("RENDERER_SETTLE_DELAY", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RENDERER_SETTLE_DELAY: %w", err)
	}

	config.Renderer = RendererConfig{
		BaseURL:       getEnv("RENDERER_BASE_URL", config.App.FrontendURL),
		MaxConcurrent: maxConcurrent,
		Timeout:       renderTimeout,
		SettleDelay:   settleDelay,
	}

	// Scheduler configuration
	interval, err := time.ParseDuration(getEnv("REPORT_SCHEDULER_INTERVAL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_SCHEDULER_INTERVAL: %w", err)
	}
	config.Scheduler = SchedulerConfig{Interval: interval}

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
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	switch c.Storage.Type {
	case "local":
	case "minio":
		if c.Storage.MinIO.AccessKey == "" || c.Storage.MinIO.SecretKey == "" {
			return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for minio storage")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE: %s", c.Storage.Type)
	}
	if c.Renderer.MaxConcurrent < 1 {
		return fmt.Errorf("RENDERER_MAX_CONCURRENT must be at least 1")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("REPORT_SCHEDULER_INTERVAL must be positive")
	}
	return nil
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

// Location returns the time zone used for day buckets and schedule checks
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	return strings.Split(value, ",")
}

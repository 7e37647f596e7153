package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Upload   UploadConfig
	LLM      LLMConfig
	Events   EventsConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	// URL is either a postgres DSN (postgres://... or host=...) or a
	// sqlite file path; the repository picks the driver from its shape.
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// ConnectTimeout bounds the startup connect retry loop.
	ConnectTimeout time.Duration
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	HTTPAddr        string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

// AuthConfig holds token and credential configuration
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// UploadConfig holds document upload configuration
type UploadConfig struct {
	Dir      string
	MaxBytes int64
	// VocabularyPath optionally overrides the built-in metric/unit tables.
	VocabularyPath string
}

// LLMConfig holds chat LLM configuration
type LLMConfig struct {
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float32
	Timeout     time.Duration
	MaxRetries  int
}

// EventsConfig holds Kafka event configuration; empty Brokers disables events.
type EventsConfig struct {
	Brokers []string
	Topic   string
}

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is applied first when present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", "balance_sheets.db"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnectTimeout:  getEnvAsDuration("DB_CONNECT_TIMEOUT", 30*time.Second),
		},
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":8000"),
			CORSOrigins:     getEnvAsSlice("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:8000"}),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "change-me-in-production"),
			TokenTTL:  getEnvAsDuration("TOKEN_TTL", 30*time.Minute),
		},
		Upload: UploadConfig{
			Dir:            getEnv("UPLOAD_DIR", "uploads"),
			MaxBytes:       getEnvAsInt64("MAX_UPLOAD_BYTES", 10*1024*1024),
			VocabularyPath: getEnv("VOCABULARY_PATH", ""),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.1),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 30*time.Second),
			MaxRetries:  getEnvAsInt("OPENAI_MAX_RETRIES", 2),
		},
		Events: EventsConfig{
			Brokers: getEnvAsSlice("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC", "balance-sheet-documents"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return NewAppError("CONFIG_ERROR", "DATABASE_URL is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Auth.JWTSecret == "" {
		return NewAppError("CONFIG_ERROR", "JWT_SECRET is required", ErrInvalidInput)
	}
	if c.Auth.TokenTTL <= 0 {
		return NewAppError("CONFIG_ERROR", "TOKEN_TTL must be positive", ErrInvalidInput)
	}
	if c.Upload.MaxBytes <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_UPLOAD_BYTES must be positive", ErrInvalidInput)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds application configuration
type Config struct {
	HTTPPort       int
	GRPCPort       int
	APIToken       string
	StorageBackend string
	DBDriver       string // postgres (lib/pq) or pgx
	DBConnStr      string
	RedisAddress   string // empty disables the cascade lock
	CascadeLockTTL time.Duration
	LogLevel       string
	LogFormat      string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:       getEnvAsInt("HTTP_PORT", 8080),
		GRPCPort:       getEnvAsInt("GRPC_PORT", 9090),
		APIToken:       getEnv("API_TOKEN", "dev-token"),
		StorageBackend: getEnv("STORAGE_BACKEND", StoragePostgres),
		DBDriver:       getEnv("DB_DRIVER", "postgres"),
		DBConnStr:      DatabaseConnString(),
		RedisAddress:   getEnv("REDIS_ADDRESS", ""),
		CascadeLockTTL: time.Duration(getEnvAsInt("CASCADE_LOCK_TTL_SECONDS", 30)) * time.Second,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StoragePostgres:
		if c.DBConnStr == "" {
			return fmt.Errorf("DB_CONN_STR is required for the postgres storage backend")
		}
		if c.DBDriver != "postgres" && c.DBDriver != "pgx" {
			return fmt.Errorf("DB_DRIVER must be postgres or pgx, got %q", c.DBDriver)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %s or %s, got %q", StoragePostgres, StorageMemory, c.StorageBackend)
	}

	if c.APIToken == "" {
		return fmt.Errorf("API_TOKEN is required")
	}
	if c.HTTPPort <= 0 || c.GRPCPort <= 0 {
		return fmt.Errorf("HTTP_PORT and GRPC_PORT must be positive")
	}
	if c.CascadeLockTTL <= 0 {
		return fmt.Errorf("CASCADE_LOCK_TTL_SECONDS must be positive")
	}

	return nil
}

// DatabaseConnString returns DB_CONN_STR, or builds it from individual vars (Docker friendly)
func DatabaseConnString() string {
	if connStr := os.Getenv("DB_CONN_STR"); connStr != "" {
		return connStr
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "hearthledger"),
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
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

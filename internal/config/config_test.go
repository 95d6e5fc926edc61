package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"HTTP_PORT", "GRPC_PORT", "API_TOKEN", "STORAGE_BACKEND", "DB_DRIVER",
		"DB_CONN_STR", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "REDIS_ADDRESS",
		"CASCADE_LOCK_TTL_SECONDS", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 9090, cfg.GRPCPort)
	assert.Equal(t, "dev-token", cfg.APIToken)
	assert.Equal(t, StoragePostgres, cfg.StorageBackend)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=hearthledger sslmode=disable", cfg.DBConnStr)
	assert.Empty(t, cfg.RedisAddress)
	assert.Equal(t, 30*time.Second, cfg.CascadeLockTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "8181")
	t.Setenv("DB_CONN_STR", "postgres://u:p@db:5432/ledger")
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("REDIS_ADDRESS", "redis:6379")
	t.Setenv("CASCADE_LOCK_TTL_SECONDS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8181, cfg.HTTPPort)
	assert.Equal(t, "postgres://u:p@db:5432/ledger", cfg.DBConnStr)
	assert.Equal(t, "pgx", cfg.DBDriver)
	assert.Equal(t, "redis:6379", cfg.RedisAddress)
	assert.Equal(t, 5*time.Second, cfg.CascadeLockTTL)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			HTTPPort:       8080,
			GRPCPort:       9090,
			APIToken:       "token",
			StorageBackend: StoragePostgres,
			DBDriver:       "postgres",
			DBConnStr:      "host=localhost",
			CascadeLockTTL: time.Second,
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "memory backend needs no connection string", mutate: func(c *Config) {
			c.StorageBackend = StorageMemory
			c.DBConnStr = ""
		}},
		{name: "unknown backend", mutate: func(c *Config) { c.StorageBackend = "sqlite" }, errMsg: "STORAGE_BACKEND"},
		{name: "unknown driver", mutate: func(c *Config) { c.DBDriver = "mysql" }, errMsg: "DB_DRIVER"},
		{name: "missing token", mutate: func(c *Config) { c.APIToken = "" }, errMsg: "API_TOKEN"},
		{name: "bad port", mutate: func(c *Config) { c.GRPCPort = 0 }, errMsg: "GRPC_PORT"},
		{name: "bad lock ttl", mutate: func(c *Config) { c.CascadeLockTTL = 0 }, errMsg: "CASCADE_LOCK_TTL_SECONDS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

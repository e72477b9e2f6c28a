package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", BackendMemory)
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_EXPIRATION_HOURS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 720*time.Hour, cfg.JWT.Expiration())
	assert.False(t, cfg.IsProduction())
	assert.NotEmpty(t, cfg.LogConfig())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", BackendPostgres)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_EXPIRATION_HOURS", "2")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("DB_CONN_MAX_LIFETIME", "5m")
	t.Setenv("DB_LOG_LEVEL", "silent")
	t.Setenv("OTEL_STDOUT", "true")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiration())
	assert.Equal(t, 100, cfg.DB.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, logger.Silent, cfg.DB.LogLevel)
	assert.True(t, cfg.Telemetry.Stdout)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Contains(t, cfg.DB.GetDSN(), "dbname=workspace_service")
}

func TestLoadRejectsBadBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "mongo")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("STORE_BACKEND", BackendTables)
	t.Setenv("TABLES_CONNECTION_STRING", "")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("TABLES_CONNECTION_STRING", "UseDevelopmentStorage=true")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendTables, cfg.Store.Backend)
}

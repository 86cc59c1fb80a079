package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/stock-api/inventory"
)

func setMySQLEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DRIVER", DriverMySQL)
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "stock")
	t.Setenv("DB_PASS", "secret")
	t.Setenv("DB_NAME", "stockdb")
}

func TestLoad_Defaults(t *testing.T) {
	setMySQLEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("DB_PORT", "")
	t.Setenv("STOCK_MODE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "3306", cfg.DBPort)
	assert.Equal(t, inventory.ModeFlat, cfg.Mode)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoad_MissingRequiredMySQLParams(t *testing.T) {
	setMySQLEnv(t)
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_NAME", "")

	_, err := Load()
	require.Error(t, err)

	// The diagnostic names every missing variable for the operator.
	assert.Contains(t, err.Error(), "DB_HOST")
	assert.Contains(t, err.Error(), "DB_NAME")
	assert.NotContains(t, err.Error(), "DB_USER")
}

func TestLoad_SQLiteNeedsNoConnectionParams(t *testing.T) {
	t.Setenv("DB_DRIVER", DriverSQLite)
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("DB_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "stock.db", cfg.DBPath)
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")
}

func TestLoad_NormalizedMode(t *testing.T) {
	setMySQLEnv(t)
	t.Setenv("STOCK_MODE", "normalized")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, inventory.ModeNormalized, cfg.Mode)
}

func TestLoad_InvalidMode(t *testing.T) {
	setMySQLEnv(t)
	t.Setenv("STOCK_MODE", "hybrid")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_CORSOriginList(t *testing.T) {
	setMySQLEnv(t)
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
}

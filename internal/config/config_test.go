package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate blanks every variable Load reads so the host environment does not leak in.
func isolate(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "APP_ENV", "DATABASE_URL", "DATABASE_NAME", "STORE_DRIVER",
		"LOG_LEVEL", "LOG_FORMAT", "CORS_ALLOWED_ORIGINS", "HEALTH_CHECK_SCHEDULE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("DATABASE_URL", "mongodb://localhost:27017")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.ServerPort)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, "mongodb://localhost:27017", cfg.DatabaseURL)
	assert.Equal(t, "my_database", cfg.DatabaseName)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "@every 30s", cfg.HealthSchedule)
	assert.False(t, cfg.IsProduction())
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	isolate(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DatabaseURL")
}

func TestLoadOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("DATABASE_URL", "file:posts.db")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("PORT", "8081")
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.ServerPort)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat, "production defaults to JSON logs")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.IsProduction())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	for key, value := range map[string]string{
		"STORE_DRIVER": "postgres",
		"LOG_LEVEL":    "verbose",
		"PORT":         "70000",
		"LOG_FORMAT":   "xml",
	} {
		t.Run(key, func(t *testing.T) {
			isolate(t)
			t.Setenv("DATABASE_URL", "mongodb://localhost:27017")
			t.Setenv(key, value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload" // loads .env into the process environment
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	ServerPort         int      `koanf:"port" validate:"min=1,max=65535"`
	Env                string   `koanf:"app_env" validate:"required"`
	DatabaseURL        string   `koanf:"database_url" validate:"required"`
	DatabaseName       string   `koanf:"database_name" validate:"required"`
	StoreDriver        string   `koanf:"store_driver" validate:"oneof=mongo sqlite"`
	LogLevel           string   `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogFormat          string   `koanf:"log_format" validate:"oneof=console json"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
	HealthSchedule     string   `koanf:"health_check_schedule" validate:"required"`
}

// defaults mirror what a developer gets with nothing but DATABASE_URL set.
func defaults() *Config {
	return &Config{
		ServerPort:         3000,
		Env:                "development",
		DatabaseName:       "my_database",
		StoreDriver:        DriverMongo,
		LogLevel:           "info",
		LogFormat:          "console",
		CORSAllowedOrigins: []string{"*"},
		HealthSchedule:     "@every 30s",
	}
}

// Load reads configuration from environment variables (and .env, if present),
// applies defaults and validates the result. A missing DATABASE_URL is an error.
func Load() (*Config, error) {
	k := koanf.New(".")

	keys := map[string]bool{
		"port": true, "app_env": true, "database_url": true, "database_name": true,
		"store_driver": true, "log_level": true, "log_format": true,
		"cors_allowed_origins": true, "health_check_schedule": true,
	}

	err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(key)
		if !keys[key] || value == "" {
			return "", nil
		}
		if key == "cors_allowed_origins" {
			return key, splitList(value)
		}
		return key, value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}

	if cfg.LogFormat == "console" && cfg.IsProduction() && !k.Exists("log_format") {
		cfg.LogFormat = "json"
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Addr is the listen address; the server binds all interfaces.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

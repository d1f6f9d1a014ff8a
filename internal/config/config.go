// Package config loads server configuration from an optional YAML file,
// a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/team-calendar/backend/internal/planner"
)

// Session backends.
const (
	SessionBackendSQLite = "sqlite"
	SessionBackendRedis  = "redis"
)

// Config holds all configuration values.
type Config struct {
	Addr      string `mapstructure:"ADDR"`
	DataDir   string `mapstructure:"DATA_DIR"`
	StaticDir string `mapstructure:"STATIC_DIR"`
	Env       string `mapstructure:"ENV"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`

	JWTSecret       string `mapstructure:"JWT_SECRET"`
	SessionTTLHours int    `mapstructure:"SESSION_TTL_HOURS"`
	SessionBackend  string `mapstructure:"SESSION_BACKEND"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	Timezone      string `mapstructure:"TIMEZONE"`
	DefaultLocale string `mapstructure:"DEFAULT_LOCALE"`

	PlannerStartHour       int `mapstructure:"PLANNER_START_HOUR"`
	PlannerEndHour         int `mapstructure:"PLANNER_END_HOUR"`
	PlannerIntervalMinutes int `mapstructure:"PLANNER_INTERVAL_MINUTES"`

	// SettingsEditable lets signed-in users replace the planner window
	// through the API. Otherwise the window comes from config alone.
	SettingsEditable bool `mapstructure:"SETTINGS_EDITABLE"`

	LoginRatePerMin         int `mapstructure:"LOGIN_RATE_PER_MIN"`
	SessionPruneIntervalMin int `mapstructure:"SESSION_PRUNE_INTERVAL_MIN"`

	location *time.Location
}

var defaults = map[string]any{
	"ADDR":                       ":8080",
	"DATA_DIR":                   "./data",
	"STATIC_DIR":                 "./static",
	"ENV":                        "development",
	"LOG_LEVEL":                  "info",
	"JWT_SECRET":                 "",
	"SESSION_TTL_HOURS":          24,
	"SESSION_BACKEND":            SessionBackendSQLite,
	"REDIS_ADDR":                 "localhost:6379",
	"REDIS_PASSWORD":             "",
	"REDIS_DB":                   0,
	"TIMEZONE":                   "UTC",
	"DEFAULT_LOCALE":             "en",
	"PLANNER_START_HOUR":         6,
	"PLANNER_END_HOUR":           22,
	"PLANNER_INTERVAL_MINUTES":   60,
	"SETTINGS_EDITABLE":          false,
	"LOGIN_RATE_PER_MIN":         10,
	"SESSION_PRUNE_INTERVAL_MIN": 15,
}

// developmentSecret signs tokens when no JWT_SECRET is configured outside
// production.
const developmentSecret = "a-hard-to-guess-string"

// Load reads configuration. When path is empty a config.yaml is looked up
// in the working directory and ./config; a missing file is not an error.
func Load(path string) (*Config, error) {
	// .env is optional when variables come from the environment.
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values and resolves derived settings.
func (c *Config) Validate() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("config: invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.location = loc

	c.SessionBackend = strings.ToLower(strings.TrimSpace(c.SessionBackend))
	switch c.SessionBackend {
	case SessionBackendSQLite:
	case SessionBackendRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return errors.New("config: REDIS_ADDR is required for the redis session backend")
		}
	default:
		return fmt.Errorf("config: unknown SESSION_BACKEND %q", c.SessionBackend)
	}

	if strings.TrimSpace(c.JWTSecret) == "" {
		if c.IsProduction() {
			return errors.New("config: JWT_SECRET is required in production")
		}
		c.JWTSecret = developmentSecret
	}

	if c.SessionTTLHours <= 0 {
		c.SessionTTLHours = 24
	}
	if c.LoginRatePerMin <= 0 {
		c.LoginRatePerMin = 10
	}
	if c.SessionPruneIntervalMin <= 0 {
		c.SessionPruneIntervalMin = 15
	}

	if err := c.Planner().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Location returns the reference clock for day boundaries.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// Planner returns the configured business-hour window.
func (c *Config) Planner() planner.Settings {
	return planner.Settings{
		StartHour:       c.PlannerStartHour,
		EndHour:         c.PlannerEndHour,
		IntervalMinutes: c.PlannerIntervalMinutes,
	}
}

// SessionTTL is the lifetime of an issued session token.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// DatabasePath is the SQLite file inside the data directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "team-calendar.db")
}

// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the full application configuration, loaded from an optional
// YAML file with environment variable overrides.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Retention RetentionConfig `yaml:"retention"`
	Map       MapConfig       `yaml:"map"`
	Alerts    AlertsConfig    `yaml:"alerts"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port int `yaml:"port" env:"PORT" env-default:"8000"`

	// AdminKey protects the admin CRUD endpoints. Required.
	AdminKey string `yaml:"adminKey" env:"ADMIN_KEY"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" env:"DATABASE_PATH" env-default:"safecast_data.db"`
}

type UpstreamConfig struct {
	// BaseURL of the telemetry API, e.g. https://tt.safecast.org
	BaseURL string `yaml:"baseUrl" env:"SAFECAST_API_BASE" env-default:"https://tt.safecast.org"`

	// DeviceURNs is the seed list of tracked devices. Devices added through
	// the admin API are tracked in addition to these.
	DeviceURNs []string `yaml:"deviceUrns" env:"DEVICE_URNS" env-separator:"," env-default:"geigiecast-zen:65049,geigiecast:63209"`

	PollInterval   time.Duration `yaml:"pollInterval" env:"POLL_INTERVAL" env-default:"5m"`
	RequestTimeout time.Duration `yaml:"requestTimeout" env:"REQUEST_TIMEOUT" env-default:"30s"`

	// MaxRetries bounds the per-request backoff retry inside a poll cycle.
	MaxRetries int `yaml:"maxRetries" env:"FETCH_MAX_RETRIES" env-default:"3"`
}

type RetentionConfig struct {
	// MaxDataDays is how far back measurements and locations are kept and
	// how far back charts may reach.
	MaxDataDays int `yaml:"maxDataDays" env:"MAX_DATA_DAYS" env-default:"30"`

	CleanupInterval time.Duration `yaml:"cleanupInterval" env:"CLEANUP_INTERVAL" env-default:"1h"`
}

type MapConfig struct {
	CenterLat      float64 `yaml:"centerLat" env:"MAP_CENTER_LAT" env-default:"43.9"`
	CenterLon      float64 `yaml:"centerLon" env:"MAP_CENTER_LON" env-default:"-79.0"`
	Zoom           int     `yaml:"zoom" env:"MAP_ZOOM" env-default:"10"`
	RefreshSeconds int     `yaml:"refreshSeconds" env:"AUTO_REFRESH_SECONDS" env-default:"300"`

	// ExternalHistoryURL may contain the {device_urn} placeholder.
	ExternalHistoryURL string `yaml:"externalHistoryUrl" env:"EXTERNAL_HISTORY_URL" env-default:"https://dashboard.radnote.org/d/cdq671mxg2cjka/radnote-overview?var-device=dev:{device_urn}"`
}

type AlertsConfig struct {
	Enabled bool `yaml:"enabled" env:"ALERTS_ENABLED" env-default:"false"`

	// ThresholdCPM triggers a notification when a device's newest reading
	// meets or exceeds it.
	ThresholdCPM float64 `yaml:"thresholdCpm" env:"ALERT_THRESHOLD_CPM" env-default:"100"`

	// Cooldown is the minimum interval between notifications per device.
	Cooldown time.Duration `yaml:"cooldown" env:"ALERT_COOLDOWN" env-default:"1h"`

	Email EmailConfig `yaml:"email"`
	SMS   SMSConfig   `yaml:"sms"`
}

type EmailConfig struct {
	Enabled  bool     `yaml:"enabled" env:"EMAIL_ENABLED" env-default:"false"`
	Server   string   `yaml:"server" env:"EMAIL_SERVER"`
	Port     int      `yaml:"port" env:"EMAIL_PORT" env-default:"587"`
	Username string   `yaml:"username" env:"EMAIL_USERNAME"`
	Password string   `yaml:"password" env:"EMAIL_PASSWORD"`
	From     string   `yaml:"from" env:"EMAIL_FROM"`
	To       []string `yaml:"to" env:"EMAIL_TO" env-separator:","`
}

type SMSConfig struct {
	Enabled    bool     `yaml:"enabled" env:"SMS_ENABLED" env-default:"false"`
	AccountSID string   `yaml:"accountSid" env:"SMS_ACCOUNT_SID"`
	AuthToken  string   `yaml:"authToken" env:"SMS_AUTH_TOKEN"`
	From       string   `yaml:"from" env:"SMS_FROM"`
	To         []string `yaml:"to" env:"SMS_TO" env-separator:","`

	// APIBase is overridable for tests.
	APIBase string `yaml:"apiBase" env:"SMS_API_BASE" env-default:"https://api.twilio.com"`
}

type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`

	// File enables rotating file output when set; empty logs to stderr.
	File       string `yaml:"file" env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"maxSizeMb" env:"LOG_MAX_SIZE_MB" env-default:"50"`
	MaxBackups int    `yaml:"maxBackups" env:"LOG_MAX_BACKUPS" env-default:"3"`
	MaxAgeDays int    `yaml:"maxAgeDays" env:"LOG_MAX_AGE_DAYS" env-default:"28"`
}

// Load parses flags, reads the optional YAML config file, applies
// environment overrides, and validates the result.
func Load(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("map-louis", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to YAML config file (optional)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *configPath != "" {
		if err := cleanenv.ReadConfig(*configPath, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", *configPath, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks settings that have no safe default.
func (c Config) Validate() error {
	if c.Server.AdminKey == "" {
		return errors.New("ADMIN_KEY required")
	}
	if c.Upstream.BaseURL == "" {
		return errors.New("upstream base URL required")
	}
	if c.Retention.MaxDataDays < 1 {
		return errors.New("maxDataDays must be at least 1")
	}
	if c.Alerts.Enabled && c.Alerts.Email.Enabled {
		if c.Alerts.Email.Server == "" || c.Alerts.Email.From == "" || len(c.Alerts.Email.To) == 0 {
			return errors.New("email alerts enabled but server/from/to incomplete")
		}
	}
	if c.Alerts.Enabled && c.Alerts.SMS.Enabled {
		if c.Alerts.SMS.AccountSID == "" || c.Alerts.SMS.From == "" || len(c.Alerts.SMS.To) == 0 {
			return errors.New("sms alerts enabled but accountSid/from/to incomplete")
		}
	}
	return nil
}


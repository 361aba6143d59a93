// Package config provides configuration management for clipdeck using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 10
	defaultConnMaxIdleTime = 30 * time.Minute
	defaultHTTPTimeout     = 60 * time.Second
	defaultRetryAttempts   = 3
	defaultRetryDelay      = 2 * time.Second
	defaultMaxUploadBytes  = 2 * 1024 * 1024 * 1024 // 2GB
	defaultThumbTimeout    = 30 * time.Second
)

// Config holds all configuration for the application.
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Ingest     IngestConfig     `mapstructure:"ingest"`
	Thumbnails ThumbnailsConfig `mapstructure:"thumbnails"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, postgres, mysql
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	LogLevel        string        `mapstructure:"log_level"` // silent, error, warn, info
}

// StorageConfig holds file storage configuration.
type StorageConfig struct {
	// BaseDir is the root of the sandboxed data directory.
	BaseDir string `mapstructure:"base_dir"`

	// MediaDir is the subdirectory for locally stored media files.
	MediaDir string `mapstructure:"media_dir"`

	// ThumbDir is the subdirectory for generated thumbnails.
	ThumbDir string `mapstructure:"thumb_dir"`

	// PublicBaseURL is the externally reachable URL under which locally
	// stored files are served, e.g. "https://media.example.com".
	PublicBaseURL string `mapstructure:"public_base_url"`

	// MaxUploadSize caps accepted upload sizes. Supports human-readable
	// values like "500MB" or "2GB" as well as raw byte counts.
	MaxUploadSize ByteSize `mapstructure:"max_upload_size"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// IngestConfig holds media-file ingestion configuration.
type IngestConfig struct {
	// HTTPTimeout bounds metadata probes and thumbnail fetches per request.
	HTTPTimeout   time.Duration `mapstructure:"http_timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
}

// ThumbnailsConfig holds thumbnail generation configuration.
type ThumbnailsConfig struct {
	// Sizes maps size names to "WxH" dimension strings, e.g. "l" -> "410x231".
	Sizes map[string]string `mapstructure:"sizes"`

	// FetchTimeout bounds remote thumbnail downloads.
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration.
// Environment variables are prefixed with CLIPDECK_ and use underscores
// for nesting. Example: CLIPDECK_DATABASE_DSN=clipdeck.db.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/clipdeck")
		v.AddConfigPath("$HOME/.clipdeck")
	}

	v.SetEnvPrefix("CLIPDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found is OK - defaults and env vars apply.
	}

	// Passing DecodeHook replaces viper's defaults, so the duration and
	// slice hooks come along explicitly. The text hook lets ByteSize parse
	// human-readable values like "500MB".
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults configures default values for all configuration options.
// This should be called before reading the config file.
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "clipdeck.db")
	v.SetDefault("database.max_open_conns", defaultMaxOpenConns)
	v.SetDefault("database.max_idle_conns", defaultMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", defaultConnMaxIdleTime)
	v.SetDefault("database.log_level", "warn")

	// Storage defaults
	v.SetDefault("storage.base_dir", "./data")
	v.SetDefault("storage.media_dir", "media")
	v.SetDefault("storage.thumb_dir", "thumbs")
	v.SetDefault("storage.public_base_url", "http://localhost:8080")
	v.SetDefault("storage.max_upload_size", defaultMaxUploadBytes)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Ingest defaults
	v.SetDefault("ingest.http_timeout", defaultHTTPTimeout)
	v.SetDefault("ingest.retry_attempts", defaultRetryAttempts)
	v.SetDefault("ingest.retry_delay", defaultRetryDelay)

	// Thumbnail defaults match the player sizes shipped with the web frontend.
	v.SetDefault("thumbnails.sizes", map[string]string{
		"s": "128x72",
		"m": "262x147",
		"l": "410x231",
	})
	v.SetDefault("thumbnails.fetch_timeout", defaultThumbTimeout)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	validDrivers := map[string]bool{"sqlite": true, "postgres": true, "mysql": true}
	if !validDrivers[c.Database.Driver] {
		return fmt.Errorf("database.driver must be one of: sqlite, postgres, mysql")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	if c.Storage.BaseDir == "" {
		return fmt.Errorf("storage.base_dir is required")
	}
	if c.Storage.MaxUploadSize < 0 {
		return fmt.Errorf("storage.max_upload_size must not be negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	for name, dims := range c.Thumbnails.Sizes {
		if _, _, err := ParseDimensions(dims); err != nil {
			return fmt.Errorf("thumbnails.sizes[%s]: %w", name, err)
		}
	}

	return nil
}

// MediaPath returns the full path to the local media directory.
func (c *StorageConfig) MediaPath() string {
	return filepath.Join(c.BaseDir, c.MediaDir)
}

// ThumbPath returns the full path to the thumbnail directory.
func (c *StorageConfig) ThumbPath() string {
	return filepath.Join(c.BaseDir, c.ThumbDir)
}

// ParseDimensions parses a "WxH" dimension string into width and height.
func ParseDimensions(s string) (int, int, error) {
	var w, h int
	if _, err := fmt.Sscanf(strings.ToLower(strings.TrimSpace(s)), "%dx%d", &w, &h); err != nil {
		return 0, 0, fmt.Errorf("invalid dimensions %q (want WxH): %w", s, err)
	}
	if w < 1 || h < 1 {
		return 0, 0, fmt.Errorf("invalid dimensions %q: width and height must be positive", s)
	}
	return w, h, nil
}

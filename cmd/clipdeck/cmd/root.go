// Package cmd implements the CLI commands for clipdeck.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clipdeck/clipdeck/internal/config"
	"github.com/clipdeck/clipdeck/internal/observability"
	"github.com/clipdeck/clipdeck/internal/version"
)

// cfgFile holds the config file path from the CLI flag.
var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "clipdeck",
	Short:   "Self-hosted audio/video hosting backend",
	Version: version.Short(),
	Long: `clipdeck manages a library of audio and video media across pluggable
storage backends: local disk, remote FTP, and embed providers such as
YouTube and Vimeo.

Uploads and pasted URLs are run through the configured storage engines in
order until one claims them; metadata, thumbnails, and playback locations
follow from the engine that stored the file.`,
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	// PersistentPreRunE set here to avoid an initialization cycle
	// (initLogging references rootCmd.PersistentFlags).
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		return initLogging()
	}

	// These flags are not bound to viper: Changed() decides whether they
	// override config/env, which preserves flag > env > config > default.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ., $HOME, /etc/clipdeck)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (text, json)")
}

// loadConfig reads the configuration for commands that need the full stack.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// initLogging configures the default slog logger. Sensitive values are
// redacted by the observability handler.
func initLogging() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	level := cfg.Logging.Level
	format := cfg.Logging.Format

	if rootCmd.PersistentFlags().Changed("log-level") {
		level, _ = rootCmd.PersistentFlags().GetString("log-level")
	}
	if rootCmd.PersistentFlags().Changed("log-format") {
		format, _ = rootCmd.PersistentFlags().GetString("log-format")
	}

	logCfg := cfg.Logging
	logCfg.Level = strings.ToLower(level)
	logCfg.Format = strings.ToLower(format)
	if logCfg.Level == "warning" {
		logCfg.Level = "warn"
	}

	logger := observability.NewLoggerWithWriter(logCfg, os.Stderr)
	observability.SetDefault(logger)
	return nil
}

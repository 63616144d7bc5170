package config

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// Load reads the configuration from config.toml and returns a Config struct.
// An explicit path overrides the search in $HOME/.config/bayin and the
// working directory.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath("$HOME/.config/bayin/")
		v.AddConfigPath(".")
	}

	// Set defaults from DefaultConfig
	defaults := DefaultConfig()
	v.SetDefault("library.refresh_schedule", defaults.Library.RefreshSchedule)
	v.SetDefault("storage.path", defaults.Storage.Path)
	v.SetDefault("player.http_timeout", defaults.Player.HTTPTimeout)
	v.SetDefault("client.id", defaults.Client.ID)
	v.SetDefault("client.api_version", defaults.Client.APIVersion)
	v.SetDefault("logging.level", defaults.Logging.Level)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// NewLogger builds the application logger from the logging configuration.
// Unknown level names fall back to info.
func NewLogger(cfg LoggingConfig) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	logger.SetLevel(parseLevel(cfg.Level))
	return logger
}

func parseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

package logger

import (
	"errors"
	"slices"
	"strings"
)

// Config defines the logger configuration
type Config struct {
	Level  string     `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string     `mapstructure:"format" yaml:"format"` // json, console
	Output string     `mapstructure:"output" yaml:"output"` // stderr, file, both
	File   FileConfig `mapstructure:",squash" yaml:",inline"`
}

// FileConfig defines file output configuration
type FileConfig struct {
	Filename   string `mapstructure:"file" yaml:"file"`               // log file path
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`       // max size in MB
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`         // max age in days
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"` // max backup files
	Compress   bool   `mapstructure:"compress" yaml:"compress"`       // compress rotated files
}

// DefaultConfig returns default logger configuration.
// The CLI writes results to stdout, so logs stay out of the terminal
// unless asked for.
func DefaultConfig() *Config {
	return &Config{
		Level:  "warn",
		Format: "console",
		Output: "file",
		File: FileConfig{
			MaxSize:    10,
			MaxAge:     30,
			MaxBackups: 5,
			Compress:   true,
		},
	}
}

var validLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the logger configuration
func (c *Config) Validate() error {
	if !slices.Contains(validLevels, strings.ToLower(c.Level)) {
		return errors.New("invalid log level, must be one of: debug, info, warn, error")
	}

	if c.Format != "json" && c.Format != "console" {
		return errors.New("invalid log format, must be 'json' or 'console'")
	}

	if c.Output != "stderr" && c.Output != "file" && c.Output != "both" {
		return errors.New("invalid log output, must be 'stderr', 'file' or 'both'")
	}

	if c.Output == "file" || c.Output == "both" {
		if c.File.Filename == "" {
			return errors.New("log file is required when output is 'file' or 'both'")
		}
		if c.File.MaxSize <= 0 {
			return errors.New("log file max_size must be greater than 0")
		}
		if c.File.MaxBackups < 0 {
			return errors.New("log file max_backups must be greater than or equal to 0")
		}
	}

	return nil
}

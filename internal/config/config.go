// Package config loads CLI configuration from file, environment, and
// defaults, and validates it.
package config

import (
	"errors"
	"log/slog"
)

// Config is the top-level configuration for the relations-sqlite CLI.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Models    string          `mapstructure:"models"`
	Source    SourceConfig    `mapstructure:"source"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// SourceConfig holds the SQLite source settings.
type SourceConfig struct {
	Name         string `mapstructure:"name"`
	Database     string `mapstructure:"database"`
	StmtCapacity int    `mapstructure:"stmt_capacity"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds OTLP export settings. An empty endpoint disables
// export.
type TelemetryConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Headers     string  `mapstructure:"headers"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
	Environment string  `mapstructure:"environment"`
}

// sampleRatioMax is the upper bound for the trace sampling ratio.
const sampleRatioMax = 1.0

// Sentinel errors for configuration validation.
var (
	// ErrInvalidSourceName indicates the source name is empty.
	ErrInvalidSourceName = errors.New("source.name must not be empty")
	// ErrInvalidStmtCapacity indicates the statement cache capacity is negative.
	ErrInvalidStmtCapacity = errors.New("source.stmt_capacity must be non-negative")
	// ErrInvalidLogLevel indicates the log level is not a known severity.
	ErrInvalidLogLevel = errors.New("logging.level must be one of debug, info, warn, error")
	// ErrInvalidSampleRatio indicates the sampling ratio is out of range.
	ErrInvalidSampleRatio = errors.New("telemetry.sample_ratio must be between 0 and 1")
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if c.Source.Name == "" {
		return ErrInvalidSourceName
	}

	if c.Source.StmtCapacity < 0 {
		return ErrInvalidStmtCapacity
	}

	if _, ok := logLevels[c.Logging.Level]; !ok {
		return ErrInvalidLogLevel
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > sampleRatioMax {
		return ErrInvalidSampleRatio
	}

	return nil
}

// SlogLevel returns the configured minimum slog severity. Validate has
// already rejected unknown levels.
func (l *LoggingConfig) SlogLevel() slog.Level {
	return logLevels[l.Level]
}

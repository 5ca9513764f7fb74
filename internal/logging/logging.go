// Package logging builds the structured logger shared by the pipeline.
package logging

import (
	"go.uber.org/zap"
)

// Config holds logging configuration.
type Config struct {
	Level       string
	Format      string // "json" or "console"
	Development bool
}

// New creates a zap logger from config. An unparsable level falls back to
// info rather than failing the run.
func New(config Config) (*zap.Logger, error) {
	var zapConfig zap.Config
	if config.Development {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(config.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.Level = level

	if config.Format == "console" {
		zapConfig.Encoding = "console"
	} else {
		zapConfig.Encoding = "json"
	}

	return zapConfig.Build()
}

// NewDefault creates a logger with sensible defaults, falling back to a
// basic production logger if the config cannot be built.
func NewDefault() *zap.Logger {
	logger, err := New(Config{Level: "info", Format: "console"})
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}

package main

import (
	"log/slog"
	"os"
)

// SetupLogger configures structured logging based on environment.
func SetupLogger(config *Config) *slog.Logger {
	logLevel := slog.LevelInfo
	if config.Env == "development" || config.LogLevel == "debug" {
		logLevel = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

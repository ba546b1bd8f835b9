package logger

import (
	"io"
	"log/slog"
	"strings"

	"github.com/alkime/voiceover/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogger configures structured logging based on environment and
// installs the result as the default logger.
func SetupLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	opts := &slog.HandlerOptions{
		Level: Level(cfg),
	}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)

	// Set as default logger
	slog.SetDefault(logger)

	return logger
}

// Level determines the log level from the configuration. Unknown or empty
// levels fall back to info in every environment.
func Level(cfg *config.Config) slog.Level {
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	return slog.LevelInfo
}

// FileWriter returns a rotating log file writer. The TUI owns stdout while
// it runs, so logs go here instead.
func FileWriter(path string) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
	}
}

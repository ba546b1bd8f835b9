package logger_test

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/alkime/voiceover/internal/config"
	"github.com/alkime/voiceover/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		expected slog.Level
	}{
		{name: "debug", cfg: config.Config{LogLevel: "debug"}, expected: slog.LevelDebug},
		{name: "warn", cfg: config.Config{LogLevel: "WARN"}, expected: slog.LevelWarn},
		{name: "error", cfg: config.Config{LogLevel: "error"}, expected: slog.LevelError},
		{name: "info", cfg: config.Config{LogLevel: "info"}, expected: slog.LevelInfo},
		{name: "development without level", cfg: config.Config{Env: "development"}, expected: slog.LevelInfo},
		{name: "unknown level", cfg: config.Config{Env: "development", LogLevel: "verbose"}, expected: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, logger.Level(&tt.cfg))
		})
	}
}

func TestSetupLogger_ProductionUsesJSON(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	log := logger.SetupLogger(&config.Config{Env: config.EnvProduction, LogLevel: "info"}, &buf)

	log.Info("hello", "project", 7)

	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"project":7`)
}

func TestSetupLogger_DevelopmentUsesText(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	log := logger.SetupLogger(&config.Config{Env: "development", LogLevel: "debug"}, &buf)

	log.Debug("polling", "attempt", 3)

	assert.Contains(t, buf.String(), "msg=polling")
	assert.Contains(t, buf.String(), "attempt=3")
}

func TestFileWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voiceover.log")

	w := logger.FileWriter(path)
	_, err := w.Write([]byte("line\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.FileExists(t, path)
}

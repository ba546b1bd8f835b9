package config_test

import (
	"testing"
	"time"

	"github.com/alkime/voiceover/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env here

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "/api", cfg.APIBaseURL)
	assert.Equal(t, config.TokenStoreFile, cfg.TokenStore)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, 20, cfg.PollAttempts)
	assert.Equal(t, time.Duration(0), cfg.HTTPTimeout)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VOICEOVER_API_BASE_URL", "https://narrate.example.com/v1")
	t.Setenv("VOICEOVER_TOKEN_STORE", "memory")
	t.Setenv("VOICEOVER_POLL_INTERVAL", "250ms")
	t.Setenv("VOICEOVER_POLL_ATTEMPTS", "5")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://narrate.example.com/v1", cfg.APIBaseURL)
	assert.Equal(t, config.TokenStoreMemory, cfg.TokenStore)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 5, cfg.PollAttempts)
}

func TestLoadConfig_InvalidTokenStore(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VOICEOVER_TOKEN_STORE", "cookie")

	_, err := config.LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token store")
}

func TestConfig_ResolveBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		base     string
		origin   string
		expected string
		errMsg   string
	}{
		{
			name:     "relative base joins origin",
			base:     "/api",
			origin:   "http://localhost:8000",
			expected: "http://localhost:8000/api",
		},
		{
			name:     "absolute base ignores origin",
			base:     "https://api.example.com/",
			origin:   "http://localhost:8000",
			expected: "https://api.example.com",
		},
		{
			name:     "origin with path is replaced by rooted base",
			base:     "/api",
			origin:   "https://example.com/app/",
			expected: "https://example.com/api",
		},
		{
			name:   "relative origin rejected",
			base:   "/api",
			origin: "localhost",
			errMsg: "must be an absolute URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &config.Config{APIBaseURL: tt.base, Origin: tt.origin}
			got, err := cfg.ResolveBaseURL()

			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

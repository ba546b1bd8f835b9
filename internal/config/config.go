package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvProduction represents the production environment.
	EnvProduction = "production"

	// envPrefix is prepended to every variable name, e.g. VOICEOVER_API_BASE_URL.
	envPrefix = "VOICEOVER"
)

// Token store backends.
const (
	TokenStoreKeyring = "keyring"
	TokenStoreFile    = "file"
	TokenStoreMemory  = "memory"
)

// Config holds all client configuration.
type Config struct {
	Env      string `envconfig:"ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// API settings. A relative APIBaseURL is resolved against Origin.
	APIBaseURL  string        `envconfig:"API_BASE_URL" default:"/api"`
	Origin      string        `envconfig:"ORIGIN" default:"http://localhost:8000"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"0s"`

	// Local state
	TokenStore  string `envconfig:"TOKEN_STORE" default:"file"`
	StateDir    string `envconfig:"STATE_DIR"`
	DownloadDir string `envconfig:"DOWNLOAD_DIR"`

	// Polling
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"1s"`
	PollAttempts int           `envconfig:"POLL_ATTEMPTS" default:"20"`
}

// LoadConfig loads configuration from .env file and environment variables.
func LoadConfig() (*Config, error) {
	// Try to load .env file (optional)
	if err := godotenv.Load(); err != nil {
		// Not an error if file doesn't exist
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	// Parse environment variables into config struct
	var config Config
	if err := envconfig.Process(envPrefix, &config); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	switch c.TokenStore {
	case TokenStoreKeyring, TokenStoreFile, TokenStoreMemory:
	default:
		return fmt.Errorf("invalid token store %q: must be keyring, file or memory", c.TokenStore)
	}

	if c.PollInterval < 0 {
		return errors.New("poll interval cannot be negative")
	}

	if c.PollAttempts <= 0 {
		return errors.New("poll attempts must be positive")
	}

	if _, err := c.ResolveBaseURL(); err != nil {
		return err
	}

	return nil
}

// ResolveBaseURL returns the absolute API base address. An absolute
// APIBaseURL is used as-is; a relative one is joined onto Origin.
func (c *Config) ResolveBaseURL() (string, error) {
	base, err := url.Parse(strings.TrimSpace(c.APIBaseURL))
	if err != nil {
		return "", fmt.Errorf("invalid API base URL %q: %w", c.APIBaseURL, err)
	}

	if base.IsAbs() {
		return strings.TrimRight(base.String(), "/"), nil
	}

	origin, err := url.Parse(strings.TrimSpace(c.Origin))
	if err != nil {
		return "", fmt.Errorf("invalid origin %q: %w", c.Origin, err)
	}

	if !origin.IsAbs() || origin.Host == "" {
		return "", fmt.Errorf("origin %q must be an absolute URL when the API base is relative", c.Origin)
	}

	return strings.TrimRight(origin.ResolveReference(base).String(), "/"), nil
}

// IsProduction reports whether the client runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

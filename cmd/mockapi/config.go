package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the mock server configuration.
type Config struct {
	Env  string `envconfig:"ENV" default:"development"`
	Port string `envconfig:"PORT" default:"8000"`

	// Seeded account
	DemoEmail    string `envconfig:"DEMO_EMAIL" default:"demo@example.com"`
	DemoPassword string `envconfig:"DEMO_PASSWORD" default:"demo123"`

	// Project lifecycle: polls before a project resolves, and an optional
	// error every generation fails with.
	ResolveAfter int    `envconfig:"RESOLVE_AFTER" default:"3"`
	FailWith     string `envconfig:"FAIL_WITH"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig loads configuration from .env file and environment variables.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	var config Config
	if err := envconfig.Process("MOCKAPI", &config); err != nil {
		return nil, err
	}

	return &config, nil
}

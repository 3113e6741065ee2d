// Package config provides configuration management for the configurator service.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// ConfiguratorConfig holds configuration for the HTTP configurator service.
type ConfiguratorConfig struct {
	Host           string
	Port           int
	DatabaseURL    string
	PricingBaseURL string
	PricingAPIKey  string
	PricingTimeout time.Duration
	SeedFile       string
}

// DefaultConfiguratorConfig returns configuration with default values.
func DefaultConfiguratorConfig() *ConfiguratorConfig {
	return &ConfiguratorConfig{
		Host:           "0.0.0.0",
		Port:           8080,
		DatabaseURL:    "sqlite://./configurator.db",
		PricingBaseURL: "",
		PricingAPIKey:  "",
		PricingTimeout: 30 * time.Second,
		SeedFile:       "",
	}
}

// PricingSecret reads the request-signing secret from the environment.
// Secrets are environment-only; callers decide whether absence is fatal.
func PricingSecret() ([]byte, error) {
	val := strings.TrimSpace(os.Getenv("CFG_PRICING_SECRET"))
	if val == "" {
		return nil, nil
	}
	if len(val) < 32 {
		return nil, fmt.Errorf("CFG_PRICING_SECRET must be at least 32 bytes, got %d", len(val))
	}
	return []byte(val), nil
}

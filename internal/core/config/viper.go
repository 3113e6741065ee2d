package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*ConfiguratorConfig, error) {
	v := viper.New()

	// Set defaults matching DefaultConfiguratorConfig
	v.SetDefault("configurator.host", "0.0.0.0")
	v.SetDefault("configurator.port", 8080)
	v.SetDefault("configurator.database_url", "sqlite://./configurator.db")
	v.SetDefault("configurator.pricing_base_url", "")
	v.SetDefault("configurator.pricing_api_key", "")
	v.SetDefault("configurator.pricing_timeout", "30s")
	v.SetDefault("configurator.seed_file", "")

	// Bind environment variables with CFG_ prefix
	v.SetEnvPrefix("CFG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Security check: reject secrets in config files
	// Secrets must be environment-only per 12-factor principles
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	cfg := &ConfiguratorConfig{
		Host:           v.GetString("configurator.host"),
		Port:           v.GetInt("configurator.port"),
		DatabaseURL:    v.GetString("configurator.database_url"),
		PricingBaseURL: v.GetString("configurator.pricing_base_url"),
		PricingAPIKey:  v.GetString("configurator.pricing_api_key"),
		PricingTimeout: v.GetDuration("configurator.pricing_timeout"),
		SeedFile:       v.GetString("configurator.seed_file"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks port range and required values.
func validateConfig(cfg *ConfiguratorConfig) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database_url cannot be empty")
	}
	if cfg.PricingTimeout <= 0 {
		return fmt.Errorf("pricing_timeout must be positive, got %v", cfg.PricingTimeout)
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only secrets (12-factor principle).
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.IsSet("pricing_secret") || v.IsSet("configurator.pricing_secret") {
		return fmt.Errorf("pricing secrets not allowed in config files (use CFG_PRICING_SECRET environment variable)")
	}
	return nil
}

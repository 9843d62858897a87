package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	ListenAddr     string        `mapstructure:"listen_addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	QuoteTTL       int           `mapstructure:"quote_ttl"`
	LogLevel       string        `mapstructure:"log_level"`
	LogFormat      string        `mapstructure:"log_format"`
	Debug          bool          `mapstructure:"debug"`
	TestRecipient  string        `mapstructure:"test_recipient"`
}

// New returns a viper instance with defaults, env binding and the optional config file
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName(".cross-chain-flow")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(".")

	// Set default values
	v.SetDefault("base_url", "https://api.swapkit.dev")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("request_timeout", 20*time.Second)
	v.SetDefault("rate_limit", 5.0)
	v.SetDefault("quote_ttl", 900)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("debug", false)
	v.SetDefault("test_recipient", "")
	v.SetDefault("api_key", "")

	// Read from environment variables
	v.SetEnvPrefix("XFLOW")
	v.AutomaticEnv()

	return v
}

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	v := New()

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper decodes and validates a configuration from v
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the required fields and value ranges
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("API key not found. Please set XFLOW_API_KEY environment variable or create a .cross-chain-flow.yaml config file")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative, got %v", c.RateLimit)
	}
	if c.QuoteTTL <= 0 {
		return fmt.Errorf("quote_ttl must be positive, got %d", c.QuoteTTL)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	return nil
}

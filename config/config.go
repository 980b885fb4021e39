package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

/* Config é um pacote auxiliar. Poderia ser uma lib externa*/

// Defaults for the webhook processing pipeline
const (
	DefaultHandlerTimeout   = 30 * time.Second
	DefaultRetryMaxAttempts = 3
	DefaultRetryDelay       = 1 * time.Second
	DefaultDrainInterval    = 5 * time.Second
)

type Config struct {
	Port             string `mapstructure:"PORT"`
	WebhookSecret    string `mapstructure:"WEBHOOK_SECRET"`
	WebhookOrigins   string `mapstructure:"WEBHOOK_ALLOWED_ORIGINS"`
	WebhookTimeout   string `mapstructure:"WEBHOOK_TIMEOUT"`
	RetryMaxAttempts int    `mapstructure:"WEBHOOK_RETRY_MAX_ATTEMPTS"`
	RetryDelayRaw    string `mapstructure:"WEBHOOK_RETRY_DELAY"`
	DrainIntervalRaw string `mapstructure:"WEBHOOK_DRAIN_INTERVAL"`
	BindingsFile     string `mapstructure:"BINDINGS_FILE"`
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisDB          int    `mapstructure:"REDIS_DB"`
}

func GetConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("WEBHOOK_RETRY_MAX_ATTEMPTS", DefaultRetryMaxAttempts)
	viper.SetDefault("BINDINGS_FILE", "bindings.yaml")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	// keys without a meaningful default still need registering so that
	// AutomaticEnv picks them up when no .env file is present
	viper.SetDefault("WEBHOOK_SECRET", "")
	viper.SetDefault("WEBHOOK_ALLOWED_ORIGINS", "")
	viper.SetDefault("WEBHOOK_TIMEOUT", "")
	viper.SetDefault("WEBHOOK_RETRY_DELAY", "")
	viper.SetDefault("WEBHOOK_DRAIN_INTERVAL", "")
	viper.SetDefault("REDIS_PASSWORD", "")

	err := viper.ReadInConfig()
	if err != nil {
		// the .env file is optional; environment variables alone are enough
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	var config Config
	err = viper.Unmarshal(&config)
	if err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	return &config, nil
}

// AllowedOrigins returns the comma-separated origin allow-list as a slice.
// An empty result means origin validation is disabled.
func (c *Config) AllowedOrigins() []string {
	if strings.TrimSpace(c.WebhookOrigins) == "" {
		return nil
	}
	parts := strings.Split(c.WebhookOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// HandlerTimeout returns the max handler execution time
func (c *Config) HandlerTimeout() time.Duration {
	return parseDuration(c.WebhookTimeout, DefaultHandlerTimeout)
}

// RetryDelay returns the pause between items within one drain pass
func (c *Config) RetryDelay() time.Duration {
	return parseDuration(c.RetryDelayRaw, DefaultRetryDelay)
}

// DrainInterval returns the period of the retry queue drain ticker
func (c *Config) DrainInterval() time.Duration {
	return parseDuration(c.DrainIntervalRaw, DefaultDrainInterval)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

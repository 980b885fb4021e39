package config_test

import (
	"testing"
	"time"

	"github.com/craftline/webhook-gateway/config"
	"github.com/stretchr/testify/assert"
)

func TestAllowedOrigins(t *testing.T) {
	t.Run("empty means no restriction", func(t *testing.T) {
		cfg := &config.Config{WebhookOrigins: ""}
		assert.Nil(t, cfg.AllowedOrigins())
	})

	t.Run("splits on comma and trims spaces", func(t *testing.T) {
		cfg := &config.Config{WebhookOrigins: "203.0.113.10, vendor.example.com ,198.51.100.7"}
		assert.Equal(t, []string{"203.0.113.10", "vendor.example.com", "198.51.100.7"}, cfg.AllowedOrigins())
	})

	t.Run("skips empty entries", func(t *testing.T) {
		cfg := &config.Config{WebhookOrigins: "203.0.113.10,,  ,"}
		assert.Equal(t, []string{"203.0.113.10"}, cfg.AllowedOrigins())
	})
}

func TestDurations(t *testing.T) {
	t.Run("defaults when unset", func(t *testing.T) {
		cfg := &config.Config{}
		assert.Equal(t, config.DefaultHandlerTimeout, cfg.HandlerTimeout())
		assert.Equal(t, config.DefaultRetryDelay, cfg.RetryDelay())
		assert.Equal(t, config.DefaultDrainInterval, cfg.DrainInterval())
	})

	t.Run("parses configured values", func(t *testing.T) {
		cfg := &config.Config{
			WebhookTimeout:   "10s",
			RetryDelayRaw:    "250ms",
			DrainIntervalRaw: "1m",
		}
		assert.Equal(t, 10*time.Second, cfg.HandlerTimeout())
		assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay())
		assert.Equal(t, time.Minute, cfg.DrainInterval())
	})

	t.Run("falls back on garbage or non-positive values", func(t *testing.T) {
		cfg := &config.Config{
			WebhookTimeout:   "soon",
			RetryDelayRaw:    "-1s",
			DrainIntervalRaw: "0s",
		}
		assert.Equal(t, config.DefaultHandlerTimeout, cfg.HandlerTimeout())
		assert.Equal(t, config.DefaultRetryDelay, cfg.RetryDelay())
		assert.Equal(t, config.DefaultDrainInterval, cfg.DrainInterval())
	})
}

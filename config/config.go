// Package config provides configuration management for offline-hub.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the configuration for offline-hub.
type Config struct {
	// OriginURL is the base URL of the authoritative StoryPile origin.
	OriginURL string
	// OriginCookie is an optional session cookie sent with same-origin
	// page fetches.
	OriginCookie string
	// RedisURL is the Redis connection URL for the response caches.
	RedisURL string
	// DataDir is the directory holding the SQLite article mirror.
	DataDir string
	// HTTPPort is the port the request router listens on.
	HTTPPort int
	// HealthCheckInterval is how often origin connectivity is probed.
	HealthCheckInterval time.Duration
	// IncrementalProbe enables the updated_since pre-check before a full
	// reconciliation fetch. Deletions are still only detected on full
	// fetches, so a probe can delay deletion detection by one pass.
	IncrementalProbe bool
	// ShellAssetURLs are external assets warmed into the assets cache at
	// startup so the offline shells render without a network.
	ShellAssetURLs []string
	// LogLevel is the logging level.
	LogLevel string
}

// NewConfig creates a new Config from environment variables.
func NewConfig() *Config {
	port, _ := strconv.Atoi(getEnvOrDefault("HTTP_PORT", "9600"))
	interval, err := time.ParseDuration(getEnvOrDefault("HEALTH_CHECK_INTERVAL", "15s"))
	if err != nil {
		interval = 15 * time.Second
	}
	probe, _ := strconv.ParseBool(getEnvOrDefault("INCREMENTAL_PROBE", "false"))

	var shellAssets []string
	if raw := os.Getenv("SHELL_ASSET_URLS"); raw != "" {
		for _, u := range strings.Split(raw, ",") {
			if u = strings.TrimSpace(u); u != "" {
				shellAssets = append(shellAssets, u)
			}
		}
	}

	return &Config{
		OriginURL:           getEnvOrDefault("ORIGIN_URL", "http://localhost:3000"),
		OriginCookie:        os.Getenv("ORIGIN_COOKIE"),
		RedisURL:            getEnvOrDefault("REDIS_URL", "redis://localhost:6379"),
		DataDir:             getEnvOrDefault("DATA_DIR", "./data"),
		HTTPPort:            port,
		HealthCheckInterval: interval,
		IncrementalProbe:    probe,
		ShellAssetURLs:      shellAssets,
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.OriginURL, "http://") && !strings.HasPrefix(c.OriginURL, "https://") {
		return fmt.Errorf("ORIGIN_URL must start with http:// or https://, got %q", c.OriginURL)
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.HTTPPort)
	}
	if c.HealthCheckInterval <= 0 {
		return fmt.Errorf("HEALTH_CHECK_INTERVAL must be positive, got %s", c.HealthCheckInterval)
	}
	return nil
}

// getEnvOrDefault returns the value of an environment variable or a default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

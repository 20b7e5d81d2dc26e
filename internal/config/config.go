// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sethvargo/go-envconfig"

	"github.com/swapstudio/swapstudio-api/internal/job"
)

// Config holds all configuration for the application. No provider key is
// individually required; routes that lack credentials are rejected per
// request instead of failing startup.
type Config struct {
	// Server settings
	Port           int    `env:"PORT, default=8000" json:"port"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS, default=http://localhost:3000,http://127.0.0.1:3000" json:"allowed_origins"`

	// Provider credentials
	FalAPIKey         string `env:"FAL_API_KEY" json:"-"`         // Masked in JSON
	ReplicateAPIToken string `env:"REPLICATE_API_TOKEN" json:"-"` // Masked in JSON
	KlingAccessKey    string `env:"KLING_ACCESS_KEY" json:"-"`    // Masked in JSON
	KlingSecretKey    string `env:"KLING_SECRET_KEY" json:"-"`    // Masked in JSON
	KlingAPIBase      string `env:"KLING_API_BASE, default=https://api.klingai.com" json:"kling_api_base"`

	// Storage settings
	TempDir string `env:"TEMP_DIR, default=/tmp/swapstudio" json:"temp_dir"`

	// Media settings
	FFmpegPath string `env:"FFMPEG_PATH, default=ffmpeg" json:"ffmpeg_path"`

	// Optional S3 output archive settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// FalEnabled returns true if fal.ai credentials are provided.
func (c *Config) FalEnabled() bool {
	return c.FalAPIKey != ""
}

// KlingEnabled returns true if direct Kling API credentials are provided.
func (c *Config) KlingEnabled() bool {
	return c.KlingAccessKey != "" && c.KlingSecretKey != ""
}

// ReplicateEnabled returns true if a Replicate token is provided.
func (c *Config) ReplicateEnabled() bool {
	return c.ReplicateAPIToken != ""
}

// S3Enabled returns true if S3 archive configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// Provider returns the preferred configured provider, used for the root and
// health endpoints. fal.ai wins over direct Kling, which wins over
// Replicate.
func (c *Config) Provider() string {
	switch {
	case c.FalEnabled():
		return string(job.ProviderFal)
	case c.KlingEnabled():
		return string(job.ProviderKling)
	case c.ReplicateEnabled():
		return string(job.ProviderReplicate)
	default:
		return "none"
	}
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, Provider: %s, FalEnabled: %t, KlingEnabled: %t, ReplicateEnabled: %t, KlingAPIBase: %s, TempDir: %s, S3Bucket: %s, S3Region: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.Provider(),
		c.FalEnabled(),
		c.KlingEnabled(),
		c.ReplicateEnabled(),
		c.KlingAPIBase,
		c.TempDir,
		c.S3Bucket,
		c.S3Region,
		c.LogFormat,
		c.LogLevel,
	)
}

// Origins splits the allowed origins list for the CORS middleware.
func (c *Config) Origins() []string {
	parts := strings.Split(c.AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

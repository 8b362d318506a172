// Package config loads shipshape settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/leofalp/shipshape/core/extract"
)

// Config holds every setting of the server and the CLI.
type Config struct {
	// GeminiAPIKey is the extraction credential. API_KEY is accepted as a
	// fallback.
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	LegacyAPIKey  string `env:"API_KEY"`
	GeminiModel   string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	GeminiBaseURL string `env:"GEMINI_API_BASE_URL"`

	HTTPAddr string `env:"SHIPSHAPE_HTTP_ADDR" envDefault:":8080"`
	MaxForms int    `env:"SHIPSHAPE_MAX_FORMS" envDefault:"1000"`

	// FormIdleTTL drops forms untouched for longer. Zero keeps them until
	// deleted.
	FormIdleTTL time.Duration `env:"SHIPSHAPE_FORM_IDLE_TTL" envDefault:"1h"`

	ExtractTimeout time.Duration `env:"SHIPSHAPE_EXTRACT_TIMEOUT" envDefault:"30s"`
	LenientJSON    bool          `env:"SHIPSHAPE_LENIENT_JSON" envDefault:"false"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"SHIPSHAPE_LOG_FORMAT" envDefault:"json"`
}

// Load reads the given .env files (".env" when none are named) into the
// process environment, then parses Config from it. Variables already set in
// the environment win over file values. A missing file is not an error.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return fmt.Errorf("SHIPSHAPE_HTTP_ADDR is required")
	}
	if c.MaxForms < 0 {
		return fmt.Errorf("SHIPSHAPE_MAX_FORMS must not be negative, got %d", c.MaxForms)
	}
	if c.FormIdleTTL < 0 {
		return fmt.Errorf("SHIPSHAPE_FORM_IDLE_TTL must not be negative, got %s", c.FormIdleTTL)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("SHIPSHAPE_LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	return nil
}

// APIKey returns the extraction credential, preferring GEMINI_API_KEY.
func (c *Config) APIKey() string {
	if key := strings.TrimSpace(c.GeminiAPIKey); key != "" {
		return key
	}
	return strings.TrimSpace(c.LegacyAPIKey)
}

// JSONLogs reports whether logs should be written as JSON.
func (c *Config) JSONLogs() bool {
	return strings.EqualFold(c.LogFormat, "json")
}

// Extract returns the extraction service configuration.
func (c *Config) Extract() extract.Config {
	return extract.Config{
		APIKey:      c.APIKey(),
		Model:       c.GeminiModel,
		BaseURL:     c.GeminiBaseURL,
		Timeout:     c.ExtractTimeout,
		LenientJSON: c.LenientJSON,
	}
}

// Package config loads runtime settings from UCS_PREDICTOR_* environment
// variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every setting the binary reads from the environment.
type Config struct {
	Addr           string        `env:"UCS_PREDICTOR_ADDR" envDefault:":8080"`
	BackendURL     string        `env:"UCS_PREDICTOR_BACKEND_URL" envDefault:"https://ucs-backend-gullmaryam00.repl.co/predict"`
	BackendTimeout time.Duration `env:"UCS_PREDICTOR_BACKEND_TIMEOUT" envDefault:"0s"`
	LogLevel       string        `env:"UCS_PREDICTOR_LOG_LEVEL" envDefault:"info"`
	Theme          string        `env:"UCS_PREDICTOR_THEME" envDefault:"ucsform"`
	ThemeVariant   string        `env:"UCS_PREDICTOR_THEME_VARIANT" envDefault:"light"`
	LayoutFile     string        `env:"UCS_PREDICTOR_LAYOUT_FILE"`
	TemplatesDir   string        `env:"UCS_PREDICTOR_TEMPLATES_DIR"`
	StylesheetURL  string        `env:"UCS_PREDICTOR_STYLESHEET_URL"`
	RateLimit      float64       `env:"UCS_PREDICTOR_RATE_LIMIT" envDefault:"2"`
	RateBurst      int           `env:"UCS_PREDICTOR_RATE_BURST" envDefault:"4"`
	TrustForwarded bool          `env:"UCS_PREDICTOR_TRUST_FORWARDED"`
	ShutdownGrace  time.Duration `env:"UCS_PREDICTOR_SHUTDOWN_GRACE" envDefault:"5s"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings that cannot produce a working server.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("config: UCS_PREDICTOR_ADDR is empty")
	}
	if c.BackendTimeout < 0 {
		return fmt.Errorf("config: UCS_PREDICTOR_BACKEND_TIMEOUT must not be negative")
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return fmt.Errorf("config: rate limit settings must not be negative")
	}
	return nil
}

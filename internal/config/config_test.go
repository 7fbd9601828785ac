package config

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Config{
		Addr:          ":8080",
		BackendURL:    "https://ucs-backend-gullmaryam00.repl.co/predict",
		LogLevel:      "info",
		Theme:         "ucsform",
		ThemeVariant:  "light",
		RateLimit:     2,
		RateBurst:     4,
		ShutdownGrace: 5 * time.Second,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("UCS_PREDICTOR_ADDR", "127.0.0.1:9000")
	t.Setenv("UCS_PREDICTOR_BACKEND_URL", "http://localhost:5000/predict")
	t.Setenv("UCS_PREDICTOR_BACKEND_TIMEOUT", "3s")
	t.Setenv("UCS_PREDICTOR_THEME_VARIANT", "dark")
	t.Setenv("UCS_PREDICTOR_TRUST_FORWARDED", "true")
	t.Setenv("UCS_PREDICTOR_TEMPLATES_DIR", "/srv/ucs/templates")
	t.Setenv("UCS_PREDICTOR_STYLESHEET_URL", "/static/site.css")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" || cfg.BackendURL != "http://localhost:5000/predict" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.BackendTimeout != 3*time.Second || cfg.ThemeVariant != "dark" || !cfg.TrustForwarded {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.TemplatesDir != "/srv/ucs/templates" || cfg.StylesheetURL != "/static/site.css" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("UCS_PREDICTOR_RATE_BURST", "many")
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("err = %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]Config{
		"empty addr":       {Addr: " "},
		"negative timeout": {Addr: ":1", BackendTimeout: -time.Second},
		"negative rate":    {Addr: ":1", RateLimit: -1},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

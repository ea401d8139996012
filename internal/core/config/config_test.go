package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("FG_DB_URL")
	os.Unsetenv("FG_LOG_LEVEL")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBURL != "sqlite://fareguard.db" {
		t.Errorf("DBURL = %q, want default", cfg.DBURL)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Errorf("logging defaults = %q/%q, want info/json", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.AllowRebook || cfg.SkipBookingDateValidation {
		t.Error("validation toggles default to off")
	}
}

func TestLoad_Environment(t *testing.T) {
	os.Setenv("FG_DB_URL", "postgres://localhost/fares")
	os.Setenv("FG_ALLOW_REBOOK", "true")
	defer os.Unsetenv("FG_DB_URL")
	defer os.Unsetenv("FG_ALLOW_REBOOK")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBURL != "postgres://localhost/fares" {
		t.Errorf("DBURL = %q, want environment value", cfg.DBURL)
	}
	if !cfg.AllowRebook {
		t.Error("AllowRebook not picked up from environment")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	os.Unsetenv("FG_DB_URL")
	os.Unsetenv("FG_LOG_LEVEL")

	path := filepath.Join(t.TempDir(), "fareguard.yaml")
	content := "db_url: sqlite:///tmp/rules.db\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBURL != "sqlite:///tmp/rules.db" || cfg.LogLevel != "debug" {
		t.Errorf("config file not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(*Config) {}, false},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, true},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"empty db url", func(c *Config) { c.DBURL = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

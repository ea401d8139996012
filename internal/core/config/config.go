// Package config provides configuration management for fareguard commands.
package config

import "fmt"

// Config holds the settings shared by all commands: where the rule catalog
// lives, how to log, and which validation options to run with.
type Config struct {
	DBURL     string
	LogLevel  string
	LogFormat string

	// AllowRebook marks unconfirmed sectors for re-booking instead of
	// failing them.
	AllowRebook bool

	// SkipBookingDateValidation measures ticket-after-reservation limits
	// from the ticketing date instead of segment booking dates.
	SkipBookingDateValidation bool
}

// Default returns the configuration used when nothing is filed anywhere.
func Default() *Config {
	return &Config{
		DBURL:     "sqlite://fareguard.db",
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("log format must be json or text, got %q", c.LogFormat)
	}
	if c.DBURL == "" {
		return fmt.Errorf("database URL must not be empty")
	}
	return nil
}

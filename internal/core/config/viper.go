package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration with CLI flags > environment > config file >
// defaults precedence. Environment variables use the FG_ prefix
// (FG_DB_URL, FG_LOG_LEVEL, ...). Flag overrides are applied by the caller
// after loading.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("db_url", defaults.DBURL)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_format", defaults.LogFormat)
	v.SetDefault("allow_rebook", defaults.AllowRebook)
	v.SetDefault("skip_booking_date_validation", defaults.SkipBookingDateValidation)

	v.SetEnvPrefix("FG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		DBURL:                     v.GetString("db_url"),
		LogLevel:                  v.GetString("log_level"),
		LogFormat:                 v.GetString("log_format"),
		AllowRebook:               v.GetBool("allow_rebook"),
		SkipBookingDateValidation: v.GetBool("skip_booking_date_validation"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

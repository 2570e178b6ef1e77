// Package config loads settings for the mailroom command.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the mailroom demo settings.
type Config struct {
	LogLevel string `mapstructure:"logLevel"`

	// Capacity is the bound of the consumer's mailbox.
	Capacity int `mapstructure:"capacity"`

	Producers int `mapstructure:"producers"`

	// Messages is the number of messages each producer sends.
	Messages int `mapstructure:"messages"`

	// UrgentEvery marks every n-th message of a producer as urgent.
	UrgentEvery int `mapstructure:"urgentEvery"`
}

// Load reads configuration from the JSON file at path, if any, and
// from MAILROOM_* environment variables on top of the defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("logLevel", "info")
	v.SetDefault("capacity", 16)
	v.SetDefault("producers", 4)
	v.SetDefault("messages", 100)
	v.SetDefault("urgentEvery", 10)

	v.SetEnvPrefix("MAILROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) validate() error {
	switch {
	case cfg.Capacity < 1:
		return fmt.Errorf("capacity must be positive, got %d", cfg.Capacity)
	case cfg.Producers < 1:
		return fmt.Errorf("producers must be positive, got %d", cfg.Producers)
	case cfg.Messages < 0:
		return fmt.Errorf("messages must not be negative, got %d", cfg.Messages)
	case cfg.UrgentEvery < 1:
		return fmt.Errorf("urgentEvery must be positive, got %d", cfg.UrgentEvery)
	}
	return nil
}

// Package config loads daemon configuration from defaults, an optional YAML
// file, and DESPERTADOR_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the daemon settings.
type Config struct {
	// DBPath is the sqlite database holding alarm records.
	DBPath string `mapstructure:"db_path"`

	// SnoozeFor is the default snooze duration.
	SnoozeFor time.Duration `mapstructure:"snooze_for"`

	// Epsilon is the due-time tolerance in the fire path.
	Epsilon time.Duration `mapstructure:"epsilon"`

	// RearmOnBoot re-registers active alarms with the wake service at
	// startup, covering registrations lost to a restart.
	RearmOnBoot bool `mapstructure:"rearm_on_boot"`
}

// Load reads configuration. An empty path means defaults and environment
// only; a missing file at an explicit path is an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("db_path", "despertador.db")
	v.SetDefault("snooze_for", 5*time.Minute)
	v.SetDefault("epsilon", 1*time.Second)
	v.SetDefault("rearm_on_boot", true)

	v.SetEnvPrefix("despertador")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

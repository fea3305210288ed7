// Package config loads tool configuration for bumpath.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all configuration for bumpath
type Config struct {
	Repath RepathConfig `mapstructure:"repath"`
	Log    LogConfig    `mapstructure:"log"`
}

// RepathConfig holds defaults for repathing runs. CLI flags override these.
type RepathConfig struct {
	Creator       string `mapstructure:"creator"`
	Project       string `mapstructure:"project"`
	CombineLinked bool   `mapstructure:"combine_linked"`
	CleanupUnused bool   `mapstructure:"cleanup_unused"`
}

// LogConfig holds logging defaults.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

var defaultConfig = Config{
	Repath: RepathConfig{
		Creator:       "bum",
		Project:       "mod",
		CombineLinked: true,
		CleanupUnused: false,
	},
	Log: LogConfig{
		Level: "info",
		JSON:  false,
	},
}

// LoadConfig loads configuration from .bumpath.yaml in the working directory
// and BUMPATH_* environment variables, falling back to built-in defaults.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("repath.creator", defaultConfig.Repath.Creator)
	v.SetDefault("repath.project", defaultConfig.Repath.Project)
	v.SetDefault("repath.combine_linked", defaultConfig.Repath.CombineLinked)
	v.SetDefault("repath.cleanup_unused", defaultConfig.Repath.CleanupUnused)
	v.SetDefault("log.level", defaultConfig.Log.Level)
	v.SetDefault("log.json", defaultConfig.Log.JSON)

	v.SetConfigName(".bumpath")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("BUMPATH")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

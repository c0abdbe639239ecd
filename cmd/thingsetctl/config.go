package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// config is the CLI's own configuration: flags override environment
// variables override the config file override these defaults.
type config struct {
	// DefaultRole is used when --role isn't passed on the command line.
	DefaultRole string `mapstructure:"default_role"`

	// WatchedSubsets is the bitmask of subsets whose writes fire the
	// Context's UpdateCallback once per committed PATCH. The
	// CLI has no callback wired by default; the setting exists so a config
	// file can demonstrate it without a code change.
	WatchedSubsets uint16 `mapstructure:"watched_subsets"`
}

func defaultConfig() config {
	return config{DefaultRole: "user", WatchedSubsets: 0}
}

// loadConfig reads thingsetctl's config file via viper: env vars
// (THINGSETCTL_*) over the config file over the defaults. A missing config
// file is not an error; the CLI runs fine against a fresh demo device
// with just defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	v := viper.New()
	v.SetEnvPrefix("THINGSETCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("default_role", cfg.DefaultRole)
	v.SetDefault("watched_subsets", cfg.WatchedSubsets)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(configDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "thingsetctl")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "thingsetctl")
}

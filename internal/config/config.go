// Package config loads application configuration from file and environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Data DataConfig
	Sync SyncConfig
}

// DataConfig locates the persisted JSON documents.
type DataConfig struct {
	Dir string
}

// SyncConfig holds the pairing server settings.
type SyncConfig struct {
	Port      int
	PinTTL    time.Duration // authentication window per pairing session
	ServerTTL time.Duration // hard lifetime of one server run
}

// Load reads configuration from file and env. Env var overrides use prefix ORBIT_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("data.dir", filepath.Join(os.Getenv("HOME"), ".local", "share", "orbit"))
	v.SetDefault("sync.port", 8080)
	v.SetDefault("sync.pin_ttl", "10m")
	v.SetDefault("sync.server_ttl", "15m")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("ORBIT_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "orbit"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("ORBIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// a missing config file is fine; defaults and env apply
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" {
			if _, statErr := os.Stat(cfgPath); statErr == nil {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		} else if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		Data: DataConfig{Dir: v.GetString("data.dir")},
		Sync: SyncConfig{
			Port:      v.GetInt("sync.port"),
			PinTTL:    v.GetDuration("sync.pin_ttl"),
			ServerTTL: v.GetDuration("sync.server_ttl"),
		},
	}
	if cfg.Data.Dir == "" {
		return Config{}, fmt.Errorf("data.dir must not be empty")
	}
	if cfg.Sync.Port <= 0 || cfg.Sync.Port > 65535 {
		return Config{}, fmt.Errorf("sync.port out of range: %d", cfg.Sync.Port)
	}
	if cfg.Sync.PinTTL <= 0 || cfg.Sync.ServerTTL <= 0 {
		return Config{}, fmt.Errorf("sync ttls must be positive")
	}
	return cfg, nil
}

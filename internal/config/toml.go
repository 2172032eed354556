// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Profile ProfileConfig `toml:"profile"`
	Store   StoreConfig   `toml:"store"`
	Backend BackendConfig `toml:"backend"`
	Server  ServerConfig  `toml:"server"`
	Log     LogConfig     `toml:"log"`
}

// ProfileConfig maps the local user identity.
type ProfileConfig struct {
	User        *string `toml:"user"`
	DisplayName *string `toml:"display-name"`
}

// StoreConfig maps progress store settings.
type StoreConfig struct {
	DB          *string `toml:"db"`
	ReadTimeout *string `toml:"read-timeout"`
}

// BackendConfig maps the transliteration backend.
type BackendConfig struct {
	URL     *string `toml:"url"`
	Timeout *string `toml:"timeout"`
}

// ServerConfig maps the HTTP API settings.
type ServerConfig struct {
	Listen       *string  `toml:"listen"`
	AllowOrigins []string `toml:"allow-origins"`
}

// LogConfig maps logger settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

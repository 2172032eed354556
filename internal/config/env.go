package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds the environment overrides. Empty values mean unset.
type EnvConfig struct {
	DB             string        `env:"KUDLIT_DB"`
	User           string        `env:"KUDLIT_USER"`
	BackendURL     string        `env:"KUDLIT_BACKEND_URL"`
	BackendTimeout time.Duration `env:"KUDLIT_BACKEND_TIMEOUT"`
	ReadTimeout    time.Duration `env:"KUDLIT_READ_TIMEOUT"`
	LogLevel       string        `env:"KUDLIT_LOG_LEVEL"`
	LogFormat      string        `env:"KUDLIT_LOG_FORMAT"`
	Listen         string        `env:"KUDLIT_LISTEN"`
	AllowOrigins   []string      `env:"KUDLIT_ALLOW_ORIGINS" envSeparator:","`
}

// ParseEnv loads the KUDLIT_* environment overrides.
func ParseEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

package config

import (
	"fmt"
	"strings"
	"time"
)

// Defaults applied when neither the file nor the environment sets a value.
const (
	DefaultUser           = "local"
	DefaultListen         = "127.0.0.1:8080"
	DefaultReadTimeout    = 10 * time.Second
	DefaultBackendTimeout = 10 * time.Second
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// Settings is the resolved configuration. Precedence is defaults, then the
// TOML file, then the environment; command-line flags are applied by the caller.
type Settings struct {
	User           string
	DisplayName    string
	DB             string
	ReadTimeout    time.Duration
	BackendURL     string
	BackendTimeout time.Duration
	Listen         string
	AllowOrigins   []string
	LogLevel       string
	LogFormat      string
}

// Resolve merges file and environment configuration over the defaults.
func Resolve(file FileConfig, envCfg EnvConfig) (Settings, error) {
	s := Settings{
		User:           DefaultUser,
		DB:             DefaultDBPath(),
		ReadTimeout:    DefaultReadTimeout,
		BackendTimeout: DefaultBackendTimeout,
		Listen:         DefaultListen,
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
	}

	setString(&s.User, file.Profile.User)
	setString(&s.DisplayName, file.Profile.DisplayName)
	setString(&s.DB, file.Store.DB)
	setString(&s.BackendURL, file.Backend.URL)
	setString(&s.Listen, file.Server.Listen)
	setString(&s.LogLevel, file.Log.Level)
	setString(&s.LogFormat, file.Log.Format)
	if len(file.Server.AllowOrigins) > 0 {
		s.AllowOrigins = file.Server.AllowOrigins
	}
	if err := setDuration(&s.ReadTimeout, file.Store.ReadTimeout, "store.read-timeout"); err != nil {
		return Settings{}, err
	}
	if err := setDuration(&s.BackendTimeout, file.Backend.Timeout, "backend.timeout"); err != nil {
		return Settings{}, err
	}

	override(&s.DB, envCfg.DB)
	override(&s.User, envCfg.User)
	override(&s.BackendURL, envCfg.BackendURL)
	override(&s.LogLevel, envCfg.LogLevel)
	override(&s.LogFormat, envCfg.LogFormat)
	override(&s.Listen, envCfg.Listen)
	if envCfg.ReadTimeout > 0 {
		s.ReadTimeout = envCfg.ReadTimeout
	}
	if envCfg.BackendTimeout > 0 {
		s.BackendTimeout = envCfg.BackendTimeout
	}
	if len(envCfg.AllowOrigins) > 0 {
		s.AllowOrigins = envCfg.AllowOrigins
	}

	if strings.TrimSpace(s.User) == "" {
		return Settings{}, fmt.Errorf("user must not be empty")
	}
	return s, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func override(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v *string, name string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(*v))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be positive", name)
	}
	*dst = d
	return nil
}

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Profile.User != nil || cfg.Store.DB != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigAndResolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[profile]
user = "maria"
display-name = "Maria"

[store]
db = "/tmp/k.db"
read-timeout = "3s"

[backend]
url = "http://localhost:8000"

[server]
allow-origins = ["http://localhost:8100"]

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	file, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s, err := Resolve(file, EnvConfig{User: "jose", ReadTimeout: 7 * time.Second})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if s.User != "jose" || s.DisplayName != "Maria" {
		t.Fatalf("env should override user: %+v", s)
	}
	if s.DB != "/tmp/k.db" || s.BackendURL != "http://localhost:8000" || s.LogLevel != "debug" {
		t.Fatalf("file values not applied: %+v", s)
	}
	if s.ReadTimeout != 7*time.Second || s.BackendTimeout != DefaultBackendTimeout {
		t.Fatalf("unexpected timeouts: %+v", s)
	}
	if len(s.AllowOrigins) != 1 || s.Listen != DefaultListen {
		t.Fatalf("unexpected server settings: %+v", s)
	}
}

func TestResolveRejectsBadDuration(t *testing.T) {
	bad := "soon"
	file := FileConfig{Store: StoreConfig{ReadTimeout: &bad}}
	if _, err := Resolve(file, EnvConfig{}); err == nil {
		t.Fatalf("expected duration error")
	}
}

func TestParseEnv(t *testing.T) {
	t.Setenv("KUDLIT_DB", ":memory:")
	t.Setenv("KUDLIT_READ_TIMEOUT", "250ms")
	t.Setenv("KUDLIT_ALLOW_ORIGINS", "http://a,http://b")
	cfg, err := ParseEnv()
	if err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.DB != ":memory:" || cfg.ReadTimeout != 250*time.Millisecond || len(cfg.AllowOrigins) != 2 {
		t.Fatalf("unexpected env config %+v", cfg)
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "kudlit", "config.toml") {
		t.Fatalf("config path %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "kudlit", "kudlit.db") {
		t.Fatalf("db path %s", got)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn", "json")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "user", "u1")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"user":"u1"`) {
		t.Fatalf("unexpected log output %q", out)
	}
	if _, err := NewLogger(&buf, "loud", "text"); err == nil {
		t.Fatalf("expected level error")
	}
	if _, err := NewLogger(&buf, "info", "xml"); err == nil {
		t.Fatalf("expected format error")
	}
}

package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("FILEDESK_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"FILEDESK_BASE_URL", "FILEDESK_AUTH_TRANSPORT", "FILEDESK_TIMEOUT_SEC", "FILEDESK_SEARCH_DEBOUNCE_MS", "FILEDESK_DOWNLOAD_DIR"} {
		t.Setenv(k, "")
	}
}

func TestParseDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Parse(nil, io.Discard)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.AuthTransport != TransportQuery {
		t.Fatalf("transport = %q", cfg.AuthTransport)
	}
	if cfg.SearchDebounce != 300*time.Millisecond {
		t.Fatalf("debounce = %v", cfg.SearchDebounce)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Fatalf("timeout = %v", cfg.RequestTimeout)
	}
	if !cfg.Mouse || cfg.Theme != ThemeDark {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestParseFlagsOverrideEnv(t *testing.T) {
	isolate(t)
	t.Setenv("FILEDESK_BASE_URL", "http://env.example")
	cfg, err := Parse([]string{"--base-url", "http://flag.example/", "--auth-transport", "BEARER"}, io.Discard)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.BaseURL != "http://flag.example" {
		t.Fatalf("base = %q", cfg.BaseURL)
	}
	if cfg.AuthTransport != TransportBearer {
		t.Fatalf("transport = %q", cfg.AuthTransport)
	}
}

func TestParseYAMLFile(t *testing.T) {
	isolate(t)
	p := filepath.Join(t.TempDir(), "filedesk.yaml")
	body := "base_url: http://yaml.example\nsearch_debounce_ms: 120\nmouse: false\ntheme: light\n"
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FILEDESK_CONFIG", p)
	cfg, err := Parse(nil, io.Discard)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.BaseURL != "http://yaml.example" || cfg.SearchDebounce != 120*time.Millisecond {
		t.Fatalf("yaml not applied: %+v", cfg)
	}
	if cfg.Mouse || cfg.Theme != ThemeLight {
		t.Fatalf("yaml not applied: %+v", cfg)
	}
	if cfg.ConfigFile != p {
		t.Fatalf("config file = %q", cfg.ConfigFile)
	}
}

func TestParseRejectsBadValues(t *testing.T) {
	isolate(t)
	cases := [][]string{
		{"--auth-transport", "cookie"},
		{"--theme", "neon"},
		{"--export", "csv"},
	}
	for _, args := range cases {
		if _, err := Parse(args, io.Discard); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestParseMissingExplicitConfigFails(t *testing.T) {
	isolate(t)
	t.Setenv("FILEDESK_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Parse(nil, io.Discard); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseFile(t *testing.T) {
	cfg, err := parseFile([]byte(`
database_url: postgres://localhost/popcorn
redis_url: redis://localhost:6379/0
server_port: "9090"
timeout: 5s
auto_update: Daily
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DatabaseURL != "postgres://localhost/popcorn" || cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("urls = %q, %q", cfg.DatabaseURL, cfg.RedisURL)
	}
	if cfg.ServerPort != "9090" || cfg.Timeout != 5*time.Second || cfg.AutoUpdate != UpdateDaily {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.UserAgent != defaultUserAgent || cfg.LogLevel != defaultLogLevel {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestParseFileDefaults(t *testing.T) {
	cfg, err := parseFile([]byte("{}"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ServerPort != defaultPort || cfg.Timeout != defaultTimeout || cfg.AutoUpdate != UpdateOff {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestParseFileErrors(t *testing.T) {
	if _, err := parseFile([]byte("server_port: [")); err == nil {
		t.Error("expected YAML error")
	}
	if _, err := parseFile([]byte("auto_update: hourly")); err == nil {
		t.Error("expected frequency error")
	}
}

func TestParseUpdateFrequency(t *testing.T) {
	for in, want := range map[string]UpdateFrequency{
		"":           UpdateOff,
		"off":        UpdateOff,
		"STARTUP":    UpdateStartup,
		" daily ":    UpdateDaily,
		"every2days": UpdateEvery2Days,
	} {
		got, err := ParseUpdateFrequency(in)
		if err != nil || got != want {
			t.Errorf("ParseUpdateFrequency(%q) = %q, %v", in, got, err)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("FETCHER_USER_AGENT", "")
	t.Setenv("FETCHER_TIMEOUT", "45s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("AUTO_UPDATE", "startup")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ServerPort != "7000" || cfg.Timeout != 45*time.Second || cfg.LogLevel != "debug" || cfg.AutoUpdate != UpdateStartup {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.UserAgent != defaultUserAgent {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SERVER_PORT=6000\nAUTO_UPDATE=every2days\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SERVER_PORT", "")
	t.Setenv("AUTO_UPDATE", "")
	os.Unsetenv("SERVER_PORT")
	os.Unsetenv("AUTO_UPDATE")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ServerPort != "6000" || cfg.AutoUpdate != UpdateEvery2Days {
		t.Errorf("cfg = %+v", cfg)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	wantDataDir, err := expandPath(defaultDataDir)
	if err != nil {
		t.Fatalf("expandPath(defaultDataDir) returned error: %v", err)
	}
	if cfg.DataDir != wantDataDir {
		t.Fatalf("DataDir = %q, want %q", cfg.DataDir, wantDataDir)
	}
	if cfg.Storage.Driver != "file" {
		t.Fatalf("Storage.Driver = %q, want file", cfg.Storage.Driver)
	}
	if cfg.Network.ProbeInterval != defaultProbeInterval {
		t.Fatalf("ProbeInterval = %v, want %v", cfg.Network.ProbeInterval, defaultProbeInterval)
	}
	if cfg.Apps["app2"] != defaultDetailAppURL {
		t.Fatalf("Apps[app2] = %q, want %q", cfg.Apps["app2"], defaultDetailAppURL)
	}
	if cfg.Embedded() {
		t.Fatalf("Embedded = true, want standalone by default")
	}
	if cfg.CachePath() != filepath.Join(wantDataDir, "cache.json") {
		t.Fatalf("CachePath = %q", cfg.CachePath())
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
data_dir = "  ~/.productlist  "
log_level = " debug "

[storage]
driver = " Postgres "
dsn = "postgres://localhost/productlist"

[network]
probe_url = " https://api.luxury-retail.com/health "
probe_interval = "30s"

[container]
url = "ws://127.0.0.1:3000/bridge"
allowed_origins = [" http://127.0.0.1:3000 ", ""]

[apps]
app2 = "http://details.local"
app3 = "  "

[bridge]
url = "127.0.0.1:7490"
platform = "ios"

[sync]
schedule = "@every 5m"
replay_per_second = 2.5

[metrics]
addr = ":9464"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !strings.HasPrefix(cfg.DataDir, home) {
		t.Fatalf("DataDir = %q, want it under HOME %q", cfg.DataDir, home)
	}
	if cfg.LogLevel != "debug" || cfg.Storage.Driver != "postgres" {
		t.Fatalf("LogLevel/Driver = %q/%q, want debug/postgres", cfg.LogLevel, cfg.Storage.Driver)
	}
	if cfg.Network.ProbeURL != "https://api.luxury-retail.com/health" || cfg.Network.ProbeInterval != 30*time.Second {
		t.Fatalf("Network = %+v", cfg.Network)
	}
	if !cfg.Embedded() || len(cfg.Container.AllowedOrigins) != 1 || cfg.Container.AllowedOrigins[0] != "http://127.0.0.1:3000" {
		t.Fatalf("Container = %+v", cfg.Container)
	}
	if cfg.Apps["app2"] != "http://details.local" {
		t.Fatalf("Apps[app2] = %q", cfg.Apps["app2"])
	}
	if _, ok := cfg.Apps["app3"]; ok {
		t.Fatalf("blank app url should be ignored")
	}
	if cfg.Bridge.URL != "127.0.0.1:7490" || cfg.Bridge.Platform != "ios" {
		t.Fatalf("Bridge = %+v", cfg.Bridge)
	}
	if cfg.Sync.Schedule != "@every 5m" || cfg.Sync.ReplaysPerSecond != 2.5 {
		t.Fatalf("Sync = %+v", cfg.Sync)
	}
	if cfg.Metrics.Addr != ":9464" {
		t.Fatalf("Metrics.Addr = %q", cfg.Metrics.Addr)
	}
	if cfg.LogPath() != filepath.Join(cfg.DataDir, "productlist.log") {
		t.Fatalf("LogPath = %q", cfg.LogPath())
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
[storage]
driver = "file"

[sync]
replay_per_second = 1.0
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	t.Setenv("PRODUCTLIST_STORAGE_DRIVER", "REDIS")
	t.Setenv("PRODUCTLIST_REDIS_ADDR", "10.0.0.9:6379")
	t.Setenv("PRODUCTLIST_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("PRODUCTLIST_APP2_URL", "http://details.test")
	t.Setenv("PRODUCTLIST_REPLAYS_PER_SECOND", "0")
	t.Setenv("PRODUCTLIST_PROBE_INTERVAL", "2s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Storage.Driver != "redis" || cfg.Storage.RedisAddr != "10.0.0.9:6379" {
		t.Fatalf("Storage = %+v", cfg.Storage)
	}
	if len(cfg.Container.AllowedOrigins) != 2 || cfg.Container.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("AllowedOrigins = %v", cfg.Container.AllowedOrigins)
	}
	if cfg.Apps["app2"] != "http://details.test" {
		t.Fatalf("Apps[app2] = %q", cfg.Apps["app2"])
	}
	if cfg.Sync.ReplaysPerSecond != 0 {
		t.Fatalf("ReplaysPerSecond = %v, want 0", cfg.Sync.ReplaysPerSecond)
	}
	if cfg.Network.ProbeInterval != 2*time.Second {
		t.Fatalf("ProbeInterval = %v, want 2s", cfg.Network.ProbeInterval)
	}
}

func TestLoad_InvalidValuesFail(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cases := map[string]string{
		"bad toml":      `data_dir = [`,
		"bad interval":  "[network]\nprobe_interval = \"soon\"\n",
		"zero interval": "[network]\nprobe_interval = \"0s\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("Load returned nil error")
			}
		})
	}
}

func TestLoad_InvalidEnvFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PRODUCTLIST_REPLAYS_PER_SECOND", "fast")
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "REPLAYS_PER_SECOND") {
		t.Fatalf("Load error = %v, want replays per second parse error", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv(missing) returned error: %v", err)
	}

	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("PRODUCTLIST_TEST_DOTENV=loaded\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("PRODUCTLIST_TEST_DOTENV", "")
	os.Unsetenv("PRODUCTLIST_TEST_DOTENV")
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv returned error: %v", err)
	}
	if got := os.Getenv("PRODUCTLIST_TEST_DOTENV"); got != "loaded" {
		t.Fatalf("PRODUCTLIST_TEST_DOTENV = %q, want loaded", got)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

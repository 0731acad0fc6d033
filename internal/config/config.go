package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config is the resolved runtime configuration.
type Config struct {
	DataDir  string
	LogLevel string

	Storage   Storage
	Network   Network
	Container Container
	// Apps maps sibling app ids to their base URLs.
	Apps    map[string]string
	Bridge  Bridge
	Sync    Sync
	Metrics Metrics
}

// Storage selects the cache backend.
type Storage struct {
	Driver    string
	DSN       string
	RedisAddr string
	RedisDB   int
}

// Network configures connectivity probing. An empty ProbeURL means always online.
type Network struct {
	ProbeURL      string
	ProbeInterval time.Duration
}

// Container configures embedded mode. An empty URL means standalone.
type Container struct {
	URL            string
	AllowedOrigins []string
}

// Bridge locates the native-bridge daemon. An empty URL runs the in-process simulator.
type Bridge struct {
	URL      string
	Platform string
}

// Sync configures offline queue replay.
type Sync struct {
	Schedule         string
	ReplaysPerSecond float64
}

// Metrics configures the Prometheus listener. An empty Addr disables it.
type Metrics struct {
	Addr string
}

const (
	defaultConfigPath    = "~/.config/productlist/config.toml"
	defaultDataDir       = "~/.local/share/productlist"
	defaultLogLevel      = "info"
	defaultStorageDriver = "file"
	defaultProbeInterval = 10 * time.Second
	defaultDetailAppURL  = "http://127.0.0.1:5174"
	defaultReplaysPerSec = 5
	cacheFileName        = "cache.json"
	logFileName          = "productlist.log"
	envPrefix            = "PRODUCTLIST_"
)

type rawConfig struct {
	DataDir  string `toml:"data_dir"`
	LogLevel string `toml:"log_level"`
	Storage  struct {
		Driver    string `toml:"driver"`
		DSN       string `toml:"dsn"`
		RedisAddr string `toml:"redis_addr"`
		RedisDB   int    `toml:"redis_db"`
	} `toml:"storage"`
	Network struct {
		ProbeURL      string `toml:"probe_url"`
		ProbeInterval string `toml:"probe_interval"`
	} `toml:"network"`
	Container struct {
		URL            string   `toml:"url"`
		AllowedOrigins []string `toml:"allowed_origins"`
	} `toml:"container"`
	Apps   map[string]string `toml:"apps"`
	Bridge struct {
		URL      string `toml:"url"`
		Platform string `toml:"platform"`
	} `toml:"bridge"`
	Sync struct {
		Schedule         string   `toml:"schedule"`
		ReplaysPerSecond *float64 `toml:"replay_per_second"`
	} `toml:"sync"`
	Metrics struct {
		Addr string `toml:"addr"`
	} `toml:"metrics"`
}

// envOverrides are read with envdecode; empty values leave the file value alone.
type envOverrides struct {
	DataDir          string `env:"PRODUCTLIST_DATA_DIR"`
	LogLevel         string `env:"PRODUCTLIST_LOG_LEVEL"`
	StorageDriver    string `env:"PRODUCTLIST_STORAGE_DRIVER"`
	StorageDSN       string `env:"PRODUCTLIST_STORAGE_DSN"`
	RedisAddr        string `env:"PRODUCTLIST_REDIS_ADDR"`
	ProbeURL         string `env:"PRODUCTLIST_PROBE_URL"`
	ProbeInterval    string `env:"PRODUCTLIST_PROBE_INTERVAL"`
	ContainerURL     string `env:"PRODUCTLIST_CONTAINER_URL"`
	AllowedOrigins   string `env:"PRODUCTLIST_ALLOWED_ORIGINS"`
	DetailAppURL     string `env:"PRODUCTLIST_APP2_URL"`
	BridgeURL        string `env:"PRODUCTLIST_BRIDGE_URL"`
	Platform         string `env:"PRODUCTLIST_PLATFORM"`
	SyncSchedule     string `env:"PRODUCTLIST_SYNC_SCHEDULE"`
	ReplaysPerSecond string `env:"PRODUCTLIST_REPLAYS_PER_SECOND"`
	MetricsAddr      string `env:"PRODUCTLIST_METRICS_ADDR"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		DataDir:  mustExpand(defaultDataDir),
		LogLevel: defaultLogLevel,
		Storage:  Storage{Driver: defaultStorageDriver},
		Network:  Network{ProbeInterval: defaultProbeInterval},
		Apps:     map[string]string{"app2": defaultDetailAppURL},
		Sync:     Sync{ReplaysPerSecond: defaultReplaysPerSec},
	}
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if strings.TrimSpace(path) == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// Load parses the TOML config at path (the default location when empty), falls back
// to defaults when the file is missing, and then applies PRODUCTLIST_* overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		var raw rawConfig
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		if err := cfg.apply(raw); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// CachePath is the file store location under the data dir.
func (c Config) CachePath() string {
	return filepath.Join(c.dataDir(), cacheFileName)
}

// LogPath is the log file location under the data dir.
func (c Config) LogPath() string {
	return filepath.Join(c.dataDir(), logFileName)
}

// Embedded reports whether a container URL is configured.
func (c Config) Embedded() bool {
	return strings.TrimSpace(c.Container.URL) != ""
}

func (c Config) dataDir() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir)
	}
	return c.DataDir
}

func (c *Config) apply(raw rawConfig) error {
	if v := strings.TrimSpace(raw.DataDir); v != "" {
		c.DataDir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(raw.Storage.Driver); v != "" {
		c.Storage.Driver = strings.ToLower(v)
	}
	c.Storage.DSN = strings.TrimSpace(raw.Storage.DSN)
	c.Storage.RedisAddr = strings.TrimSpace(raw.Storage.RedisAddr)
	c.Storage.RedisDB = raw.Storage.RedisDB

	c.Network.ProbeURL = strings.TrimSpace(raw.Network.ProbeURL)
	if v := strings.TrimSpace(raw.Network.ProbeInterval); v != "" {
		d, err := parseInterval(v)
		if err != nil {
			return err
		}
		c.Network.ProbeInterval = d
	}

	c.Container.URL = strings.TrimSpace(raw.Container.URL)
	c.Container.AllowedOrigins = filterStrings(raw.Container.AllowedOrigins)

	for id, u := range raw.Apps {
		id, u = strings.TrimSpace(id), strings.TrimSpace(u)
		if id == "" || u == "" {
			continue
		}
		c.Apps[id] = u
	}

	c.Bridge.URL = strings.TrimSpace(raw.Bridge.URL)
	c.Bridge.Platform = strings.TrimSpace(raw.Bridge.Platform)

	c.Sync.Schedule = strings.TrimSpace(raw.Sync.Schedule)
	if raw.Sync.ReplaysPerSecond != nil {
		c.Sync.ReplaysPerSecond = *raw.Sync.ReplaysPerSecond
	}

	c.Metrics.Addr = strings.TrimSpace(raw.Metrics.Addr)
	return nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envdecode.Decode(&env); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return nil
		}
		return fmt.Errorf("decode %s environment: %w", envPrefix, err)
	}

	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	if v := strings.TrimSpace(env.DataDir); v != "" {
		c.DataDir = mustExpand(v)
	}
	set(&c.LogLevel, env.LogLevel)
	set(&c.Storage.Driver, strings.ToLower(env.StorageDriver))
	set(&c.Storage.DSN, env.StorageDSN)
	set(&c.Storage.RedisAddr, env.RedisAddr)
	set(&c.Network.ProbeURL, env.ProbeURL)
	if v := strings.TrimSpace(env.ProbeInterval); v != "" {
		d, err := parseInterval(v)
		if err != nil {
			return err
		}
		c.Network.ProbeInterval = d
	}
	set(&c.Container.URL, env.ContainerURL)
	if v := strings.TrimSpace(env.AllowedOrigins); v != "" {
		c.Container.AllowedOrigins = filterStrings(strings.Split(v, ","))
	}
	if v := strings.TrimSpace(env.DetailAppURL); v != "" {
		c.Apps["app2"] = v
	}
	set(&c.Bridge.URL, env.BridgeURL)
	set(&c.Bridge.Platform, env.Platform)
	set(&c.Sync.Schedule, env.SyncSchedule)
	if v := strings.TrimSpace(env.ReplaysPerSecond); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse %sREPLAYS_PER_SECOND %q: %w", envPrefix, v, err)
		}
		c.Sync.ReplaysPerSecond = rps
	}
	set(&c.Metrics.Addr, env.MetricsAddr)
	return nil
}

func parseInterval(v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse probe interval %q: %w", v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("probe interval %q must be positive", v)
	}
	return d, nil
}

func filterStrings(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

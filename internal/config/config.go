package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the workspace-relative config file.
const FileName = "goalpulse.yml"

// Config holds runtime settings for goalpulse.
type Config struct {
	Goals     GoalsConfig     `yaml:"goals"`
	Source    SourceConfig    `yaml:"source"`
	DB        DBConfig        `yaml:"db"`
	Snapshots SnapshotsConfig `yaml:"snapshots"`
	Trends    TrendsConfig    `yaml:"trends"`
	Cache     CacheConfig     `yaml:"cache"`
	Notify    NotifyConfig    `yaml:"notify"`
	Daemon    DaemonConfig    `yaml:"daemon"`
	Timezone  string          `yaml:"timezone"`
}

type GoalsConfig struct {
	Path string `yaml:"path"`
}

type SourceConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// DBConfig selects the primary snapshot database. An empty DSN means the
// local snapshot file is the only store.
type DBConfig struct {
	Driver       string        `yaml:"driver"`
	DSN          string        `yaml:"dsn"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	MaxIdleTime  time.Duration `yaml:"max_idle_time"`
}

type SnapshotsConfig struct {
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

type TrendsConfig struct {
	HistoryDays int `yaml:"history_days"`
}

type CacheConfig struct {
	TTL  time.Duration `yaml:"ttl"`
	Size int           `yaml:"size"`
}

type NotifyConfig struct {
	Enabled bool `yaml:"enabled"`
}

type DaemonConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// LoadFromFile reads the YAML config at path, applies defaults and then
// environment overrides. A missing file yields the defaults. A .env file next
// to the config is loaded first when present.
func LoadFromFile(path string) (Config, error) {
	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))

	var cfg Config
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config yaml: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg = applyDefaults(cfg)
	cfg = applyEnv(cfg)
	return cfg, nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return applyDefaults(Config{})
}

// Location resolves the configured timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func applyDefaults(cfg Config) Config {
	if cfg.Goals.Path == "" {
		cfg.Goals.Path = "goals.json"
	}
	if cfg.Source.Timeout == 0 {
		cfg.Source.Timeout = 30 * time.Second
	}
	if cfg.DB.Driver == "" {
		cfg.DB.Driver = "pgx"
	}
	if cfg.DB.MaxOpenConns == 0 {
		cfg.DB.MaxOpenConns = 5
	}
	if cfg.DB.MaxIdleConns == 0 {
		cfg.DB.MaxIdleConns = 2
	}
	if cfg.DB.MaxIdleTime == 0 {
		cfg.DB.MaxIdleTime = 15 * time.Minute
	}
	if cfg.Snapshots.Path == "" {
		cfg.Snapshots.Path = filepath.Join("snapshots", "history.json")
	}
	if cfg.Snapshots.RetentionDays == 0 {
		cfg.Snapshots.RetentionDays = 90
	}
	if cfg.Trends.HistoryDays == 0 {
		cfg.Trends.HistoryDays = 30
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 60 * time.Second
	}
	if cfg.Cache.Size == 0 {
		cfg.Cache.Size = 16
	}
	if cfg.Daemon.Interval == 0 {
		cfg.Daemon.Interval = time.Hour
	}
	return cfg
}

func applyEnv(cfg Config) Config {
	if val := os.Getenv("GOALPULSE_GOALS"); val != "" {
		cfg.Goals.Path = val
	}
	if val := os.Getenv("GOALPULSE_DB_DRIVER"); val != "" {
		cfg.DB.Driver = val
	}
	if val := os.Getenv("GOALPULSE_DB_DSN"); val != "" {
		cfg.DB.DSN = val
	}
	if val := os.Getenv("GOALPULSE_CACHE_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Cache.TTL = d
		}
	}
	if val := os.Getenv("GOALPULSE_SOURCE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Source.Timeout = d
		}
	}
	if val := os.Getenv("GOALPULSE_NOTIFY"); val != "" {
		cfg.Notify.Enabled = (val == "true")
	}
	if val := os.Getenv("GOALPULSE_REFRESH_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Daemon.Interval = d
		}
	}
	if val := os.Getenv("GOALPULSE_RETENTION_DAYS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			cfg.Snapshots.RetentionDays = n
		}
	}
	return cfg
}

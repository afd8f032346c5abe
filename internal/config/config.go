// Package config loads the aggregator configuration from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultSyncOddsCron     = "*/10 * * * *"
	DefaultSyncFixturesCron = "0 */6 * * *"
	DefaultParallelism      = 4
	DefaultTimeout          = 30 * time.Second
	DefaultRetries          = 2
	DefaultMetricsAddr      = ":9090"
	MetricsAddrDisabled     = "off"
	DefaultLogLevel         = "info"
	DefaultStreamPrefix     = "odds.best"
)

// Environment variables applied over the file.
const (
	EnvPostgresDSN      = "POSTGRES_DSN"
	EnvRedisAddr        = "REDIS_ADDR"
	EnvSyncOddsCron     = "SYNC_ODDS_CRON"
	EnvSyncFixturesCron = "SYNC_FIXTURES_CRON"
	EnvMetricsAddr      = "METRICS_ADDR"
	EnvLogLevel         = "LOG_LEVEL"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Ops      OpsConfig      `yaml:"ops"`
	Log      LogConfig      `yaml:"log"`
	Sync     SyncConfig     `yaml:"sync"`
	Sources  []SourceConfig `yaml:"sources"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig configures change event publishing. An empty Addr disables it.
type RedisConfig struct {
	Addr         string `yaml:"addr"`
	Password     string `yaml:"password"`
	DB           int    `yaml:"db"`
	StreamPrefix string `yaml:"stream_prefix"`
}

type ScheduleConfig struct {
	SyncOdds     string `yaml:"sync_odds"`
	SyncFixtures string `yaml:"sync_fixtures"`
}

type OpsConfig struct {
	MetricsAddr string `yaml:"metrics_addr"` // "off" disables the ops server
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type SyncConfig struct {
	Parallelism int `yaml:"parallelism"` // adapters run concurrently
}

// SourceConfig describes one JSON feed.
type SourceConfig struct {
	Name    string        `yaml:"name"`
	BaseURL string        `yaml:"base_url"`
	Proxies []string      `yaml:"proxies"`
	Timeout time.Duration `yaml:"timeout"`
	Retries *int          `yaml:"retries"`
}

// Load reads path, applies defaults and environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	cfg.applyEnv(os.LookupEnv)
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(EnvPostgresDSN, &c.Postgres.DSN)
	set(EnvRedisAddr, &c.Redis.Addr)
	set(EnvSyncOddsCron, &c.Schedule.SyncOdds)
	set(EnvSyncFixturesCron, &c.Schedule.SyncFixtures)
	set(EnvMetricsAddr, &c.Ops.MetricsAddr)
	set(EnvLogLevel, &c.Log.Level)
}

func (c *Config) applyDefaults() {
	if c.Schedule.SyncOdds == "" {
		c.Schedule.SyncOdds = DefaultSyncOddsCron
	}
	if c.Schedule.SyncFixtures == "" {
		c.Schedule.SyncFixtures = DefaultSyncFixturesCron
	}
	if c.Sync.Parallelism == 0 {
		c.Sync.Parallelism = DefaultParallelism
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Redis.StreamPrefix == "" {
		c.Redis.StreamPrefix = DefaultStreamPrefix
	}
	if c.Ops.MetricsAddr == "" {
		c.Ops.MetricsAddr = DefaultMetricsAddr
	}
	for i := range c.Sources {
		s := &c.Sources[i]
		if s.Timeout == 0 {
			s.Timeout = DefaultTimeout
		}
		if s.Retries == nil {
			r := DefaultRetries
			s.Retries = &r
		}
	}
}

// Validate checks required fields and cron expressions.
func (c *Config) Validate() error {
	var errs []error
	if c.Postgres.DSN == "" {
		errs = append(errs, fmt.Errorf("postgres.dsn is required (or %s)", EnvPostgresDSN))
	}
	for name, spec := range map[string]string{
		"schedule.sync_odds":     c.Schedule.SyncOdds,
		"schedule.sync_fixtures": c.Schedule.SyncFixtures,
	} {
		if _, err := cron.ParseStandard(spec); err != nil {
			errs = append(errs, fmt.Errorf("%s %q: %w", name, spec, err))
		}
	}
	if c.Sync.Parallelism < 1 {
		errs = append(errs, fmt.Errorf("sync.parallelism must be >= 1, got %d", c.Sync.Parallelism))
	}

	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		switch {
		case strings.TrimSpace(s.Name) == "":
			errs = append(errs, fmt.Errorf("sources[%d]: name is required", i))
		case seen[s.Name]:
			errs = append(errs, fmt.Errorf("sources[%d]: duplicate name %q", i, s.Name))
		}
		seen[s.Name] = true
		if s.BaseURL == "" {
			errs = append(errs, fmt.Errorf("sources[%d]: base_url is required", i))
		}
		if s.Timeout < 0 {
			errs = append(errs, fmt.Errorf("sources[%d]: timeout must not be negative", i))
		}
		if s.Retries != nil && *s.Retries < 0 {
			errs = append(errs, fmt.Errorf("sources[%d]: retries must not be negative", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

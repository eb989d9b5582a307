package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Section is one free-form block of the configuration tree. A nil Section
// means the block was absent from the file.
type Section map[string]any

// String returns the string value at key, or "" when absent or not a string.
func (s Section) String(key string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return ""
}

// Without returns a copy of s with the given keys removed.
func (s Section) Without(keys ...string) Section {
	out := make(Section, len(s))
	for k, v := range s {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// CacheConfig selects and tunes the memoization store.
type CacheConfig struct {
	Backend  string        `yaml:"backend"`
	TTL      time.Duration `yaml:"ttl"`
	Dir      string        `yaml:"dir"`
	Path     string        `yaml:"path"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	Codec    string        `yaml:"codec"`
}

// ScheduleConfig holds the cron expression for repeated runs.
type ScheduleConfig struct {
	Cron string `yaml:"cron"`
}

// NotifyConfig holds optional post-run notification targets.
type NotifyConfig struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	File string `yaml:"file"`
}

// Config holds all application configuration.
type Config struct {
	DataSource Section   `yaml:"data_source"`
	Indicators []Section `yaml:"indicators"`
	Strategy   Section   `yaml:"strategy"`
	Visualizer Section   `yaml:"visualizer"`

	Logging  LoggingConfig  `yaml:"logging"`
	Cache    CacheConfig    `yaml:"cache"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Notify   NotifyConfig   `yaml:"notify"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Proxy    string         `yaml:"proxy"`
}

// Defaults applied by Load.
const (
	DefaultCacheBackend = "file"
	DefaultCacheDir     = ".cache"
	DefaultCacheTTL     = time.Hour
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "console"
)

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML document and applies environment overrides and defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" && cfg.Proxy == "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("TRENDSCOPE_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Notify.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Notify.Telegram.ChatID = v
	}

	// Defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = DefaultCacheBackend
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = DefaultCacheDir
	}

	return cfg, nil
}

// Overrides are command-line values that replace fields of the tree.
type Overrides struct {
	Ticker   string
	Interval string
	Output   string
}

// Apply writes non-empty overrides into their sections. Absent sections are
// left absent so the factory still reports them; the overrides that had no
// section to land in are returned by key.
func (c *Config) Apply(o Overrides) (dropped []string) {
	set := func(s Section, key, value string) {
		if value == "" {
			return
		}
		if s == nil {
			dropped = append(dropped, key)
			return
		}
		s[key] = value
	}
	set(c.DataSource, "ticker", o.Ticker)
	set(c.DataSource, "interval", o.Interval)
	set(c.Visualizer, "output_path", o.Output)
	return dropped
}

// Validate checks the optional blocks. Required pipeline sections are
// checked by the factory.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "file", "sqlite", "redis", "memory", "none":
	default:
		return fmt.Errorf("cache.backend %q is not one of file, sqlite, redis, memory, none", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	switch c.Cache.Codec {
	case "", "json", "gob":
	default:
		return fmt.Errorf("cache.codec %q is not one of json, gob", c.Cache.Codec)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of console, json", c.Logging.Format)
	}
	tg := c.Notify.Telegram
	if (tg.BotToken == "") != (tg.ChatID == "") {
		return fmt.Errorf("notify.telegram needs both bot_token and chat_id")
	}
	return nil
}

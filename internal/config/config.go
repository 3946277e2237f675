package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Config represents the gateway configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Cluster ClusterConfig `yaml:"cluster"`
	Summary SummaryConfig `yaml:"summary"`
	Storage StorageConfig `yaml:"storage"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// ClusterConfig contains connection settings for the Kubernetes API serving Tekton resources
type ClusterConfig struct {
	URL                string        `yaml:"url"`
	Token              string        `yaml:"token"`      // Optional: static bearer token
	TokenFile          string        `yaml:"token_file"` // Optional: re-read when it changes
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
	Timeout            time.Duration `yaml:"timeout"`
}

// SummaryConfig tunes summary generation
type SummaryConfig struct {
	SnippetBudget int `yaml:"snippet_budget"`
	LogTailLines  int `yaml:"log_tail_lines"`
}

// StorageConfig contains summary history settings. An empty DSN disables history.
type StorageConfig struct {
	DSN string `yaml:"dsn"`
}

// WatchConfig contains polling settings for streamed summaries
type WatchConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand environment variables in the config
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// LoadFromEnv builds the configuration from PLRS_* environment variables
func LoadFromEnv() (*Config, error) {
	var cfg Config
	var errs error

	cfg.Server.Port, errs = envInt("PLRS_PORT", errs)
	cfg.Server.ReadTimeout, errs = envDuration("PLRS_READ_TIMEOUT", errs)
	cfg.Server.WriteTimeout, errs = envDuration("PLRS_WRITE_TIMEOUT", errs)

	cfg.Cluster.URL = os.Getenv("PLRS_CLUSTER_URL")
	cfg.Cluster.Token = os.Getenv("PLRS_CLUSTER_TOKEN")
	cfg.Cluster.TokenFile = os.Getenv("PLRS_CLUSTER_TOKEN_FILE")
	cfg.Cluster.InsecureSkipVerify = os.Getenv("PLRS_CLUSTER_INSECURE") == "true"
	cfg.Cluster.Timeout, errs = envDuration("PLRS_CLUSTER_TIMEOUT", errs)

	cfg.Summary.SnippetBudget, errs = envInt("PLRS_SNIPPET_BUDGET", errs)
	cfg.Summary.LogTailLines, errs = envInt("PLRS_LOG_TAIL_LINES", errs)

	cfg.Storage.DSN = os.Getenv("PLRS_STORAGE_DSN")
	cfg.Watch.Interval, errs = envDuration("PLRS_WATCH_INTERVAL", errs)

	cfg.Logging.Level = os.Getenv("PLRS_LOG_LEVEL")
	cfg.Logging.Format = os.Getenv("PLRS_LOG_FORMAT")

	if errs != nil {
		return nil, fmt.Errorf("parse environment: %w", errs)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// SetDefaults fills zero values
func (c *Config) SetDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Cluster.Timeout == 0 {
		c.Cluster.Timeout = 30 * time.Second
	}
	if c.Summary.SnippetBudget == 0 {
		c.Summary.SnippetBudget = 1000
	}
	if c.Summary.LogTailLines == 0 {
		c.Summary.LogTailLines = 50
	}
	if c.Watch.Interval == 0 {
		c.Watch.Interval = 5 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// Validate reports every problem with the configuration at once
func (c *Config) Validate() error {
	var errs error

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = multierr.Append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Cluster.URL == "" {
		errs = multierr.Append(errs, fmt.Errorf("cluster.url is required"))
	} else if u, err := url.Parse(c.Cluster.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = multierr.Append(errs, fmt.Errorf("cluster.url %q is not an absolute URL", c.Cluster.URL))
	}
	if c.Summary.SnippetBudget < 0 {
		errs = multierr.Append(errs, fmt.Errorf("summary.snippet_budget must be positive"))
	}
	if c.Summary.LogTailLines < 0 {
		errs = multierr.Append(errs, fmt.Errorf("summary.log_tail_lines must be positive"))
	}
	if c.Watch.Interval < time.Second {
		errs = multierr.Append(errs, fmt.Errorf("watch.interval must be at least 1s"))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = multierr.Append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		errs = multierr.Append(errs, fmt.Errorf("logging.format %q is not one of json, text", c.Logging.Format))
	}

	return errs
}

func envInt(key string, errs error) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, errs
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, multierr.Append(errs, fmt.Errorf("%s: %w", key, err))
	}
	return n, errs
}

func envDuration(key string, errs error) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, errs
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, multierr.Append(errs, fmt.Errorf("%s: %w", key, err))
	}
	return d, errs
}

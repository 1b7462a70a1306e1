package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the application's configuration model.
// It captures where the simulation database lives, which prompt sections are
// rendered, the render bounds, and where audit reports go.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Prompt  PromptConfig  `yaml:"prompt"`
	Render  RenderConfig  `yaml:"render"`
	Report  ReportConfig  `yaml:"report"`
	Jobs    JobsConfig    `yaml:"jobs"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type StorageConfig struct {
	// Simulation database. If empty, read from env SIMVIEW_DB_PATH
	DBPath string `yaml:"dbPath"`
}

// PromptConfig toggles the sections of the perception text.
type PromptConfig struct {
	IncludePosts     bool `yaml:"includePosts"`
	IncludeFollowers bool `yaml:"includeFollowers"`
	IncludeFollows   bool `yaml:"includeFollows"`
}

type RenderConfig struct {
	// Feed bounds for the perception text; 0 means unbounded
	MaxFeedPosts    int `yaml:"maxFeedPosts"`
	MaxFeedComments int `yaml:"maxFeedComments"`
	// Number of action-log rows in the audit report
	LogLimit int `yaml:"logLimit"`
	// Width of the framed blocks in the audit report
	FrameWidth int `yaml:"frameWidth"`
}

type ReportConfig struct {
	OutDir        string        `yaml:"outDir"`
	WatchInterval time.Duration `yaml:"watchInterval"`
}

type JobsConfig struct {
	// Batch prompt rendering pace and fan-out
	RendersPerSecond float64 `yaml:"rendersPerSecond"`
	Burst            int     `yaml:"burst"`
	Concurrency      int     `yaml:"concurrency"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

type MetricsConfig struct {
	// Listen address for /metrics; if empty, read from env METRICS_ADDR
	Addr string `yaml:"addr"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Storage: StorageConfig{DBPath: "./data/simulation.db"},
		Prompt:  PromptConfig{IncludePosts: true, IncludeFollowers: true, IncludeFollows: true},
		Render:  RenderConfig{MaxFeedPosts: 10, MaxFeedComments: 5, LogLimit: 20, FrameWidth: 60},
		Report:  ReportConfig{OutDir: "./reports", WatchInterval: 30 * time.Second},
		Jobs:    JobsConfig{RendersPerSecond: 20, Burst: 5, Concurrency: 4},
		Logging: LoggingConfig{Level: "info"},
	}
}

// ResolveEnv fills in config fields from environment variables if not set.
func (c *Config) ResolveEnv() {
	if v := os.Getenv("SIMVIEW_DB_PATH"); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("SIMVIEW_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = os.Getenv("METRICS_ADDR")
	}
}

// Load reads YAML config from path on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.ResolveEnv()
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields the defaults.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
		cfg.ResolveEnv()
		return cfg, nil
	}
	return cfg, err
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

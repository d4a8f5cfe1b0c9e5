package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Document    DocumentConfig  `toml:"document"`
	Cache       CacheConfig     `toml:"cache"`
	Plugins     PluginsConfig   `toml:"plugins"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Logging     LoggingConfig   `toml:"logging"`
}

// DocumentConfig locates the job document
type DocumentConfig struct {
	Path string `toml:"path"` // Job document path (default: "jobs/jobs.yaml")
}

// CacheConfig controls the job output cache
type CacheConfig struct {
	Dir   string `toml:"dir"`   // Cache directory (default: "./.cache")
	Clean bool   `toml:"clean"` // Remove stale attempt files on startup
}

// PluginsConfig controls external plugin discovery
type PluginsConfig struct {
	Dir string `toml:"dir"` // Optional directory of shared-object plugins loaded at startup
}

// SchedulerConfig controls trigger dispatch behaviour
type SchedulerConfig struct {
	MaxConcurrent int    `toml:"max_concurrent"` // Concurrent trigger dispatches
	PollInterval  string `toml:"poll_interval"`  // Termination gate poll interval, e.g. "1s"
}

// LoggingConfig controls arbor writer setup
type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for log lines (default: "15:04:05")
}

// PollIntervalDuration parses the configured poll interval, falling
// back to one second on empty or malformed values.
func (s SchedulerConfig) PollIntervalDuration() time.Duration {
	if s.PollInterval == "" {
		return time.Second
	}
	d, err := time.ParseDuration(s.PollInterval)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings are exposed in ordino.toml; engine
// internals stay hardcoded for stability.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Document: DocumentConfig{
			Path: "jobs/jobs.yaml",
		},
		Cache: CacheConfig{
			Dir:   "./.cache",
			Clean: true,
		},
		Plugins: PluginsConfig{
			Dir: "", // External plugins load from job "file:" references unless a directory is set
		},
		Scheduler: SchedulerConfig{
			MaxConcurrent: 10,
			PollInterval:  "1s",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
	}
}

// LoadFromFile loads configuration with priority: defaults -> file -> env
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files; later files
// override earlier ones. Priority: CLI flags > environment variables >
// last config file > ... > first config file > defaults. CLI overrides
// are applied afterwards via ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies ORDINO_* environment variable overrides
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("ORDINO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if path := os.Getenv("ORDINO_DOCUMENT_PATH"); path != "" {
		config.Document.Path = path
	}

	if dir := os.Getenv("ORDINO_CACHE_DIR"); dir != "" {
		config.Cache.Dir = dir
	}
	if clean := os.Getenv("ORDINO_CACHE_CLEAN"); clean != "" {
		if b, err := strconv.ParseBool(clean); err == nil {
			config.Cache.Clean = b
		}
	}

	if dir := os.Getenv("ORDINO_PLUGINS_DIR"); dir != "" {
		config.Plugins.Dir = dir
	}

	if max := os.Getenv("ORDINO_SCHEDULER_MAX_CONCURRENT"); max != "" {
		if m, err := strconv.Atoi(max); err == nil && m > 0 {
			config.Scheduler.MaxConcurrent = m
		}
	}
	if interval := os.Getenv("ORDINO_SCHEDULER_POLL_INTERVAL"); interval != "" {
		config.Scheduler.PollInterval = interval
	}

	if level := os.Getenv("ORDINO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("ORDINO_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("ORDINO_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides; flags have
// the highest priority in the configuration chain.
func ApplyFlagOverrides(config *Config, documentPath, logLevel string) {
	if documentPath != "" {
		config.Document.Path = documentPath
	}
	if logLevel != "" {
		config.Logging.Level = logLevel
	}
}

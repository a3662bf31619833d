package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the application configuration, grounded in the teacher's
// Config/LoadFromFiles shape: one struct per concern, TOML-tagged, with a
// sane NewDefaultConfig and environment-variable overrides layered on top
// (priority: defaults → file → env).
type Config struct {
	Scheduler SchedulerConfig `toml:"scheduler"`
	Browser   BrowserConfig   `toml:"browser"`
	Storage   StorageConfig   `toml:"storage"`
	Logging   LoggingConfig   `toml:"logging"`
}

// SchedulerConfig configures C6.
type SchedulerConfig struct {
	QueueCapacity int `toml:"queue_capacity"` // Inbound queue capacity (back-pressure bound)
	MaxConcurrent int `toml:"max_concurrent"` // Max in-flight worker tasks
	MaxRetries    int `toml:"max_retries"`    // Healing policy's max_attempts
}

// BrowserConfig configures C4's default launch behavior.
type BrowserConfig struct {
	Headless       bool   `toml:"headless"`
	TimeoutPreset  string `toml:"timeout_preset"` // "default", "fast", or "patient"
	PoolSize       int    `toml:"pool_size"`      // 0 disables pooling (fresh instance per job)
	ViewportWidth  int    `toml:"viewport_width"`
	ViewportHeight int    `toml:"viewport_height"`
}

// StorageConfig selects and configures the result sink.
type StorageConfig struct {
	Backend string       `toml:"backend"` // "file" or "badger"
	File    FileConfig   `toml:"file"`
	Badger  BadgerConfig `toml:"badger"`
}

type FileConfig struct {
	Folder string `toml:"folder"`
}

type BadgerConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig mirrors the teacher's LoggingConfig: level/format/output are
// arbor concerns, configured the same way regardless of domain.
type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // default "15:04:05.000"
}

// NewDefaultConfig returns sane defaults, matching §6's timeout presets and
// the scheduler's documented default max_retries=3.
func NewDefaultConfig() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			QueueCapacity: 100,
			MaxConcurrent: 5,
			MaxRetries:    3,
		},
		Browser: BrowserConfig{
			Headless:      true,
			TimeoutPreset: "default",
			PoolSize:      0,
		},
		Storage: StorageConfig{
			Backend: "file",
			File:    FileConfig{Folder: "./data/results"},
			Badger:  BadgerConfig{Path: "./data/badger"},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05.000",
		},
	}
}

// LoadFromFile loads configuration with priority default → file → env,
// matching the teacher's LoadFromFile/applyEnvOverrides layering.
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	return config, nil
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv("WEAVER_SCHEDULER_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Scheduler.MaxConcurrent = n
		}
	}
	if v := os.Getenv("WEAVER_SCHEDULER_QUEUE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Scheduler.QueueCapacity = n
		}
	}
	if v := os.Getenv("WEAVER_BROWSER_HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Browser.Headless = b
		}
	}
	if v := os.Getenv("WEAVER_STORAGE_BACKEND"); v != "" {
		config.Storage.Backend = v
	}
	if v := os.Getenv("WEAVER_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}

// ResolveTimeoutPreset returns the config's preset name normalized to one of
// "default", "fast" or "patient"; cmd/weaver maps that name to the browser
// package's Timeouts value. Unknown names fall back to "default", matching
// the teacher's general tolerance for unrecognized string-enum config
// values rather than hard-failing startup.
func (c *Config) ResolveTimeoutPreset() string {
	switch c.Browser.TimeoutPreset {
	case "fast", "patient", "default":
		return c.Browser.TimeoutPreset
	default:
		return "default"
	}
}

// RequestTimeoutFallback is used by callers that need a duration default
// when a config value is zero, mirroring the teacher's pattern of
// hardcoding technical fallbacks rather than leaving a zero-value timeout.
// staticworker.New uses this for its default http.Client.
const RequestTimeoutFallback = 30 * time.Second

package tabgo

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/hupe1980/tabgo/resource"
	"gopkg.in/yaml.v3"
)

// Config is the file form of the registry options.
//
//	log:
//	  level: debug
//	  format: console
//	memory_limit: 268435456
//	growth_threshold: 65536
//	archive:
//	  workers: 4
//	  io_limit: 10485760
type Config struct {
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // text, json or console
	} `yaml:"log"`
	MemoryLimit     int64 `yaml:"memory_limit"`
	GrowthThreshold int   `yaml:"growth_threshold"`
	Archive         struct {
		Workers int64 `yaml:"workers"`
		IOLimit int64 `yaml:"io_limit"`
	} `yaml:"archive"`
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-specified config path
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses a YAML configuration.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges and names.
func (c *Config) Validate() error {
	if c.MemoryLimit < 0 {
		return fmt.Errorf("memory_limit must not be negative, got %d", c.MemoryLimit)
	}
	if c.GrowthThreshold < 0 {
		return fmt.Errorf("growth_threshold must not be negative, got %d", c.GrowthThreshold)
	}
	if c.Archive.Workers < 0 || c.Archive.IOLimit < 0 {
		return errors.New("archive limits must not be negative")
	}
	if _, err := c.level(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

func (c *Config) level() (slog.Level, error) {
	var level slog.Level
	if c.Log.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return level, nil
}

// Logger builds the configured logger.
func (c *Config) Logger() *Logger {
	level, _ := c.level()
	switch c.Log.Format {
	case "json":
		return NewJSONLogger(level)
	case "console":
		return NewConsoleLogger(level)
	default:
		return NewTextLogger(level)
	}
}

// Controller creates a resource controller with the configured limits, to
// be shared by a registry (WithResourceController) and an archiver.
func (c *Config) Controller() *resource.Controller {
	return resource.NewController(resource.Config{
		MemoryLimitBytes:     c.MemoryLimit,
		MaxBackgroundWorkers: c.Archive.Workers,
		IOLimitBytesPerSec:   c.Archive.IOLimit,
	})
}

// Options converts the configuration to registry options.
func (c *Config) Options() []Option {
	opts := []Option{
		WithLogger(c.Logger()),
		WithMemoryLimit(c.MemoryLimit),
	}
	if c.GrowthThreshold > 0 {
		opts = append(opts, WithGrowthThreshold(c.GrowthThreshold))
	}
	return opts
}

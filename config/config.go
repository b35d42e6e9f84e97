// Package config loads pool settings from TOML files and TASKPOOL_* environment
// variables.
//
// A config file looks like:
//
//	[multithreaded]
//	max_cores = 8
//	scheduler = "largest_cost"
//	wait = "250ms"
//
// *Config satisfies pool.MaxCoresProvider, so it can be passed to pool.WithMaxCores.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/utkarsh5026/taskpool/pool"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Environment variables consulted by ApplyEnv.
const (
	EnvMaxCores  = "TASKPOOL_MAX_CORES"
	EnvScheduler = "TASKPOOL_SCHEDULER"
	EnvWait      = "TASKPOOL_WAIT"
)

// Config is the root of the configuration file.
type Config struct {
	MultiThreaded MultiThreadedConfig `toml:"multithreaded"`
}

// MultiThreadedConfig holds the thread pool settings.
type MultiThreadedConfig struct {
	// MaxCores bounds the auto-detected worker count. 0 or less means no bound.
	MaxCores CoreLimit `toml:"max_cores"`

	// Scheduler names the retrieval policy: fifo, lifo, largest_cost or mutexes.
	Scheduler string `toml:"scheduler"`

	// Wait is how long idle workers wait for new tasks, as a Go duration string.
	Wait string `toml:"wait"`
}

// CoreLimit is the max_cores setting. A value that is not a whole number decodes as
// 0, so a bad setting falls back to autodetection instead of failing the load.
type CoreLimit int

// UnmarshalTOML implements toml.Unmarshaler. Integers and integer strings are kept;
// anything else becomes 0.
func (l *CoreLimit) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case int64:
		*l = CoreLimit(x)
	case string:
		*l = parseCoreLimit(x)
	default:
		*l = 0
	}
	return nil
}

func parseCoreLimit(s string) CoreLimit {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return CoreLimit(n)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MultiThreaded: MultiThreadedConfig{
			MaxCores:  0,
			Scheduler: "fifo",
			Wait:      "0s",
		},
	}
}

// Load reads path over the defaults and validates the result.
// Environment overrides are not applied; call ApplyEnv for that.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode TOML file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML text over the defaults and validates the result.
func Parse(data string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode TOML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment:
//
//   - TASKPOOL_MAX_CORES: overrides multithreaded.max_cores; unparsable values clear the bound
//   - TASKPOOL_SCHEDULER: overrides multithreaded.scheduler
//   - TASKPOOL_WAIT: overrides multithreaded.wait
func (c *Config) ApplyEnv() {
	if v, ok := os.LookupEnv(EnvMaxCores); ok {
		c.MultiThreaded.MaxCores = parseCoreLimit(v)
	}

	if v := os.Getenv(EnvScheduler); v != "" {
		c.MultiThreaded.Scheduler = v
	}

	if v := os.Getenv(EnvWait); v != "" {
		c.MultiThreaded.Wait = v
	}
}

// Validate checks the scheduler name and the wait duration.
func (c *Config) Validate() error {
	if _, err := pool.ParseStrategy(c.MultiThreaded.Scheduler); err != nil {
		return fmt.Errorf("%w: multithreaded.scheduler: %w", ErrInvalidConfig, err)
	}
	if _, err := c.WaitDuration(); err != nil {
		return err
	}
	return nil
}

// MaxCores implements pool.MaxCoresProvider. Non-positive values are reported absent.
func (c *Config) MaxCores() (int, bool) {
	if c == nil || c.MultiThreaded.MaxCores <= 0 {
		return 0, false
	}
	return int(c.MultiThreaded.MaxCores), true
}

// Strategy returns the configured scheduling policy.
func (c *Config) Strategy() (pool.StrategyType, error) {
	return pool.ParseStrategy(c.MultiThreaded.Scheduler)
}

// WaitDuration parses multithreaded.wait. An empty value is zero.
func (c *Config) WaitDuration() (time.Duration, error) {
	w := strings.TrimSpace(c.MultiThreaded.Wait)
	if w == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(w)
	if err != nil {
		return 0, fmt.Errorf("%w: multithreaded.wait: %w", ErrInvalidConfig, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: multithreaded.wait must not be negative, got %s", ErrInvalidConfig, w)
	}
	return d, nil
}

// Lookup returns a setting by dotted key, e.g. "MultiThreaded.MaxCores" or
// "multithreaded.max_cores". Matching is case-insensitive and ignores underscores.
func (c *Config) Lookup(key string) (string, error) {
	if key == "" {
		return "", errors.New("empty key")
	}

	parts := strings.Split(key, ".")
	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		name := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(n string) bool {
			return strings.EqualFold(n, name)
		})
		if !field.IsValid() {
			return "", fmt.Errorf("unknown key: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return "", fmt.Errorf("key %s is a section", key)
			}
			return fmt.Sprint(field.Interface()), nil
		}

		if field.Kind() != reflect.Struct {
			return "", fmt.Errorf("key %s is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}

	return "", fmt.Errorf("invalid key: %s", key)
}

func normalizeFieldName(name string) string {
	return strings.ReplaceAll(name, "_", "")
}

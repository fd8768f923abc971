package sched

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	yaml "github.com/goccy/go-yaml"
	"github.com/spf13/afero"
)

// Config mirrors corun.yml
type Config struct {
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Demo      DemoConfig      `yaml:"demo"`
}

// SchedulerConfig tunes the event loop itself.
type SchedulerConfig struct {
	TimeScale float64 `yaml:"time_scale"` // 1.0 (by default), multiplies every Sleep duration
	TraceCSV  string  `yaml:"trace_csv"`  // empty (by default) = no CSV trace
	LogEvents bool    `yaml:"log_events"` // log every status event at debug level
}

// DemoConfig parameterizes the bundled workloads of the corun command.
type DemoConfig struct {
	Count      int `yaml:"count"`       // 10 (by default)
	IntervalMS int `yaml:"interval_ms"` // 1000 (by default)
	Consumers  int `yaml:"consumers"`   // 1 (by default)
}

// Interval returns the demo interval as a duration.
func (d DemoConfig) Interval() time.Duration {
	return time.Duration(d.IntervalMS) * time.Millisecond
}

// DefaultConfig is used when no config file is given or found.
func DefaultConfig() Config {
	return Config{
		Scheduler: SchedulerConfig{
			TimeScale: 1.0,
		},
		Demo: DemoConfig{
			Count:      10,
			IntervalMS: 1000,
			Consumers:  1,
		},
	}
}

// Load reads YAML from fsys and overrides defaults; empty path or a missing
// file means defaults only. A malformed file is an error.
func Load(fsys afero.Fs, path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
	}

	// sanity clamps
	if cfg.Scheduler.TimeScale <= 0 {
		cfg.Scheduler.TimeScale = 1.0
	}
	if cfg.Demo.Count < 0 {
		cfg.Demo.Count = 0
	}
	if cfg.Demo.IntervalMS < 0 {
		cfg.Demo.IntervalMS = 0
	}
	if cfg.Demo.Consumers <= 0 {
		cfg.Demo.Consumers = 1
	}

	return cfg, nil
}

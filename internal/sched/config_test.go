package sched_test

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corun/internal/sched"
)

func TestLoadDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()

	cfg, err := sched.Load(fs, "")
	require.NoError(t, err)
	assert.Equal(t, sched.DefaultConfig(), cfg)

	cfg, err = sched.Load(fs, "missing.yml")
	require.NoError(t, err)
	assert.Equal(t, sched.DefaultConfig(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "corun.yml", []byte(`
scheduler:
  time_scale: 0.5
  trace_csv: trace.csv
  log_events: true
demo:
  count: 3
  interval_ms: 250
`), 0o644))

	cfg, err := sched.Load(fs, "corun.yml")
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Scheduler.TimeScale)
	assert.Equal(t, "trace.csv", cfg.Scheduler.TraceCSV)
	assert.True(t, cfg.Scheduler.LogEvents)
	assert.Equal(t, 3, cfg.Demo.Count)
	assert.Equal(t, 250*time.Millisecond, cfg.Demo.Interval())
	assert.Equal(t, 1, cfg.Demo.Consumers, "unset fields keep their defaults")
}

func TestLoadClamps(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "bad.yml", []byte(`
scheduler:
  time_scale: -2
demo:
  count: -1
  interval_ms: -5
  consumers: 0
`), 0o644))

	cfg, err := sched.Load(fs, "bad.yml")
	require.NoError(t, err)

	assert.Equal(t, 1.0, cfg.Scheduler.TimeScale)
	assert.Equal(t, 0, cfg.Demo.Count)
	assert.Equal(t, 0, cfg.Demo.IntervalMS)
	assert.Equal(t, 1, cfg.Demo.Consumers)
}

func TestLoadMalformed(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "broken.yml", []byte("scheduler: [unclosed"), 0o644))

	cfg, err := sched.Load(fs, "broken.yml")
	assert.Error(t, err)
	assert.Equal(t, sched.DefaultConfig(), cfg)
}

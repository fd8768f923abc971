package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fastConfig = `
demo:
  count: 3
  interval_ms: 1
  consumers: 2
`

func run(t *testing.T, args ...string) (string, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "corun.yml", []byte(fastConfig), 0o644))

	var out bytes.Buffer
	err := Execute(append([]string{"corun", "--config", "corun.yml"}, args...), &out, fs)
	require.NoError(t, err)
	return out.String(), fs
}

func TestProduceCommand(t *testing.T) {
	out, _ := run(t, "produce")

	assert.Contains(t, out, "Producing 0")
	assert.Contains(t, out, "Producing 2")
	assert.Contains(t, out, "Producer done")
	assert.Contains(t, out, "consumer-1 done")
	assert.Contains(t, out, "consumer-2 done")
	assert.Equal(t, 3, strings.Count(out, "consuming"))
}

func TestCountdownCommand(t *testing.T) {
	out, _ := run(t, "--scale", "0.5", "countdown")

	assert.Equal(t, 3, strings.Count(out, "Down"))
	assert.Equal(t, 3, strings.Count(out, "Up"))
	assert.True(t, strings.HasPrefix(out, "Down 3\nUp 0\n"))
}

func TestCallbacksCommandWithTrace(t *testing.T) {
	out, fs := run(t, "--trace", "trace.csv", "callbacks")

	assert.Equal(t, "Down 3\nDown 2\nDown 1\n", out)

	data, err := afero.ReadFile(fs, "trace.csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "timestamp,event,task_id,name,resumes,detail\n"))
	assert.Contains(t, string(data), "call-later")
}

func TestMissingConfigUsesDefaults(t *testing.T) {
	var out bytes.Buffer
	err := Execute([]string{"corun", "--config", "nope.yml", "--scale", "0.0001", "callbacks"}, &out, afero.NewMemMapFs())
	require.NoError(t, err)
	assert.Equal(t, 10, strings.Count(out.String(), "Down"))
}

func TestMalformedConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "bad.yml", []byte("demo: [oops"), 0o644))

	err := Execute([]string{"corun", "--config", "bad.yml", "produce"}, &bytes.Buffer{}, fs)
	assert.Error(t, err)
}

package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfigValues(t *testing.T) {
	c := NewDefaultConfig()
	assert.Equal(t, 100, c.Scheduler.QueueCapacity)
	assert.Equal(t, 5, c.Scheduler.MaxConcurrent)
	assert.Equal(t, 3, c.Scheduler.MaxRetries)
	assert.True(t, c.Browser.Headless)
	assert.Equal(t, "file", c.Storage.Backend)
	assert.Equal(t, "info", c.Logging.Level)
}

func TestLoadFromFileEmptyPathReturnsDefaults(t *testing.T) {
	c, err := LoadFromFile("")
	require.NoError(t, err)
	assert.Equal(t, NewDefaultConfig(), c)
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weaver.toml")
	toml := `
[scheduler]
queue_capacity = 50
max_concurrent = 2

[browser]
timeout_preset = "fast"
`
	require.NoError(t, os.WriteFile(path, []byte(toml), 0644))

	c, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 50, c.Scheduler.QueueCapacity)
	assert.Equal(t, 2, c.Scheduler.MaxConcurrent)
	assert.Equal(t, "fast", c.Browser.TimeoutPreset)
	// Unset fields keep their defaults.
	assert.Equal(t, 3, c.Scheduler.MaxRetries)
}

func TestLoadFromFileMissingFileErrors(t *testing.T) {
	_, err := LoadFromFile("/no/such/path/weaver.toml")
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("WEAVER_SCHEDULER_MAX_CONCURRENT", "9")
	t.Setenv("WEAVER_STORAGE_BACKEND", "badger")

	c, err := LoadFromFile("")
	require.NoError(t, err)
	assert.Equal(t, 9, c.Scheduler.MaxConcurrent)
	assert.Equal(t, "badger", c.Storage.Backend)
}

func TestResolveTimeoutPresetFallsBackToDefault(t *testing.T) {
	c := NewDefaultConfig()
	c.Browser.TimeoutPreset = "nonsense"
	assert.Equal(t, "default", c.ResolveTimeoutPreset())

	c.Browser.TimeoutPreset = "patient"
	assert.Equal(t, "patient", c.ResolveTimeoutPreset())
}

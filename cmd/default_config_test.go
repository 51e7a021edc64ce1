package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repoDefaultsPath(t *testing.T) string {
	t.Helper()
	for _, path := range []string{"defaults.yaml", "../defaults.yaml"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	t.Skip("defaults.yaml not found, skipping integration test")
	return ""
}

func TestLoadDefaultsConfig_RepoFile_AllPresetsValid(t *testing.T) {
	// GIVEN the shipped defaults.yaml
	cfg, err := loadDefaultsConfig(repoDefaultsPath(t))
	require.NoError(t, err)

	// THEN the default device exists and every preset has a usable geometry
	require.NotEmpty(t, cfg.Devices)
	assert.Contains(t, cfg.Devices, cfg.Defaults.Device)
	for name := range cfg.Devices {
		_, preset, err := GetDevicePreset(cfg, name)
		assert.NoError(t, err, name)
		assert.GreaterOrEqual(t, preset.ErrorRate, 0.0, name)
		assert.Less(t, preset.ErrorRate, 1.0, name)
	}
}

func TestGetDevicePreset_EmptyName_UsesDefault(t *testing.T) {
	cfg, err := loadDefaultsConfig(repoDefaultsPath(t))
	require.NoError(t, err)

	name, preset, err := GetDevicePreset(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, cfg.Defaults.Device, name)
	assert.Positive(t, preset.Geometry.Capacity)
}

func writeDefaults(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "defaults.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadDefaultsConfig_InlineGeometry(t *testing.T) {
	path := writeDefaults(t, `
version: "1"
defaults:
  device: tiny
  policy: fcfs
devices:
  tiny:
    description: test disk
    capacity: 1048576
    seek_base: 10
    seek_per_gib: 1.5
    transfer_rate: 64
    command_overhead: 2
    error_rate: 0.1
    max_retries: 2
`)
	cfg, err := loadDefaultsConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "fcfs", cfg.Defaults.Policy)

	tiny := cfg.Devices["tiny"]
	assert.Equal(t, int64(1<<20), tiny.Geometry.Capacity)
	assert.Equal(t, int64(10), tiny.Geometry.SeekBase)
	assert.Equal(t, 1.5, tiny.Geometry.SeekPerGiB)
	assert.Equal(t, 64.0, tiny.Geometry.TransferRate)
	assert.Equal(t, int64(2), tiny.Geometry.CommandOverhead)
	assert.Equal(t, 0.1, tiny.ErrorRate)
	assert.Equal(t, 2, tiny.MaxRetries)
}

func TestLoadDefaultsConfig_UnknownKey_ReturnsError(t *testing.T) {
	path := writeDefaults(t, `
devices:
  tiny:
    capacity: 1048576
    transfer_rat: 64
`)
	_, err := loadDefaultsConfig(path)
	assert.Error(t, err)
}

func TestLoadDefaultsConfig_MissingFile_ReturnsError(t *testing.T) {
	_, err := loadDefaultsConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestGetDevicePreset_Errors(t *testing.T) {
	cfg := Config{Devices: map[string]DevicePreset{
		"broken": {Description: "zero transfer rate"},
	}}

	_, _, err := GetDevicePreset(cfg, "missing")
	assert.ErrorContains(t, err, "unknown device preset")
	assert.ErrorContains(t, err, "broken")

	_, _, err = GetDevicePreset(cfg, "broken")
	assert.ErrorContains(t, err, `device preset "broken"`)
}

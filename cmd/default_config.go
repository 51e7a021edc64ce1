package cmd

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/iosched-sim/iosched-sim/sim"
)

// Config represents the full defaults.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Version  string                  `yaml:"version"`
	Defaults DefaultConfig           `yaml:"defaults"`
	Devices  map[string]DevicePreset `yaml:"devices"`
}

// DefaultConfig names the device and policy used when no flag selects one.
type DefaultConfig struct {
	Device string `yaml:"device"`
	Policy string `yaml:"policy"`
}

// DevicePreset is a named disk model: its geometry plus the fault profile
// applied unless overridden on the command line.
type DevicePreset struct {
	Description string       `yaml:"description"`
	Geometry    sim.Geometry `yaml:",inline"`
	ErrorRate   float64      `yaml:"error_rate"`
	MaxRetries  int          `yaml:"max_retries"`
}

// loadDefaultsConfig parses defaults.yaml into a Config struct.
// Uses strict field checking: typos must cause errors.
func loadDefaultsConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading defaults file %s: %w", path, err)
	}
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing defaults YAML %s: %w", path, err)
	}
	return cfg, nil
}

// GetDevicePreset returns the named preset, or the configured default device
// when name is empty. The preset's geometry is validated.
func GetDevicePreset(cfg Config, name string) (string, DevicePreset, error) {
	if name == "" {
		name = cfg.Defaults.Device
	}
	preset, ok := cfg.Devices[name]
	if !ok {
		return "", DevicePreset{}, fmt.Errorf("unknown device preset %q; available: %v", name, deviceNames(cfg))
	}
	if err := preset.Geometry.Validate(); err != nil {
		return "", DevicePreset{}, fmt.Errorf("device preset %q: %w", name, err)
	}
	return name, preset, nil
}

func deviceNames(cfg Config) []string {
	names := make([]string, 0, len(cfg.Devices))
	for name := range cfg.Devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

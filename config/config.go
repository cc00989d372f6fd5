package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/perfkit/devicebench/harness"
)

// BridgeConfig selects the transport and carries its kind-specific options.
// The options map is decoded by the bridge factory itself, so new bridge
// kinds don't need fields here.
type BridgeConfig struct {
	Kind    string         `yaml:"kind"`
	Options map[string]any `yaml:"options"`
}

type Config struct {
	Bridge    BridgeConfig `yaml:"bridge"`
	Artifact  string       `yaml:"artifact"`
	RemoteDir string       `yaml:"remote_dir"`
	Size      int          `yaml:"size"`
	Check     bool         `yaml:"check"`
	Debug     bool         `yaml:"debug"`
}

func DefaultConfig() *Config {
	return &Config{
		Bridge:    BridgeConfig{Kind: "adb"},
		Artifact:  harness.DefaultArtifact,
		RemoteDir: harness.DefaultRemoteDir,
		Size:      harness.DefaultSize,
	}
}

// Load reads configuration from a file. An explicitly given path must load;
// with no path the well-known names are tried in order and defaults are
// returned when none exists.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error
	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	} else {
		found := false
		for _, name := range []string{"devicebench.yaml", ".devicebench.yaml"} {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name
				found = true
				break
			}
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file %s: %w", name, err)
			}
		}
		if !found {
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a file with ENV interpolation. If configPath
// is empty, it searches default locations; when no file exists anywhere, the
// defaults are returned as-is.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	path := resolveConfigPath(configPath, getenv)

	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	data = interpolateEnv(data, getenv)

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// resolveConfigPath picks the config file to read.
// Search order: explicit path > ROLL_CONFIG env > ./roll.yaml > ~/.config/roll/roll.yaml
func resolveConfigPath(configPath string, getenv func(string) string) string {
	if configPath != "" {
		return configPath
	}

	if path := getenv("ROLL_CONFIG"); path != "" {
		return path
	}

	if _, err := os.Stat("roll.yaml"); err == nil {
		return "roll.yaml"
	}

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "roll", "roll.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// interpolateEnv replaces ${VAR} references with environment values
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envPattern.FindSubmatch(match)[1]
		return []byte(getenv(string(name)))
	})
}

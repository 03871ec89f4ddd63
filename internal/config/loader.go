package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const flappyFile = "flappy.yaml"

// LoadFlappy loads Flappy configuration.
// Search order: customPath -> ~/.arcade/configs/flappy.yaml -> ./configs/flappy.yaml -> embedded default.
// Files may be partial; missing keys keep their default values.
func LoadFlappy(customPath string) (FlappyConfig, error) {
	if customPath != "" {
		return LoadFlappyFile(customPath)
	}

	for _, path := range searchPaths() {
		if cfg, err := LoadFlappyFile(path); err == nil {
			return cfg, nil
		}
	}

	cfg := DefaultFlappyConfig()
	if err := yaml.Unmarshal(defaultFlappyYAML, &cfg); err != nil {
		return DefaultFlappyConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// LoadFlappyFile reads one YAML file on top of the defaults.
func LoadFlappyFile(path string) (FlappyConfig, error) {
	cfg := DefaultFlappyConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// FlappySource returns the file LoadFlappy would read, or "" when it would
// fall back to the embedded default.
func FlappySource(customPath string) string {
	if customPath != "" {
		return customPath
	}
	for _, path := range searchPaths() {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Marshal renders a config as YAML.
func Marshal(cfg FlappyConfig) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func searchPaths() []string {
	paths := make([]string, 0, 2)
	if p := userConfigPath(flappyFile); p != "" {
		paths = append(paths, p)
	}
	return append(paths, filepath.Join("configs", flappyFile))
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".arcade", "configs", filename)
}

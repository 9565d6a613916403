package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DataDirName is the per-user directory holding configs, the score
// database and logs.
const DataDirName = ".perfect-potion"

// configFileName is the file looked up in each config location.
const configFileName = "potion.yaml"

// LoadPotion loads Perfect Potion configuration.
// Search order: customPath -> ~/.perfect-potion/configs/potion.yaml -> ./configs/potion.yaml -> embedded default
//
// Files are decoded over the built-in defaults, so a file only needs the
// keys it changes.
func LoadPotion(customPath string) (PotionConfig, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return PotionConfig{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := parse(data)
		if err != nil {
			return PotionConfig{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(configFileName); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := parse(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", configFileName)); err == nil {
		if cfg, err := parse(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := parse(defaultPotionYAML)
	if err != nil {
		return DefaultPotionConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

func parse(data []byte) (PotionConfig, error) {
	cfg := DefaultPotionConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return PotionConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return PotionConfig{}, err
	}
	return cfg, nil
}

// DataDir returns ~/.perfect-potion, or an empty string if home is unavailable.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DataDirName)
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	dir := DataDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "configs", filename)
}

// UserConfigPath returns where LoadPotion looks for the per-user config.
func UserConfigPath() string {
	return userConfigPath(configFileName)
}

// ApplyPotionPreset modifies the config based on a difficulty preset.
// Normal leaves the loaded values untouched.
func ApplyPotionPreset(cfg *PotionConfig, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Player.StartLives = 5
		cfg.Player.InvulnerabilityMS = 3000
		cfg.Spawn.Weights.Bomb = 1
	case DifficultyHard:
		cfg.Player.StartLives = 2
		cfg.Levels.Start = 5
		cfg.Spawn.Weights.Hazard *= 2
	}
}

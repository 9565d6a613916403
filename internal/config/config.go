// Package config provides YAML-based game configuration loading and
// level scaling for Perfect Potion.
package config

import (
	"errors"
	"fmt"
)

// PotionConfig contains all configuration for a Perfect Potion run.
// Distances are world pixels, speeds are pixels per tick and durations
// are milliseconds.
type PotionConfig struct {
	Window    WindowConfig    `yaml:"window"`
	Spawn     SpawnConfig     `yaml:"spawn"`
	Player    PlayerConfig    `yaml:"player"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Damage    DamageConfig    `yaml:"damage"`
	Explosion ExplosionConfig `yaml:"explosion"`
	Levels    LevelConfig     `yaml:"levels"`
}

// WindowConfig defines the simulated world.
type WindowConfig struct {
	Width       int `yaml:"width"`
	Height      int `yaml:"height"`
	FPS         int `yaml:"fps"`
	ArenaFloorY int `yaml:"arena_floor_y"` // Top of the playable band
}

// SpawnWeights are the relative odds of each item kind.
type SpawnWeights struct {
	Ingredient int `yaml:"ingredient"`
	Hazard     int `yaml:"hazard"`
	Bomb       int `yaml:"bomb"`
}

// Total returns the sum of all weights.
func (w SpawnWeights) Total() int {
	return w.Ingredient + w.Hazard + w.Bomb
}

// SpawnConfig defines item spawning.
type SpawnConfig struct {
	Weights          SpawnWeights `yaml:"weights"`
	MinSpeed         float64      `yaml:"min_speed"`
	MaxSpeed         float64      `yaml:"max_speed"`
	MaxItemsOnScreen int          `yaml:"max_items_on_screen"`
	CooldownMS       int          `yaml:"cooldown_ms"` // Minimum gap between two batches
	MinBatch         int          `yaml:"min_batch"`
	MaxBatch         int          `yaml:"max_batch"`
	MaxOffset        int          `yaml:"max_offset"` // Horizontal distance outside the edge
	OffscreenMargin  int          `yaml:"offscreen_margin"`
	ItemWidth        int          `yaml:"item_width"`
	ItemHeight       int          `yaml:"item_height"`
}

// PlayerConfig defines the alchemist.
type PlayerConfig struct {
	StartLives        int     `yaml:"start_lives"`
	Speed             float64 `yaml:"speed"`
	InvulnerabilityMS int     `yaml:"invulnerability_ms"`
	ShootCooldownMS   int     `yaml:"shoot_cooldown_ms"`
	Width             int     `yaml:"width"`
	Height            int     `yaml:"height"`
	ProjectileSpeed   float64 `yaml:"projectile_speed"`
	ProjectileWidth   int     `yaml:"projectile_width"`
	ProjectileHeight  int     `yaml:"projectile_height"`
}

// ScoringConfig defines point values.
type ScoringConfig struct {
	IngredientPerLevel  int `yaml:"ingredient_per_level"` // Correct recipe pick, multiplied by level
	FreeIngredient      int `yaml:"free_ingredient"`
	ExplosionIngredient int `yaml:"explosion_ingredient"`
	ExplosionHazard     int `yaml:"explosion_hazard"`
	ProjectileHit       int `yaml:"projectile_hit"`
}

// DamageConfig defines how many lives each dangerous item takes.
type DamageConfig struct {
	Hazard      int `yaml:"hazard"`
	Bomb        int `yaml:"bomb"`
	IndicatorMS int `yaml:"indicator_ms"` // Lifetime of floating damage text
}

// ExplosionConfig defines bomb explosions.
type ExplosionConfig struct {
	Radius float64 `yaml:"radius"`
}

// LevelConfig defines level progression.
type LevelConfig struct {
	Start          int                 `yaml:"start"`
	LevelUpDelayMS int                 `yaml:"level_up_delay_ms"`
	SpawnInterval  SpawnIntervalConfig `yaml:"spawn_interval"`
	Recipe         RecipeConfig        `yaml:"recipe"`
	FallSpeed      FallSpeedConfig     `yaml:"fall_speed"`
}

// SpawnIntervalConfig defines max(Base - level*Step, Floor).
type SpawnIntervalConfig struct {
	BaseMS  int `yaml:"base_ms"`
	StepMS  int `yaml:"step_ms"`
	FloorMS int `yaml:"floor_ms"`
}

// RecipeConfig defines recipe length: Base plus one per threshold reached.
type RecipeConfig struct {
	Base       int   `yaml:"base"`
	Thresholds []int `yaml:"thresholds"`
}

// FallSpeedConfig defines Base + (level-1)*Step.
type FallSpeedConfig struct {
	Base float64 `yaml:"base"`
	Step float64 `yaml:"step"`
}

// Validate checks that the configuration can drive a game.
func (c PotionConfig) Validate() error {
	var errs []error

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Window.ArenaFloorY < 0 || c.Window.ArenaFloorY >= c.Window.Height {
		errs = append(errs, fmt.Errorf("arena_floor_y %d outside window", c.Window.ArenaFloorY))
	}
	if c.Spawn.Weights.Ingredient < 0 || c.Spawn.Weights.Hazard < 0 || c.Spawn.Weights.Bomb < 0 {
		errs = append(errs, errors.New("spawn weights must not be negative"))
	} else if c.Spawn.Weights.Total() == 0 {
		errs = append(errs, errors.New("at least one spawn weight must be positive"))
	}
	if c.Spawn.MinSpeed <= 0 || c.Spawn.MaxSpeed < c.Spawn.MinSpeed {
		errs = append(errs, fmt.Errorf("invalid speed range [%v, %v]", c.Spawn.MinSpeed, c.Spawn.MaxSpeed))
	}
	if c.Spawn.MinBatch <= 0 || c.Spawn.MaxBatch < c.Spawn.MinBatch {
		errs = append(errs, fmt.Errorf("invalid batch range [%d, %d]", c.Spawn.MinBatch, c.Spawn.MaxBatch))
	}
	if c.Spawn.MaxItemsOnScreen < 0 {
		errs = append(errs, errors.New("max_items_on_screen must not be negative"))
	}
	if c.Spawn.ItemWidth <= 0 || c.Spawn.ItemHeight <= 0 {
		errs = append(errs, errors.New("item size must be positive"))
	}
	if c.Player.StartLives <= 0 {
		errs = append(errs, errors.New("start_lives must be positive"))
	}
	if c.Player.Width <= 0 || c.Player.Height <= 0 {
		errs = append(errs, errors.New("player size must be positive"))
	}
	if c.Levels.Start < 1 {
		errs = append(errs, fmt.Errorf("levels.start must be at least 1, got %d", c.Levels.Start))
	}
	if c.Levels.Recipe.Base <= 0 {
		errs = append(errs, errors.New("recipe base length must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid potion config: %w", errors.Join(errs...))
	}
	return nil
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// ParsePreset converts a flag value into a preset.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(s); p {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return p, nil
	case "":
		return DifficultyNormal, nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (want easy, normal or hard)", s)
	}
}

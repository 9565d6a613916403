package config

import (
	_ "embed"
)

//go:embed defaults/potion.yaml
var defaultPotionYAML []byte

// DefaultPotionConfig returns the built-in Perfect Potion configuration.
func DefaultPotionConfig() PotionConfig {
	return PotionConfig{
		Window: WindowConfig{
			Width:       800,
			Height:      600,
			FPS:         60,
			ArenaFloorY: 210,
		},
		Spawn: SpawnConfig{
			Weights: SpawnWeights{
				Ingredient: 25,
				Hazard:     3,
				Bomb:       2,
			},
			MinSpeed:         3,
			MaxSpeed:         7,
			MaxItemsOnScreen: 100,
			CooldownMS:       2000,
			MinBatch:         2,
			MaxBatch:         4,
			MaxOffset:        50,
			OffscreenMargin:  100,
			ItemWidth:        40,
			ItemHeight:       40,
		},
		Player: PlayerConfig{
			StartLives:        3,
			Speed:             5,
			InvulnerabilityMS: 2000,
			ShootCooldownMS:   250,
			Width:             80,
			Height:            80,
			ProjectileSpeed:   25,
			ProjectileWidth:   60,
			ProjectileHeight:  20,
		},
		Scoring: ScoringConfig{
			IngredientPerLevel:  10,
			FreeIngredient:      10,
			ExplosionIngredient: 10,
			ExplosionHazard:     -5,
			ProjectileHit:       5,
		},
		Damage: DamageConfig{
			Hazard:      1,
			Bomb:        2,
			IndicatorMS: 1000,
		},
		Explosion: ExplosionConfig{
			Radius: 150,
		},
		Levels: LevelConfig{
			Start:          1,
			LevelUpDelayMS: 500,
			SpawnInterval: SpawnIntervalConfig{
				BaseMS:  1000,
				StepMS:  50,
				FloorMS: 200,
			},
			Recipe: RecipeConfig{
				Base:       2,
				Thresholds: []int{5, 10},
			},
			FallSpeed: FallSpeedConfig{
				Base: 1.0,
				Step: 0.1,
			},
		},
	}
}

// DefaultYAML returns the embedded default configuration file, suitable
// for writing out as a starting point for customisation.
func DefaultYAML() []byte {
	return defaultPotionYAML
}

package config

import "time"

// DifficultyManager derives per-level parameters from the level config.
type DifficultyManager struct {
	cfg LevelConfig
}

// NewDifficultyManager creates a new difficulty manager.
func NewDifficultyManager(cfg LevelConfig) *DifficultyManager {
	return &DifficultyManager{cfg: cfg}
}

// RecipeLength returns how many potions a level's recipe requires:
// 2 below level 5, 3 below level 10 and 4 from there on with the defaults.
func (d *DifficultyManager) RecipeLength(level int) int {
	n := d.cfg.Recipe.Base
	for _, t := range d.cfg.Recipe.Thresholds {
		if level >= t {
			n++
		}
	}
	return n
}

// SpawnInterval returns the time between two spawn attempts at a level.
func (d *DifficultyManager) SpawnInterval(level int) time.Duration {
	ms := d.cfg.SpawnInterval.BaseMS - level*d.cfg.SpawnInterval.StepMS
	if ms < d.cfg.SpawnInterval.FloorMS {
		ms = d.cfg.SpawnInterval.FloorMS
	}
	return time.Duration(ms) * time.Millisecond
}

// FallSpeed returns the item speed multiplier for a level.
func (d *DifficultyManager) FallSpeed(level int) float64 {
	if level < 1 {
		level = 1
	}
	return d.cfg.FallSpeed.Base + float64(level-1)*d.cfg.FallSpeed.Step
}

// LevelUpDelay returns the pause between completing a recipe and the next level.
func (d *DifficultyManager) LevelUpDelay() time.Duration {
	return time.Duration(d.cfg.LevelUpDelayMS) * time.Millisecond
}

// StartLevel returns the first level of a run.
func (d *DifficultyManager) StartLevel() int {
	if d.cfg.Start < 1 {
		return 1
	}
	return d.cfg.Start
}

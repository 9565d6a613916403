package potion

import (
	"math/rand"

	"github.com/vovakirdan/perfect-potion/internal/config"
)

// LevelManager owns the recipe of the current level and validates that
// potions are collected in order.
//
// A level is in progress until every required potion has been collected,
// after which it stays complete until the next StartLevel.
type LevelManager struct {
	catalog    *Catalog
	difficulty *config.DifficultyManager
	rng        *rand.Rand

	level     int
	required  []string
	collected []string
	complete  bool
}

// NewLevelManager creates a manager drawing recipes from catalog's good potions.
func NewLevelManager(catalog *Catalog, difficulty *config.DifficultyManager, seed int64) *LevelManager {
	return &LevelManager{
		catalog:    catalog,
		difficulty: difficulty,
		rng:        rand.New(rand.NewSource(seed)),
		level:      1,
	}
}

// StartLevel replaces the level state with a fresh recipe for level.
func (m *LevelManager) StartLevel(level int) {
	if level < 1 {
		level = 1
	}
	m.level = level
	m.required = m.generateRecipe(m.difficulty.RecipeLength(level))
	m.collected = make([]string, 0, len(m.required))
	m.complete = false

	logger.Debug("level started", "level", level, "recipe", m.required, "fall_speed", m.FallSpeed())
}

// generateRecipe samples n good potions without replacement. A catalog
// with fewer than n good potions is repeated until it can supply n.
func (m *LevelManager) generateRecipe(n int) []string {
	pool := m.catalog.Good()
	if len(pool) == 0 || n <= 0 {
		return nil
	}
	if len(pool) < n {
		tiled := make([]string, 0, len(pool)*(n/len(pool)+1))
		for i := 0; i < n/len(pool)+1; i++ {
			tiled = append(tiled, pool...)
		}
		pool = tiled
	}

	m.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool[:n]
}

// RegisterPotionCollected checks id against the next expected potion.
// It returns (true, complete) when id matched and (false, false) when it
// did not, when the level is already complete, or when there is no recipe.
// Rejected picks leave the progress untouched.
func (m *LevelManager) RegisterPotionCollected(id string) (accepted, levelComplete bool) {
	if m.complete || len(m.required) == 0 {
		return false, false
	}

	next := m.required[len(m.collected)]
	if id != next {
		logger.Debug("wrong potion order", "got", id, "expected", next)
		return false, false
	}

	m.collected = append(m.collected, id)
	if len(m.collected) == len(m.required) {
		m.complete = true
		return true, true
	}
	return true, false
}

// Progress returns how many potions were collected out of how many are required.
func (m *LevelManager) Progress() (collected, required int) {
	return len(m.collected), len(m.required)
}

// Level returns the current level number.
func (m *LevelManager) Level() int {
	return m.level
}

// Required returns a copy of the current recipe.
func (m *LevelManager) Required() []string {
	return append([]string(nil), m.required...)
}

// Collected returns a copy of the potions collected so far.
func (m *LevelManager) Collected() []string {
	return append([]string(nil), m.collected...)
}

// Complete reports whether the whole recipe has been collected.
func (m *LevelManager) Complete() bool {
	return m.complete
}

// Active reports whether there is a recipe still being collected.
func (m *LevelManager) Active() bool {
	return len(m.required) > 0 && !m.complete
}

// RecipeLength returns the recipe length used for level.
func (m *LevelManager) RecipeLength(level int) int {
	return m.difficulty.RecipeLength(level)
}

// FallSpeed returns the item speed multiplier of the current level.
func (m *LevelManager) FallSpeed() float64 {
	return m.difficulty.FallSpeed(m.level)
}

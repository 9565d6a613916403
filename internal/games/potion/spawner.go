package potion

import (
	"math"
	"math/rand"
	"time"

	"github.com/vovakirdan/perfect-potion/internal/config"
	"github.com/vovakirdan/perfect-potion/internal/core"
)

// Potion IDs used when the catalog has no potion of the needed category.
const (
	fallbackIngredientID = "potion_1"
	fallbackHazardID     = "potion_7"
)

// Spawner creates items in batches from both sides of the arena, keeps
// the live item collection and reclaims items that left the world.
type Spawner struct {
	window     config.WindowConfig
	cfg        config.SpawnConfig
	damage     config.DamageConfig
	catalog    *Catalog
	sprites    *SpriteSheet
	difficulty *config.DifficultyManager
	rng        *rand.Rand

	items      []*Item
	nextID     uint64
	lastSpawn  time.Duration
	hasSpawned bool
}

// NewSpawner creates a spawner with its own seeded RNG.
func NewSpawner(cfg config.PotionConfig, catalog *Catalog, sprites *SpriteSheet, difficulty *config.DifficultyManager, seed int64) *Spawner {
	return &Spawner{
		window:     cfg.Window,
		cfg:        cfg.Spawn,
		damage:     cfg.Damage,
		catalog:    catalog,
		sprites:    sprites,
		difficulty: difficulty,
		rng:        rand.New(rand.NewSource(seed)),
		items:      make([]*Item, 0, cfg.Spawn.MaxItemsOnScreen),
	}
}

// SpawnInterval returns how often the spawn timer fires at level.
func (s *Spawner) SpawnInterval(level int) time.Duration {
	return s.difficulty.SpawnInterval(level)
}

// cooldown returns the minimum time between two batches.
func (s *Spawner) cooldown() time.Duration {
	return time.Duration(s.cfg.CooldownMS) * time.Millisecond
}

// SpawnItem spawns a batch of items unless the previous batch is younger
// than the spawn cooldown. The batch stops early once the live item count
// reaches the cap. It returns the items created.
func (s *Spawner) SpawnItem(now time.Duration, level int) []*Item {
	if s.hasSpawned && now-s.lastSpawn < s.cooldown() {
		return nil
	}
	s.lastSpawn = now
	s.hasSpawned = true

	k := s.cfg.MinBatch + s.rng.Intn(s.cfg.MaxBatch-s.cfg.MinBatch+1)
	fall := s.difficulty.FallSpeed(level)

	created := make([]*Item, 0, k)
	for i := 0; i < k; i++ {
		if len(s.items) >= s.cfg.MaxItemsOnScreen {
			break
		}
		it := s.newItem(i, k, fall)
		s.items = append(s.items, it)
		created = append(created, it)
	}

	if len(created) > 0 {
		logger.Debug("spawned batch", "count", len(created), "live", len(s.items), "level", level)
	}
	return created
}

// newItem creates the i-th of k items of a batch.
func (s *Spawner) newItem(i, k int, fall float64) *Item {
	kind := s.pickKind()

	s.nextID++
	it := &Item{
		ID:   s.nextID,
		Kind: kind,
		W:    float64(s.cfg.ItemWidth),
		H:    float64(s.cfg.ItemHeight),
	}

	switch kind {
	case KindIngredient:
		it.PotionID = s.pickPotion(s.catalog.Good(), fallbackIngredientID)
	case KindHazard:
		it.PotionID = s.pickPotion(s.catalog.Bad(), fallbackHazardID)
		it.Damage = s.damage.Hazard
	case KindBomb:
		it.Damage = s.damage.Bomb
	}
	it.Sprite = s.sprites.Resolve(kind, it.PotionID)

	// Enter from one side, heading for the other
	offset := float64(s.rng.Intn(s.cfg.MaxOffset + 1))
	speed := s.cfg.MinSpeed + s.rng.Float64()*(s.cfg.MaxSpeed-s.cfg.MinSpeed)
	if s.rng.Intn(2) == 0 {
		it.X = -it.W - offset
		it.VX = speed
	} else {
		it.X = float64(s.window.Width) + offset
		it.VX = -speed
	}

	// One vertical stratum per batch slot
	minY := float64(s.window.ArenaFloorY + 10)
	maxY := float64(s.window.Height) - it.H - 10
	if maxY < minY {
		maxY = minY
	}
	step := (maxY - minY) / float64(k)
	base := minY + step*float64(i)
	top := math.Min(base+step, maxY)
	it.Y = base + s.rng.Float64()*(top-base)

	if s.rng.Float64() > 0.5 {
		it.VX *= 0.8 + s.rng.Float64()*0.4
	}
	it.VX = math.Copysign(core.ClampF(math.Abs(it.VX)*fall, s.cfg.MinSpeed, s.cfg.MaxSpeed), it.VX)

	return it
}

// pickKind draws an item kind by the configured weights.
func (s *Spawner) pickKind() ItemKind {
	w := s.cfg.Weights
	r := s.rng.Intn(w.Total())
	switch {
	case r < w.Ingredient:
		return KindIngredient
	case r < w.Ingredient+w.Hazard:
		return KindHazard
	default:
		return KindBomb
	}
}

func (s *Spawner) pickPotion(ids []string, fallback string) string {
	if len(ids) == 0 {
		return fallback
	}
	return ids[s.rng.Intn(len(ids))]
}

// Advance moves every live item by one tick.
func (s *Spawner) Advance() {
	for _, it := range s.items {
		it.Advance()
	}
}

// CleanupOffScreen removes items lying entirely outside the world plus
// the off-screen margin and returns how many were removed.
func (s *Spawner) CleanupOffScreen() int {
	m := float64(s.cfg.OffscreenMargin)
	bounds := core.NewBox(-m, -m, float64(s.window.Width)+2*m, float64(s.window.Height)+2*m)

	kept := s.items[:0]
	removed := 0
	for _, it := range s.items {
		if it.Box().Outside(bounds) {
			removed++
			continue
		}
		kept = append(kept, it)
	}
	clear(s.items[len(kept):])
	s.items = kept
	return removed
}

// Remove drops the given items from the live collection and returns how
// many were found.
func (s *Spawner) Remove(items []*Item) int {
	if len(items) == 0 {
		return 0
	}
	ids := make(map[uint64]struct{}, len(items))
	for _, it := range items {
		ids[it.ID] = struct{}{}
	}

	kept := s.items[:0]
	for _, it := range s.items {
		if _, gone := ids[it.ID]; gone {
			continue
		}
		kept = append(kept, it)
	}
	removed := len(s.items) - len(kept)
	clear(s.items[len(kept):])
	s.items = kept
	return removed
}

// Items returns a snapshot of the live items.
func (s *Spawner) Items() []*Item {
	return append([]*Item(nil), s.items...)
}

// Count returns the number of live items.
func (s *Spawner) Count() int {
	return len(s.items)
}

// Clear removes every live item.
func (s *Spawner) Clear() {
	clear(s.items)
	s.items = s.items[:0]
}

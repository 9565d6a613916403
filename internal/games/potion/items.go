package potion

import "github.com/vovakirdan/perfect-potion/internal/core"

// ItemKind is the closed set of things that fly across the arena.
type ItemKind int

const (
	KindIngredient ItemKind = iota // Potion that may belong to the recipe
	KindHazard                     // Bad potion, costs a life
	KindBomb                       // Costs two lives and explodes
)

// String returns the kind name used in logs.
func (k ItemKind) String() string {
	switch k {
	case KindIngredient:
		return "ingredient"
	case KindHazard:
		return "hazard"
	case KindBomb:
		return "bomb"
	default:
		return "unknown"
	}
}

// Sprite is the visual of an item on the character grid.
type Sprite struct {
	Glyph       rune
	Color       core.Color
	Placeholder bool // Set when the real visual was not available
}

// PlaceholderSprite stands in for any visual that cannot be resolved.
var PlaceholderSprite = Sprite{Glyph: '?', Color: core.ColorGray, Placeholder: true}

var bombSprite = Sprite{Glyph: '@', Color: core.ColorBrightRed}

// SpriteSheet resolves item visuals from the catalog.
type SpriteSheet struct {
	catalog *Catalog
	missing map[string]bool
}

// NewSpriteSheet creates a sprite sheet backed by catalog.
func NewSpriteSheet(catalog *Catalog) *SpriteSheet {
	return &SpriteSheet{
		catalog: catalog,
		missing: make(map[string]bool),
	}
}

// Resolve returns the visual for an item. Unknown potions and potions
// without a glyph get PlaceholderSprite; each one is reported once.
func (s *SpriteSheet) Resolve(kind ItemKind, potionID string) Sprite {
	if kind == KindBomb {
		return bombSprite
	}
	if d, ok := s.catalog.Lookup(potionID); ok && d.Glyph != 0 {
		return Sprite{Glyph: d.Glyph, Color: d.Color}
	}
	if !s.missing[potionID] {
		s.missing[potionID] = true
		logger.Debug("missing potion visual, using placeholder", "potion", potionID, "kind", kind)
	}
	return PlaceholderSprite
}

// Item is a single spawned object. PotionID is empty for bombs.
type Item struct {
	ID       uint64
	Kind     ItemKind
	PotionID string
	X, Y     float64 // Top-left corner in world pixels
	VX       float64 // Horizontal speed in pixels per tick
	W, H     float64
	Damage   int
	Sprite   Sprite
}

// Box returns the item's bounding box.
func (it *Item) Box() core.Box {
	return core.NewBox(it.X, it.Y, it.W, it.H)
}

// Center returns the center of the item.
func (it *Item) Center() (float64, float64) {
	return it.Box().Center()
}

// Advance moves the item by one tick.
func (it *Item) Advance() {
	it.X += it.VX
}

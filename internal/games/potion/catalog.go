package potion

import "github.com/vovakirdan/perfect-potion/internal/core"

// Category separates potions that can appear in a recipe from harmful ones.
type Category int

const (
	CategoryGood Category = iota
	CategoryBad
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryGood:
		return "good"
	case CategoryBad:
		return "bad"
	default:
		return "unknown"
	}
}

// PotionDefinition describes one potion type. Glyph and Color are its
// visual; a zero Glyph means the potion has no visual of its own.
type PotionDefinition struct {
	ID       string
	Category Category
	Effect   string
	Glyph    rune
	Color    core.Color
}

// Catalog is an immutable lookup table of potion definitions.
type Catalog struct {
	byID map[string]PotionDefinition
	good []string
	bad  []string
}

// NewCatalog builds a catalog from the given definitions.
// Definition order is kept for Good and Bad; later duplicates are ignored.
func NewCatalog(defs ...PotionDefinition) *Catalog {
	c := &Catalog{byID: make(map[string]PotionDefinition, len(defs))}
	for _, d := range defs {
		if _, dup := c.byID[d.ID]; dup {
			continue
		}
		c.byID[d.ID] = d
		switch d.Category {
		case CategoryGood:
			c.good = append(c.good, d.ID)
		case CategoryBad:
			c.bad = append(c.bad, d.ID)
		}
	}
	return c
}

// DefaultCatalog returns the ten potions shipped with the game.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		PotionDefinition{ID: "potion_1", Category: CategoryGood, Effect: "raises score", Glyph: 'A', Color: core.ColorBrightGreen},
		PotionDefinition{ID: "potion_2", Category: CategoryGood, Effect: "raises score", Glyph: 'B', Color: core.ColorBrightCyan},
		PotionDefinition{ID: "potion_4", Category: CategoryGood, Effect: "special bonus", Glyph: 'C', Color: core.ColorBrightYellow},
		PotionDefinition{ID: "potion_5", Category: CategoryBad, Effect: "causes damage", Glyph: 'x', Color: core.ColorRed},
		PotionDefinition{ID: "potion_7", Category: CategoryBad, Effect: "poison", Glyph: 'v', Color: core.ColorGreen},
		PotionDefinition{ID: "potion_10", Category: CategoryGood, Effect: "special bonus", Glyph: 'D', Color: core.ColorBrightMagenta},
		PotionDefinition{ID: "potion_3", Category: CategoryGood, Effect: "medium score", Glyph: 'E', Color: core.ColorBlue},
		PotionDefinition{ID: "potion_6", Category: CategoryGood, Effect: "light bonus", Glyph: 'F', Color: core.ColorOrange},
		PotionDefinition{ID: "potion_8", Category: CategoryBad, Effect: "bad effect", Glyph: 'z', Color: core.ColorMagenta},
		PotionDefinition{ID: "potion_9", Category: CategoryBad, Effect: "volatile", Glyph: 'w', Color: core.ColorPurple},
	)
}

// Lookup returns the definition for id.
func (c *Catalog) Lookup(id string) (PotionDefinition, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// IsGood reports whether id is a known good potion.
func (c *Catalog) IsGood(id string) bool {
	d, ok := c.byID[id]
	return ok && d.Category == CategoryGood
}

// Good returns the IDs of all good potions in definition order.
func (c *Catalog) Good() []string {
	return append([]string(nil), c.good...)
}

// Bad returns the IDs of all bad potions in definition order.
func (c *Catalog) Bad() []string {
	return append([]string(nil), c.bad...)
}

// Len returns the number of potions in the catalog.
func (c *Catalog) Len() int {
	return len(c.byID)
}

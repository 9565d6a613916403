package potion

import (
	"sort"

	"github.com/vovakirdan/perfect-potion/internal/core"
)

// ExplosionHit is an item caught in a blast.
type ExplosionHit struct {
	Item     *Item
	Distance float64
	Force    float64 // 1 at the center, 0 at the edge
}

// Explosion is the outcome of a bomb going off.
type Explosion struct {
	X, Y   float64
	Radius float64
	Hits   []ExplosionHit // Nearest first
}

// Detonate finds the ingredients and hazards whose centers lie strictly
// within radius of (x, y). Other bombs are not affected.
func Detonate(x, y, radius float64, items []*Item) Explosion {
	ex := Explosion{X: x, Y: y, Radius: radius}
	if radius <= 0 {
		return ex
	}

	area := core.NewBox(x-radius, y-radius, 2*radius, 2*radius)
	for _, it := range items {
		if it.Kind == KindBomb || !area.Intersects(it.Box()) {
			continue
		}
		cx, cy := it.Center()
		d := core.Dist(x, y, cx, cy)
		if d >= radius {
			continue
		}
		ex.Hits = append(ex.Hits, ExplosionHit{Item: it, Distance: d, Force: 1 - d/radius})
	}

	sort.SliceStable(ex.Hits, func(i, j int) bool {
		return ex.Hits[i].Distance < ex.Hits[j].Distance
	})
	return ex
}

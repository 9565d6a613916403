package potion

import (
	"fmt"
	"strconv"
	"time"
)

// How long an explosion stays visible.
const blastDuration = 300 * time.Millisecond

// resolvePlayerCollisions removes every item touching the player, then
// resolves them one by one. Resolution stops once the game is over.
func (g *Game) resolvePlayerCollisions(now time.Duration) {
	pbox := g.player.Box()

	var hits []*Item
	for _, it := range g.spawner.Items() {
		if pbox.Intersects(it.Box()) {
			hits = append(hits, it)
		}
	}
	if len(hits) == 0 {
		return
	}
	g.spawner.Remove(hits)

	for _, it := range hits {
		if g.gameOver {
			return
		}
		g.resolveSafely(it, now)
	}
}

// resolveSafely resolves one collision. A panic only loses the effects
// of that collision.
func (g *Game) resolveSafely(it *Item, now time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("collision failed", "kind", it.Kind, "potion", it.PotionID, "item", it.ID, "err", r)
		}
	}()

	switch it.Kind {
	case KindIngredient:
		g.collectIngredient(it, now)
	case KindHazard:
		g.hitHazard(it, now)
	case KindBomb:
		g.hitBomb(it, now)
	default:
		panic(fmt.Sprintf("unknown item kind %d", it.Kind))
	}
}

func (g *Game) collectIngredient(it *Item, now time.Duration) {
	if g.levelComplete || !g.levels.Active() || !g.catalog.IsGood(it.PotionID) {
		g.stats.AddScore(g.cfg.Scoring.FreeIngredient)
		g.emit(Event{Kind: EventFreeCollect, At: now, Level: g.level, Points: g.cfg.Scoring.FreeIngredient, PotionID: it.PotionID})
		return
	}

	accepted, complete := g.levels.RegisterPotionCollected(it.PotionID)
	if !accepted {
		g.stats.ResetCombo()
		g.emit(Event{Kind: EventWrongOrder, At: now, Level: g.level, PotionID: it.PotionID})
		return
	}

	points := g.cfg.Scoring.IngredientPerLevel * g.level
	g.stats.AddScore(points)
	g.stats.ComboHit()
	g.stats.IngredientsCollected++
	g.emit(Event{Kind: EventCollect, At: now, Level: g.level, Points: points, PotionID: it.PotionID})

	if complete {
		g.completeLevel(now)
	}
}

func (g *Game) hitHazard(it *Item, now time.Duration) {
	g.stats.ResetCombo()
	g.damagePlayer(it.Damage, now)
}

func (g *Game) hitBomb(it *Item, now time.Duration) {
	g.stats.ResetCombo()

	cx, cy := it.Center()
	ex := Detonate(cx, cy, g.cfg.Explosion.Radius, g.spawner.Items())
	caught := make([]*Item, 0, len(ex.Hits))
	points := 0
	for _, h := range ex.Hits {
		switch h.Item.Kind {
		case KindIngredient:
			points += g.cfg.Scoring.ExplosionIngredient
			g.stats.AddScore(g.cfg.Scoring.ExplosionIngredient)
		case KindHazard:
			points += g.cfg.Scoring.ExplosionHazard
			g.stats.AddScore(g.cfg.Scoring.ExplosionHazard)
		}
		caught = append(caught, h.Item)
	}
	g.spawner.Remove(caught)

	g.lastBlast = &ex
	g.blastUntil = now + blastDuration
	g.emit(Event{Kind: EventExplosion, At: now, Level: g.level, Points: points})
	g.log.Debug("bomb exploded", "caught", len(caught), "points", points)

	g.damagePlayer(it.Damage, now)
}

// damagePlayer applies damage, shows the indicator and ends the game
// when the player runs out of lives.
func (g *Game) damagePlayer(n int, now time.Duration) {
	cx, _ := g.player.Center()
	g.indicators = append(g.indicators, DamageIndicator{
		Text:    "-" + strconv.Itoa(n),
		X:       cx,
		Y:       g.player.Y - 20,
		Born:    now,
		Expires: now + time.Duration(g.cfg.Damage.IndicatorMS)*time.Millisecond,
	})

	if g.player.TakeDamage(n, now) {
		g.emit(Event{Kind: EventDamage, At: now, Level: g.level, Points: -n})
	}

	if !g.player.Alive() {
		g.triggerGameOver(now)
	}
}

// resolveProjectileCollisions pairs each projectile with at most one item
// it touches. Both are destroyed.
func (g *Game) resolveProjectileCollisions() {
	if len(g.projectiles) == 0 {
		return
	}

	items := g.spawner.Items()
	taken := make(map[uint64]bool)
	var destroyed []*Item

	kept := g.projectiles[:0]
	for _, pr := range g.projectiles {
		pbox := pr.Box()
		var target *Item
		for _, it := range items {
			if !taken[it.ID] && pbox.Intersects(it.Box()) {
				target = it
				break
			}
		}
		if target == nil {
			kept = append(kept, pr)
			continue
		}
		taken[target.ID] = true
		destroyed = append(destroyed, target)
		g.stats.AddScore(g.cfg.Scoring.ProjectileHit)
		g.stats.EnemiesDefeated++
	}
	clear(g.projectiles[len(kept):])
	g.projectiles = kept

	g.spawner.Remove(destroyed)
}

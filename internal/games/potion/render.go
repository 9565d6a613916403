package potion

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/vovakirdan/perfect-potion/internal/core"
)

// Visual characters for rendering
const (
	PlayerChar       = '█'
	PlayerBlinkChar  = '▒'
	ProjectileHoriz  = '─'
	ProjectileVert   = '│'
	ExplosionChar    = '*'
	ArenaBorderChar  = '─'
	hudRows          = 3 // Status line, recipe line, separator
	minRenderW       = 40
	minRenderH       = 12
	collectedMark    = '✓'
	recipeSeparator  = " > "
	heartChar        = '♥'
	emptyHeartChar   = '·'
	indicatorRisePix = 30.0
)

// viewport maps the playable band of the world onto screen cells.
type viewport struct {
	top          int // First arena row on screen
	cols, rows   int
	worldX0      float64
	worldY0      float64
	worldW       float64
	worldH       float64
	screenBottom int
}

func (g *Game) viewport(dst *core.Screen) viewport {
	floor := float64(g.cfg.Window.ArenaFloorY)
	return viewport{
		top:          hudRows,
		cols:         dst.Width(),
		rows:         dst.Height() - hudRows,
		worldX0:      0,
		worldY0:      floor,
		worldW:       float64(g.cfg.Window.Width),
		worldH:       float64(g.cfg.Window.Height) - floor,
		screenBottom: dst.Height(),
	}
}

// cell converts a world point into a screen cell.
func (v viewport) cell(x, y float64) (int, int) {
	cx := int(math.Floor((x - v.worldX0) / v.worldW * float64(v.cols)))
	cy := v.top + int(math.Floor((y-v.worldY0)/v.worldH*float64(v.rows)))
	return cx, cy
}

// rect converts a world box into the screen cells it covers, at least one cell.
func (v viewport) rect(b core.Box) core.Rect {
	x0, y0 := v.cell(b.X, b.Y)
	x1, y1 := v.cell(b.Right(), b.Bottom())
	return core.NewRect(x0, y0, core.Max(x1-x0, 1), core.Max(y1-y0, 1))
}

// fill paints r with a colored rune, clipped to the arena.
func (v viewport) fill(dst *core.Screen, r core.Rect, ch rune, c core.Color) {
	for y := r.Y; y < r.Bottom(); y++ {
		if y < v.top || y >= v.screenBottom {
			continue
		}
		for x := r.X; x < r.Right(); x++ {
			dst.SetColored(x, y, ch, c)
		}
	}
}

// Render draws the current game state to the screen buffer.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if dst.Width() < minRenderW || dst.Height() < minRenderH {
		dst.DrawTextCentered(dst.Height()/2, "Window too small", core.ColorYellow)
		return
	}

	now := g.now()
	snap := g.Snapshot()
	v := g.viewport(dst)

	g.renderHUD(dst, snap)
	g.renderItems(dst, v)
	g.renderProjectiles(dst, v)
	g.renderPlayer(dst, v, snap.Invulnerable)
	if g.lastBlast != nil && now < g.blastUntil {
		g.renderExplosion(dst, v, *g.lastBlast)
	}
	g.renderIndicators(dst, v, now)

	// Draw overlays
	switch {
	case g.gameOver:
		g.renderGameOver(dst)
	case g.paused:
		g.renderOverlay(dst, core.ColorYellow, "Paused", "Press P to continue")
	case now < g.levelUpUntil:
		dst.DrawTextCentered(v.top+v.rows/3, fmt.Sprintf("*** LEVEL %d ***", g.level), core.ColorBrightYellow)
	case g.levelComplete:
		dst.DrawTextCentered(v.top+v.rows/3, "Potion brewed!", core.ColorBrightGreen)
	}
}

// renderHUD draws the status line, the recipe and the separator.
func (g *Game) renderHUD(dst *core.Screen, snap HUDSnapshot) {
	x := 1
	x = drawSegment(dst, x, 0, g.Title(), core.ColorBrightMagenta)
	x = drawSegment(dst, x+2, 0, fmt.Sprintf("Score %d", snap.Score), core.ColorWhite)
	x = drawSegment(dst, x+2, 0, fmt.Sprintf("Hi %d", snap.HighScore), core.ColorGray)
	x = drawSegment(dst, x+2, 0, fmt.Sprintf("Lv %d", snap.Level), core.ColorBrightCyan)
	x = drawSegment(dst, x+2, 0, fmt.Sprintf("Combo %d/%d", snap.CurrentCombo, snap.HighestCombo), core.ColorYellow)

	hearts := core.Max(snap.Lives, 0)
	lives := strings.Repeat(string(heartChar), hearts)
	if missing := g.cfg.Player.StartLives - hearts; missing > 0 {
		lives += strings.Repeat(string(emptyHeartChar), missing)
	}
	drawSegment(dst, x+2, 0, lives, core.ColorBrightRed)

	// Recipe line: collected potions ticked, the next one highlighted
	x = drawSegment(dst, 1, 1, "Recipe:", core.ColorWhite) + 1
	for i, id := range snap.Required {
		if i > 0 {
			x = drawSegment(dst, x, 1, recipeSeparator, core.ColorGray)
		}
		label := g.potionLabel(id)
		switch {
		case i < len(snap.Collected):
			x = drawSegment(dst, x, 1, label+string(collectedMark), core.ColorBrightGreen)
		case i == len(snap.Collected):
			x = drawSegment(dst, x, 1, "["+label+"]", core.ColorBrightYellow)
		default:
			x = drawSegment(dst, x, 1, label, core.ColorWhite)
		}
	}

	dst.DrawHLine(0, 2, dst.Width(), ArenaBorderChar, core.ColorGray)
}

// potionLabel returns the glyph a potion is drawn with, or its ID.
func (g *Game) potionLabel(id string) string {
	s := g.sprites.Resolve(KindIngredient, id)
	if s.Placeholder {
		return id
	}
	return string(s.Glyph)
}

func drawSegment(dst *core.Screen, x, y int, text string, c core.Color) int {
	dst.DrawTextColored(x, y, text, c)
	return x + len([]rune(text))
}

func (g *Game) renderItems(dst *core.Screen, v viewport) {
	for _, it := range g.spawner.Items() {
		v.fill(dst, v.rect(it.Box()), it.Sprite.Glyph, it.Sprite.Color)
	}
}

func (g *Game) renderProjectiles(dst *core.Screen, v viewport) {
	for _, pr := range g.projectiles {
		ch := ProjectileHoriz
		if math.Abs(pr.DY) > math.Abs(pr.DX) {
			ch = ProjectileVert
		}
		v.fill(dst, v.rect(pr.Box()), ch, core.ColorBrightCyan)
	}
}

func (g *Game) renderPlayer(dst *core.Screen, v viewport, invulnerable bool) {
	ch, c := PlayerChar, core.ColorCyan
	if invulnerable {
		// Blink every few ticks while damage is ignored
		if (g.tick/6)%2 == 0 {
			return
		}
		ch, c = PlayerBlinkChar, core.ColorMagenta
	}
	v.fill(dst, v.rect(g.player.Box()), ch, c)
}

func (g *Game) renderExplosion(dst *core.Screen, v viewport, ex Explosion) {
	for deg := 0; deg < 360; deg += 10 {
		a := float64(deg) * math.Pi / 180
		x, y := v.cell(ex.X+ex.Radius*math.Cos(a), ex.Y+ex.Radius*math.Sin(a))
		if y >= v.top {
			dst.SetColored(x, y, ExplosionChar, core.ColorOrange)
		}
	}
}

func (g *Game) renderIndicators(dst *core.Screen, v viewport, now time.Duration) {
	for _, ind := range g.indicators {
		life := ind.Expires - ind.Born
		rise := 0.0
		if life > 0 {
			rise = indicatorRisePix * float64(now-ind.Born) / float64(life)
		}
		x, y := v.cell(ind.X, ind.Y-rise)
		if y < v.top {
			y = v.top
		}
		dst.DrawTextColored(x, y, ind.Text, core.ColorBrightRed)
	}
}

func (g *Game) renderGameOver(dst *core.Screen) {
	s := g.Summary()
	lines := []string{
		"GAME OVER",
		"",
		fmt.Sprintf("Score: %d", s.Score),
		fmt.Sprintf("High score: %d", s.HighScore),
		fmt.Sprintf("Time played: %s", s.TimePlayedString()),
		fmt.Sprintf("Level reached: %d", s.Level),
		fmt.Sprintf("Ingredients collected: %d", s.IngredientsCollected),
		fmt.Sprintf("Enemies defeated: %d", s.EnemiesDefeated),
		fmt.Sprintf("Potions created: %d", s.PotionsCreated),
		fmt.Sprintf("Highest combo: %d", s.HighestCombo),
		"",
	}
	switch {
	case s.SaveErr != nil:
		lines = append(lines, "Score could not be saved")
	case s.Saved:
		lines = append(lines, "Score saved for "+g.playerName)
	}
	lines = append(lines, "R to restart, Q to quit")
	g.renderOverlay(dst, core.ColorRed, lines...)
}

// renderOverlay draws a framed box with centered lines in the middle of
// the screen.
func (g *Game) renderOverlay(dst *core.Screen, c core.Color, lines ...string) {
	maxLen := 0
	for _, l := range lines {
		maxLen = core.Max(maxLen, len([]rune(l)))
	}
	boxW := core.Min(maxLen+4, dst.Width())
	boxH := core.Min(len(lines)+2, dst.Height())
	box := core.NewRect((dst.Width()-boxW)/2, (dst.Height()-boxH)/2, boxW, boxH)

	dst.DrawRect(box, ' ')
	dst.DrawBox(box, c)
	for i, l := range lines {
		lc := core.ColorWhite
		if i == 0 {
			lc = c
		}
		dst.DrawTextCentered(box.Y+1+i, l, lc)
	}
}

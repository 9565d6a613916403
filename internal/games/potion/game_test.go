package potion

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/perfect-potion/internal/config"
	"github.com/vovakirdan/perfect-potion/internal/core"
)

type recordedScore struct {
	playerID           int64
	score, level, secs int
}

type fakeRecorder struct {
	calls []recordedScore
	err   error
}

func (r *fakeRecorder) AddScore(playerID int64, score, level, gameSeconds int) (int64, error) {
	r.calls = append(r.calls, recordedScore{playerID, score, level, gameSeconds})
	if r.err != nil {
		return 0, r.err
	}
	return int64(len(r.calls)), nil
}

// newTestGame returns a game on a manual clock. The first spawn is due
// at 950ms, so tests that stay below that see only the items they add.
func newTestGame(t *testing.T) (*Game, *core.ManualClock, *fakeRecorder) {
	t.Helper()

	clock := &core.ManualClock{}
	rec := &fakeRecorder{}

	g := NewWithConfig(config.DefaultPotionConfig())
	g.SetClock(clock)
	g.SetRecorder(rec)
	g.SetPlayer(1, "tester", 0)

	rt := core.DefaultConfig()
	rt.Seed = 42
	g.Reset(rt)
	return g, clock, rec
}

// setRecipe replaces the current recipe.
func setRecipe(g *Game, ids ...string) {
	g.levels.required = append([]string(nil), ids...)
	g.levels.collected = make([]string, 0, len(ids))
	g.levels.complete = false
}

// addItem puts a motionless item into the arena.
func addItem(g *Game, kind ItemKind, potionID string, x, y float64) *Item {
	g.spawner.nextID++
	it := &Item{
		ID:       g.spawner.nextID,
		Kind:     kind,
		PotionID: potionID,
		X:        x,
		Y:        y,
		W:        float64(g.cfg.Spawn.ItemWidth),
		H:        float64(g.cfg.Spawn.ItemHeight),
		Sprite:   g.sprites.Resolve(kind, potionID),
	}
	switch kind {
	case KindHazard:
		it.Damage = g.cfg.Damage.Hazard
	case KindBomb:
		it.Damage = g.cfg.Damage.Bomb
	}
	g.spawner.items = append(g.spawner.items, it)
	return it
}

// drop puts an item right on top of the player.
func drop(g *Game, kind ItemKind, potionID string) *Item {
	return addItem(g, kind, potionID, g.player.X+20, g.player.Y+20)
}

func step(g *Game, actions ...core.Action) core.StepResult {
	in := core.NewInputFrame()
	for _, a := range actions {
		in.Set(a)
	}
	return g.Step(in)
}

func hasEvent(events []Event, kind EventKind) bool {
	for _, e := range events {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func TestNewGameState(t *testing.T) {
	g, _, _ := newTestGame(t)

	state := g.State()
	if state.Score != 0 || state.Level != 1 || state.Lives != 3 {
		t.Errorf("State() = %+v, expected score 0, level 1, lives 3", state)
	}
	if state.GameOver || state.Paused {
		t.Error("new game should be running")
	}
	if got := len(g.Snapshot().Required); got != 2 {
		t.Errorf("level 1 recipe has %d potions, expected 2", got)
	}
	if g.RunID() == "" {
		t.Error("RunID() should be set after Reset")
	}
}

func TestCorrectOrderScoresAndCombo(t *testing.T) {
	g, _, _ := newTestGame(t)
	setRecipe(g, "potion_1", "potion_2", "potion_4")

	drop(g, KindIngredient, "potion_1")
	step(g)
	if !hasEvent(g.Events(), EventCollect) {
		t.Errorf("Events() = %v, expected a collect event", g.Events())
	}

	drop(g, KindIngredient, "potion_2")
	step(g)

	s := g.Stats()
	if s.Score != 20 {
		t.Errorf("Score = %d, expected 20", s.Score)
	}
	if s.CurrentCombo != 2 || s.HighestCombo != 2 {
		t.Errorf("combo = %d/%d, expected 2/2", s.CurrentCombo, s.HighestCombo)
	}
	if s.IngredientsCollected != 2 {
		t.Errorf("IngredientsCollected = %d, expected 2", s.IngredientsCollected)
	}
	if g.spawner.Count() != 0 {
		t.Errorf("collected items should be removed, %d left", g.spawner.Count())
	}

	step(g)
	if len(g.Events()) != 0 {
		t.Errorf("events should only cover the last step, got %v", g.Events())
	}
}

func TestLevelCompleteAdvancesAfterDelay(t *testing.T) {
	g, clock, _ := newTestGame(t)
	setRecipe(g, "potion_1", "potion_2")

	drop(g, KindIngredient, "potion_1")
	drop(g, KindIngredient, "potion_2")
	step(g)

	if !hasEvent(g.Events(), EventLevelComplete) {
		t.Fatalf("Events() = %v, expected level completion", g.Events())
	}
	if !g.Snapshot().LevelComplete {
		t.Error("Snapshot().LevelComplete should be set")
	}
	if g.Stats().PotionsCreated != 1 {
		t.Errorf("PotionsCreated = %d, expected 1", g.Stats().PotionsCreated)
	}

	// Leftover items disappear with the level
	addItem(g, KindHazard, "potion_5", 700, 300)

	clock.Advance(499 * time.Millisecond)
	step(g)
	if g.State().Level != 1 {
		t.Fatalf("level advanced after 499ms, expected to wait 500ms")
	}

	clock.Advance(time.Millisecond)
	step(g)
	if g.State().Level != 2 {
		t.Fatalf("Level = %d, expected 2", g.State().Level)
	}
	if !hasEvent(g.Events(), EventLevelUp) {
		t.Error("expected a level-up event")
	}
	if g.spawner.Count() != 0 {
		t.Errorf("arena should be cleared on level up, %d items left", g.spawner.Count())
	}

	snap := g.Snapshot()
	if snap.LevelComplete || len(snap.Collected) != 0 {
		t.Errorf("new level should start empty, got %+v", snap)
	}
	if len(snap.Required) != g.levels.RecipeLength(2) {
		t.Errorf("recipe length = %d, expected %d", len(snap.Required), g.levels.RecipeLength(2))
	}
}

func TestWrongOrderResetsComboOnly(t *testing.T) {
	g, _, _ := newTestGame(t)
	setRecipe(g, "potion_1", "potion_2", "potion_4", "potion_10")

	drop(g, KindIngredient, "potion_1")
	step(g)
	drop(g, KindIngredient, "potion_2")
	step(g)

	drop(g, KindIngredient, "potion_10")
	step(g)

	if !hasEvent(g.Events(), EventWrongOrder) {
		t.Errorf("Events() = %v, expected wrong order", g.Events())
	}

	s := g.Stats()
	if s.Score != 20 {
		t.Errorf("Score = %d, expected 20", s.Score)
	}
	if s.CurrentCombo != 0 || s.HighestCombo != 2 {
		t.Errorf("combo = %d/%d, expected 0/2", s.CurrentCombo, s.HighestCombo)
	}
	if g.State().Lives != 3 {
		t.Errorf("Lives = %d, wrong order must not cost a life", g.State().Lives)
	}
	if got := g.Snapshot().Collected; !slices.Equal(got, []string{"potion_1", "potion_2"}) {
		t.Errorf("Collected = %v, expected [potion_1 potion_2]", got)
	}
}

func TestFreeIngredients(t *testing.T) {
	g, _, _ := newTestGame(t)
	setRecipe(g, "potion_1", "potion_2")

	drop(g, KindIngredient, "potion_1")
	step(g)

	// Unknown potions are always free
	drop(g, KindIngredient, "potion_99")
	step(g)

	if !hasEvent(g.Events(), EventFreeCollect) {
		t.Errorf("Events() = %v, expected a free collect", g.Events())
	}
	s := g.Stats()
	if s.Score != 20 || s.CurrentCombo != 1 || s.IngredientsCollected != 1 {
		t.Errorf("after free pick: %+v, expected score 20, combo 1, 1 ingredient", s)
	}

	drop(g, KindIngredient, "potion_2")
	step(g)

	// Anything picked while the next level is pending is free
	drop(g, KindIngredient, "potion_3")
	step(g)

	s = g.Stats()
	if s.Score != 40 {
		t.Errorf("Score = %d, expected 40", s.Score)
	}
	if s.CurrentCombo != 2 {
		t.Errorf("CurrentCombo = %d, free picks should not touch the combo", s.CurrentCombo)
	}
}

func TestHazardDamageAndInvulnerability(t *testing.T) {
	g, clock, _ := newTestGame(t)
	g.stats.CurrentCombo = 4

	drop(g, KindHazard, "potion_5")
	step(g)

	if g.State().Lives != 2 {
		t.Fatalf("Lives = %d, expected 2", g.State().Lives)
	}
	if g.Stats().CurrentCombo != 0 {
		t.Error("hazard should reset the combo")
	}
	if !hasEvent(g.Events(), EventDamage) {
		t.Error("expected a damage event")
	}
	if !g.Snapshot().Invulnerable {
		t.Error("player should be invulnerable after a hit")
	}

	clock.Advance(time.Second)
	drop(g, KindHazard, "potion_5")
	step(g)
	if g.State().Lives != 2 {
		t.Errorf("Lives = %d, hit during invulnerability should be ignored", g.State().Lives)
	}
	if hasEvent(g.Events(), EventDamage) {
		t.Error("ignored hit should not report damage")
	}

	clock.Advance(time.Second)
	drop(g, KindHazard, "potion_5")
	step(g)
	if g.State().Lives != 1 {
		t.Errorf("Lives = %d, expected 1 after invulnerability ended", g.State().Lives)
	}
}

func TestBombEndsGameOnce(t *testing.T) {
	g, clock, rec := newTestGame(t)
	g.player.Lives = 1
	clock.Advance(300 * time.Millisecond)

	drop(g, KindBomb, "")
	step(g)

	if !g.IsGameOver() {
		t.Fatal("bomb should end the game with one life left")
	}
	if g.State().Lives != 0 {
		t.Errorf("Lives = %d, expected 0", g.State().Lives)
	}
	if !hasEvent(g.Events(), EventGameOver) {
		t.Error("expected a game over event")
	}
	if len(rec.calls) != 1 {
		t.Fatalf("AddScore called %d times, expected 1", len(rec.calls))
	}
	if c := rec.calls[0]; c.playerID != 1 || c.score != 0 || c.level != 1 {
		t.Errorf("recorded %+v, expected player 1, score 0, level 1", c)
	}

	g.triggerGameOver(g.now())
	clock.Advance(10 * time.Second)
	step(g)
	step(g, core.ActionPause)

	if len(rec.calls) != 1 {
		t.Errorf("AddScore called %d times, expected exactly once", len(rec.calls))
	}
	if g.State().Paused {
		t.Error("a finished game cannot be paused")
	}

	s := g.Summary()
	if s.TimePlayed != 300*time.Millisecond {
		t.Errorf("TimePlayed = %v, expected it frozen at 300ms", s.TimePlayed)
	}
	if !s.Saved {
		t.Error("Summary().Saved should be set")
	}
}

func TestGameOverStopsResolution(t *testing.T) {
	g, _, _ := newTestGame(t)
	setRecipe(g, "potion_1", "potion_2")
	g.player.Lives = 1

	drop(g, KindBomb, "")
	drop(g, KindIngredient, "potion_1")
	step(g)

	if !g.IsGameOver() {
		t.Fatal("expected game over")
	}
	s := g.Stats()
	if s.Score != 0 || s.IngredientsCollected != 0 {
		t.Errorf("collisions after game over were resolved: %+v", s)
	}
}

func TestBombExplosion(t *testing.T) {
	g, _, _ := newTestGame(t)

	// Player spans (360, 460) to (440, 540); the bomb is centered on it
	drop(g, KindBomb, "")
	addItem(g, KindIngredient, "potion_3", 470, 480) // 90 away
	addItem(g, KindHazard, "potion_5", 250, 480)     // 130 away
	other := addItem(g, KindBomb, "", 470, 400)
	far := addItem(g, KindIngredient, "potion_1", 700, 300)

	step(g)

	if got := g.Stats().Score; got != 5 {
		t.Errorf("Score = %d, expected 10 - 5 = 5", got)
	}
	if got := g.State().Lives; got != 1 {
		t.Errorf("Lives = %d, expected 1", got)
	}

	left := g.spawner.Items()
	if len(left) != 2 || left[0] != other || left[1] != far {
		t.Errorf("items left = %v, expected the other bomb and the far ingredient", left)
	}

	var blast *Event
	for _, e := range g.Events() {
		if e.Kind == EventExplosion {
			blast = &e
		}
	}
	if blast == nil || blast.Points != 5 {
		t.Errorf("explosion event = %+v, expected 5 points", blast)
	}
	if g.lastBlast == nil || len(g.lastBlast.Hits) != 2 {
		t.Errorf("lastBlast = %+v, expected 2 hits", g.lastBlast)
	}
}

func TestProjectileDestroysItem(t *testing.T) {
	g, _, _ := newTestGame(t)
	addItem(g, KindHazard, "potion_5", 460, 480)

	step(g, core.ActionShoot)
	if len(g.projectiles) != 1 {
		t.Fatalf("expected one projectile in flight, got %d", len(g.projectiles))
	}

	step(g)

	if len(g.projectiles) != 0 {
		t.Error("projectile should be destroyed on hit")
	}
	if g.spawner.Count() != 0 {
		t.Error("hit item should be removed")
	}
	s := g.Stats()
	if s.Score != 5 || s.EnemiesDefeated != 1 {
		t.Errorf("after hit: score %d, enemies %d, expected 5 and 1", s.Score, s.EnemiesDefeated)
	}
	if g.State().Lives != 3 {
		t.Error("shooting a hazard should not hurt the player")
	}
}

func TestProjectileLeavesWorld(t *testing.T) {
	g, _, _ := newTestGame(t)

	step(g, core.ActionShoot)
	for i := 0; i < 30; i++ {
		step(g)
	}
	if len(g.projectiles) != 0 {
		t.Errorf("%d projectiles still alive after leaving the world", len(g.projectiles))
	}
}

func TestGuestScoreIsNotSaved(t *testing.T) {
	g, _, rec := newTestGame(t)
	g.SetPlayer(0, "", 0)
	g.Reset(g.runtime)
	g.player.Lives = 1

	drop(g, KindBomb, "")
	step(g)

	if !g.IsGameOver() {
		t.Fatal("expected game over")
	}
	if len(rec.calls) != 0 {
		t.Errorf("guest score saved %d times", len(rec.calls))
	}
	if g.Summary().Saved {
		t.Error("Summary().Saved should be false for guests")
	}
}

func TestRecorderErrorIsNotFatal(t *testing.T) {
	g, _, rec := newTestGame(t)
	rec.err = errors.New("disk full")
	g.player.Lives = 1

	drop(g, KindBomb, "")
	step(g)

	s := g.Summary()
	if s.Saved || s.SaveErr == nil {
		t.Errorf("Summary() = %+v, expected a save error", s)
	}

	screen := core.NewScreen(80, 24)
	g.Render(screen)
	if !strings.Contains(screen.String(), "Score could not be saved") {
		t.Error("game over screen should mention the failed save")
	}
}

func TestPauseFreezesTimers(t *testing.T) {
	g, clock, _ := newTestGame(t)

	clock.Advance(100 * time.Millisecond)
	step(g, core.ActionPause)
	if !g.State().Paused {
		t.Fatal("expected paused game")
	}

	clock.Advance(5 * time.Second)
	drop(g, KindHazard, "potion_5")
	step(g)
	if g.State().Lives != 3 || g.spawner.Count() != 1 {
		t.Error("nothing should happen while paused")
	}
	g.spawner.Clear()

	step(g, core.ActionPause)
	if g.State().Paused {
		t.Fatal("expected game to resume")
	}
	if got := g.Snapshot().Elapsed; got != 100*time.Millisecond {
		t.Errorf("Elapsed = %v, paused time should not count", got)
	}

	clock.Advance(849 * time.Millisecond)
	step(g)
	if g.spawner.Count() != 0 {
		t.Fatal("spawned before the interval elapsed in game time")
	}

	clock.Advance(time.Millisecond)
	step(g)
	if g.spawner.Count() < 2 {
		t.Errorf("Count() = %d, expected a batch at 950ms of game time", g.spawner.Count())
	}
}

func TestGameDeterminism(t *testing.T) {
	run := func() (core.GameState, RunStats, []Item) {
		clock := &core.ManualClock{}
		g := NewWithConfig(config.DefaultPotionConfig())
		g.SetClock(clock)

		rt := core.DefaultConfig()
		rt.Seed = 12345
		g.Reset(rt)

		for i := 0; i < 600; i++ {
			in := core.NewInputFrame()
			switch {
			case i%120 < 40:
				in.Set(core.ActionLeft)
			case i%120 < 80:
				in.Set(core.ActionRight)
			default:
				in.Set(core.ActionUp)
			}
			if i%25 == 0 {
				in.Set(core.ActionShoot)
			}
			g.Step(in)
			clock.Advance(16 * time.Millisecond)
		}

		var items []Item
		for _, it := range g.spawner.Items() {
			items = append(items, *it)
		}
		return g.State(), g.Stats(), items
	}

	s1, st1, items1 := run()
	s2, st2, items2 := run()

	if s1 != s2 {
		t.Errorf("states differ: %+v vs %+v", s1, s2)
	}
	if st1 != st2 {
		t.Errorf("stats differ: %+v vs %+v", st1, st2)
	}
	if !slices.Equal(items1, items2) {
		t.Error("same seed and input should leave the same items")
	}
}

func TestRestartKeepsHighScore(t *testing.T) {
	g, _, rec := newTestGame(t)
	setRecipe(g, "potion_1", "potion_2")

	drop(g, KindIngredient, "potion_1")
	step(g)
	g.player.Lives = 1
	drop(g, KindBomb, "")
	step(g)

	if !g.IsGameOver() {
		t.Fatal("expected game over")
	}
	if len(rec.calls) != 1 || rec.calls[0].score != 10 {
		t.Errorf("recorded %+v, expected one score of 10", rec.calls)
	}
	firstRun := g.RunID()

	// Restart only works once the game is over
	step(g, core.ActionRestart)

	if g.IsGameOver() {
		t.Fatal("restart should start a new run")
	}
	s := g.Stats()
	if s.Score != 0 || s.HighScore != 10 {
		t.Errorf("after restart: score %d high %d, expected 0 and 10", s.Score, s.HighScore)
	}
	if g.State().Lives != 3 || g.State().Level != 1 {
		t.Errorf("State() = %+v, expected a fresh run", g.State())
	}
	if g.RunID() == firstRun {
		t.Error("restart should get a new run ID")
	}
}

func TestRestartIgnoredWhilePlaying(t *testing.T) {
	g, _, _ := newTestGame(t)
	runID := g.RunID()

	g.stats.AddScore(30)
	step(g, core.ActionRestart)

	if g.RunID() != runID || g.Stats().Score != 30 {
		t.Error("restart should be ignored before game over")
	}
}

func TestCollisionPanicIsIsolated(t *testing.T) {
	g, _, _ := newTestGame(t)

	drop(g, ItemKind(99), "")
	drop(g, KindHazard, "potion_5")

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Step panicked: %v", r)
		}
	}()
	step(g)

	if g.State().Lives != 2 {
		t.Errorf("Lives = %d, the hazard after the broken item should still resolve", g.State().Lives)
	}
	if g.spawner.Count() != 0 {
		t.Errorf("Count() = %d, both items should be removed", g.spawner.Count())
	}
}

func TestDamageIndicatorExpires(t *testing.T) {
	g, clock, _ := newTestGame(t)

	drop(g, KindHazard, "potion_5")
	step(g)

	if len(g.indicators) != 1 || g.indicators[0].Text != "-1" {
		t.Fatalf("indicators = %+v, expected one \"-1\"", g.indicators)
	}

	clock.Advance(999 * time.Millisecond)
	step(g)
	if len(g.indicators) != 1 {
		t.Fatal("indicator expired too early")
	}

	clock.Advance(time.Millisecond)
	step(g)
	if len(g.indicators) != 0 {
		t.Errorf("indicator should expire after 1s, got %d", len(g.indicators))
	}
}

func TestRenderHUD(t *testing.T) {
	g, _, _ := newTestGame(t)
	setRecipe(g, "potion_1", "potion_2")
	drop(g, KindIngredient, "potion_1")
	step(g)

	screen := core.NewScreen(80, 24)
	g.Render(screen)

	status := screen.Row(0)
	for _, want := range []string{"Perfect Potion", "Score 10", "Lv 1", "Combo 1/1", "♥♥♥"} {
		if !strings.Contains(status, want) {
			t.Errorf("status line %q missing %q", status, want)
		}
	}

	recipe := screen.Row(1)
	if !strings.Contains(recipe, "A✓") || !strings.Contains(recipe, "[B]") {
		t.Errorf("recipe line = %q, expected A ticked and B next", recipe)
	}
}

func TestRenderGameOver(t *testing.T) {
	g, _, _ := newTestGame(t)
	g.player.Lives = 1
	drop(g, KindBomb, "")
	step(g)

	screen := core.NewScreen(80, 24)
	g.Render(screen)
	out := screen.String()

	for _, want := range []string{"GAME OVER", "Level reached: 1", "Score saved for tester", "R to restart"} {
		if !strings.Contains(out, want) {
			t.Errorf("game over screen missing %q", want)
		}
	}
}

func TestRenderSmallScreen(t *testing.T) {
	g, _, _ := newTestGame(t)

	screen := core.NewScreen(20, 5)
	g.Render(screen)

	if !strings.Contains(screen.String(), "Window too small") {
		t.Error("expected a warning on a tiny screen")
	}
}

// Package potion implements Perfect Potion: the alchemist collects potions
// flying across the arena in the order a recipe demands while dodging
// hazards and bombs.
//
// The game is pure logic driven by Step once per tick. All timers are
// deadlines compared against an injected core.Clock.
package potion

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/perfect-potion/internal/config"
	"github.com/vovakirdan/perfect-potion/internal/core"
	"github.com/vovakirdan/perfect-potion/internal/registry"
)

// How long the level-up banner stays on screen.
const levelUpBannerDuration = 2 * time.Second

// configPath stores the custom config path set via CLI
var configPath string

// difficultyPreset stores the difficulty preset set via CLI
var difficultyPreset config.DifficultyPreset

// logger is shared by every game in the process.
var logger = log.New(io.Discard)

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset. Unknown names are ignored.
func SetDifficultyPreset(preset string) {
	p, err := config.ParsePreset(preset)
	if err != nil {
		difficultyPreset = ""
		return
	}
	difficultyPreset = p
}

// SetLogger sets the logger used by all games. Nil discards logs.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard)
	}
	logger = l.WithPrefix("potion")
}

// ScoreRecorder persists the result of a finished run.
type ScoreRecorder interface {
	AddScore(playerID int64, score, level, gameSeconds int) (int64, error)
}

// DamageIndicator is floating "-N" text shown where the player got hit.
type DamageIndicator struct {
	Text    string
	X, Y    float64
	Born    time.Duration
	Expires time.Duration
}

// Game implements the Perfect Potion game logic.
type Game struct {
	// Configuration
	runtime    core.RuntimeConfig
	cfg        config.PotionConfig
	fixedCfg   *config.PotionConfig
	difficulty *config.DifficultyManager

	// Collaborators
	catalog  *Catalog
	clock    core.Clock
	recorder ScoreRecorder
	log      *log.Logger

	// Active player profile
	playerID   int64
	playerName string
	bestScore  int

	// Game objects
	sprites     *SpriteSheet
	levels      *LevelManager
	spawner     *Spawner
	player      *Player
	projectiles []*Projectile
	indicators  []DamageIndicator
	lastBlast   *Explosion

	// Run state
	runID         string
	stats         RunStats
	level         int
	levelComplete bool
	tick          uint64
	events        []Event

	// Deadlines in game time
	nextSpawnAt  time.Duration
	nextLevelDue time.Duration
	hasNextLevel bool
	levelUpUntil time.Duration
	blastUntil   time.Duration
	startedAt    time.Duration
	pausedAt     time.Duration
	pausedTotal  time.Duration
	gameOverAt   time.Duration
	paused       bool
	gameOver     bool
	scoreSaved   bool
	saveErr      error
}

// New creates a game that loads its configuration on Reset.
func New() *Game {
	return &Game{catalog: DefaultCatalog()}
}

// NewWithConfig creates a game using cfg instead of the config files.
func NewWithConfig(cfg config.PotionConfig) *Game {
	g := New()
	g.fixedCfg = &cfg
	return g
}

// Ensure Game implements registry.Game
var _ registry.Game = (*Game)(nil)

func init() {
	registry.Register("potion", func() registry.Game {
		return New()
	})
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	return "potion"
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	return "Perfect Potion"
}

// SetCatalog replaces the potion catalog used from the next Reset on.
func (g *Game) SetCatalog(c *Catalog) {
	g.catalog = c
}

// SetClock sets the time source. The default is a monotonic clock
// started at the first Reset.
func (g *Game) SetClock(c core.Clock) {
	g.clock = c
}

// SetRecorder sets where the final score is saved at game over.
func (g *Game) SetRecorder(r ScoreRecorder) {
	g.recorder = r
}

// SetPlayer selects the active profile. An id of 0 plays as a guest
// whose score is not saved.
func (g *Game) SetPlayer(id int64, name string, bestScore int) {
	g.playerID = id
	g.playerName = name
	g.bestScore = bestScore
}

// Reset initializes or restarts the game.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	g.runtime = runtime

	if g.fixedCfg != nil {
		g.cfg = *g.fixedCfg
	} else {
		cfg, err := config.LoadPotion(configPath)
		if err != nil {
			logger.Warn("using default config", "err", err)
			cfg = config.DefaultPotionConfig()
		}
		g.cfg = cfg
	}

	// Apply difficulty preset if set
	if difficultyPreset != "" {
		config.ApplyPotionPreset(&g.cfg, difficultyPreset)
	}

	if g.clock == nil {
		g.clock = core.NewMonotonicClock()
	}
	if g.stats.HighScore > g.bestScore {
		g.bestScore = g.stats.HighScore
	}

	g.runID = uuid.NewString()
	g.log = logger.With("run", g.runID)

	g.difficulty = config.NewDifficultyManager(g.cfg.Levels)
	g.sprites = NewSpriteSheet(g.catalog)
	g.levels = NewLevelManager(g.catalog, g.difficulty, runtime.Seed)
	g.spawner = NewSpawner(g.cfg, g.catalog, g.sprites, g.difficulty, runtime.Seed+1)
	g.player = NewPlayer(g.cfg)
	g.projectiles = nil
	g.indicators = nil
	g.lastBlast = nil
	g.events = nil

	g.stats.Reset(g.bestScore)
	g.tick = 0
	g.paused = false
	g.gameOver = false
	g.scoreSaved = false
	g.saveErr = nil
	g.pausedTotal = 0

	now := g.now()
	g.startedAt = now
	g.level = g.difficulty.StartLevel()
	g.levels.StartLevel(g.level)
	g.levelComplete = false
	g.hasNextLevel = false
	g.levelUpUntil = 0
	g.blastUntil = 0
	g.nextSpawnAt = now + g.spawner.SpawnInterval(g.level)

	g.log.Info("game started", "player", g.playerName, "level", g.level, "seed", runtime.Seed)
}

// now returns the current game time, which stands still while paused.
func (g *Game) now() time.Duration {
	if g.paused {
		return g.pausedAt - g.pausedTotal
	}
	return g.clock.Now() - g.pausedTotal
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.events = g.events[:0]

	// Handle restart
	if in.Has(core.ActionRestart) && g.gameOver {
		g.Reset(g.runtime)
		return core.StepResult{State: g.State()}
	}

	// Handle pause toggle
	if in.Has(core.ActionPause) && !g.gameOver {
		g.togglePause()
	}

	// Don't update if paused or game over
	if g.paused || g.gameOver {
		return core.StepResult{State: g.State()}
	}

	g.tick++
	now := g.now()

	if g.hasNextLevel && now >= g.nextLevelDue {
		g.nextLevel(now)
	}

	if now >= g.nextSpawnAt {
		g.nextSpawnAt = now + g.spawner.SpawnInterval(g.level)
		if !g.levelComplete {
			g.spawner.SpawnItem(now, g.level)
		}
	}

	g.player.Move(in.Movement())
	if in.Has(core.ActionShoot) {
		if pr, ok := g.player.TryShoot(now); ok {
			g.projectiles = append(g.projectiles, pr)
		}
	}

	g.spawner.Advance()
	g.advanceProjectiles()

	g.resolvePlayerCollisions(now)
	if !g.gameOver {
		g.spawner.CleanupOffScreen()
		g.resolveProjectileCollisions()
	}
	g.pruneIndicators(now)

	return core.StepResult{State: g.State()}
}

func (g *Game) togglePause() {
	if g.paused {
		g.pausedTotal += g.clock.Now() - g.pausedAt
		g.paused = false
		return
	}
	g.pausedAt = g.clock.Now()
	g.paused = true
}

// advanceProjectiles moves projectiles and drops those that left the world.
func (g *Game) advanceProjectiles() {
	world := core.NewBox(0, 0, float64(g.cfg.Window.Width), float64(g.cfg.Window.Height))
	kept := g.projectiles[:0]
	for _, pr := range g.projectiles {
		pr.Advance()
		if pr.Box().Intersects(world) {
			kept = append(kept, pr)
		}
	}
	clear(g.projectiles[len(kept):])
	g.projectiles = kept
}

// completeLevel marks the recipe done and schedules the next level.
func (g *Game) completeLevel(now time.Duration) {
	g.levelComplete = true
	g.stats.PotionsCreated++
	g.nextLevelDue = now + g.difficulty.LevelUpDelay()
	g.hasNextLevel = true
	g.emit(Event{Kind: EventLevelComplete, At: now, Level: g.level})
	g.log.Info("recipe complete", "level", g.level, "score", g.stats.Score)
}

// nextLevel clears the arena and starts the following level.
func (g *Game) nextLevel(now time.Duration) {
	g.spawner.Clear()
	g.projectiles = nil

	g.level++
	g.levels.StartLevel(g.level)
	g.levelComplete = false
	g.hasNextLevel = false
	g.levelUpUntil = now + levelUpBannerDuration
	g.nextSpawnAt = now + g.spawner.SpawnInterval(g.level)

	g.emit(Event{Kind: EventLevelUp, At: now, Level: g.level})
	g.log.Info("level up", "level", g.level, "recipe", g.levels.Required())
}

// triggerGameOver ends the run once and saves the score for an active player.
func (g *Game) triggerGameOver(now time.Duration) {
	if g.gameOver {
		return
	}
	g.gameOver = true
	g.gameOverAt = now
	g.hasNextLevel = false

	s := g.Summary()
	g.log.Info("game over",
		"player", g.playerName,
		"score", s.Score,
		"level", s.Level,
		"time", s.TimePlayedString(),
	)

	if g.recorder != nil && g.playerID != 0 {
		id, err := g.recorder.AddScore(g.playerID, s.Score, s.Level, int(s.TimePlayed/time.Second))
		if err != nil {
			g.saveErr = err
			g.log.Error("failed to save score", "player_id", g.playerID, "err", err)
		} else {
			g.scoreSaved = true
			g.log.Debug("score saved", "player_id", g.playerID, "score_id", id)
		}
	}

	g.emit(Event{Kind: EventGameOver, At: now, Level: g.level, Points: s.Score})
}

func (g *Game) pruneIndicators(now time.Duration) {
	kept := g.indicators[:0]
	for _, ind := range g.indicators {
		if now < ind.Expires {
			kept = append(kept, ind)
		}
	}
	g.indicators = kept
}

func (g *Game) emit(e Event) {
	g.events = append(g.events, e)
}

// Events returns what happened during the last Step.
func (g *Game) Events() []Event {
	return append([]Event(nil), g.events...)
}

// State returns the current game state for the platform.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    g.stats.DisplayScore(),
		Level:    g.level,
		Lives:    g.player.Lives,
		GameOver: g.gameOver,
		Paused:   g.paused,
	}
}

// IsGameOver returns whether the game has ended.
func (g *Game) IsGameOver() bool {
	return g.gameOver
}

// Stats returns a copy of the run statistics.
func (g *Game) Stats() RunStats {
	return g.stats
}

// RunID returns the identifier of the current run, as attached to log lines.
func (g *Game) RunID() string {
	return g.runID
}

// Config returns the configuration of the current run.
func (g *Game) Config() config.PotionConfig {
	return g.cfg
}

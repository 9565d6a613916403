package potion

import (
	"fmt"
	"time"
)

// HUDSnapshot is the read-only view of a run the HUD draws every frame.
type HUDSnapshot struct {
	Score         int
	HighScore     int
	Lives         int
	Level         int
	CurrentCombo  int
	HighestCombo  int
	Required      []string
	Collected     []string
	LevelComplete bool
	Invulnerable  bool
	Paused        bool
	GameOver      bool
	ItemCount     int
	PlayerName    string
	Elapsed       time.Duration
}

// Snapshot returns the current HUD state.
func (g *Game) Snapshot() HUDSnapshot {
	now := g.now()
	return HUDSnapshot{
		Score:         g.stats.DisplayScore(),
		HighScore:     g.stats.HighScore,
		Lives:         g.player.Lives,
		Level:         g.level,
		CurrentCombo:  g.stats.CurrentCombo,
		HighestCombo:  g.stats.HighestCombo,
		Required:      g.levels.Required(),
		Collected:     g.levels.Collected(),
		LevelComplete: g.levelComplete,
		Invulnerable:  g.player.Invulnerable(now),
		Paused:        g.paused,
		GameOver:      g.gameOver,
		ItemCount:     g.spawner.Count(),
		PlayerName:    g.playerName,
		Elapsed:       g.elapsed(now),
	}
}

// elapsed returns the run's play time, frozen at game over.
func (g *Game) elapsed(now time.Duration) time.Duration {
	if g.gameOver {
		now = g.gameOverAt
	}
	if now < g.startedAt {
		return 0
	}
	return now - g.startedAt
}

// Summary is shown on the game-over screen.
type Summary struct {
	Score                int
	HighScore            int
	Level                int
	IngredientsCollected int
	EnemiesDefeated      int
	PotionsCreated       int
	HighestCombo         int
	TimePlayed           time.Duration
	Saved                bool  // Score was written to the store
	SaveErr              error // Why saving failed, if it did
}

// Summary returns the statistics of the run so far.
func (g *Game) Summary() Summary {
	score := g.stats.DisplayScore()
	return Summary{
		Score:                score,
		HighScore:            max(score, g.stats.HighScore),
		Level:                g.level,
		IngredientsCollected: g.stats.IngredientsCollected,
		EnemiesDefeated:      g.stats.EnemiesDefeated,
		PotionsCreated:       g.stats.PotionsCreated,
		HighestCombo:         g.stats.HighestCombo,
		TimePlayed:           g.elapsed(g.now()),
		Saved:                g.scoreSaved,
		SaveErr:              g.saveErr,
	}
}

// TimePlayedString formats the play time as MM:SS.
func (s Summary) TimePlayedString() string {
	return FormatDuration(s.TimePlayed)
}

// FormatDuration formats d as MM:SS, truncated to whole seconds.
func FormatDuration(d time.Duration) string {
	secs := int(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

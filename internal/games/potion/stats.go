package potion

// RunStats is the bookkeeping of a single run.
type RunStats struct {
	Score                int // May go negative; see DisplayScore
	HighScore            int
	CurrentCombo         int
	HighestCombo         int
	IngredientsCollected int
	EnemiesDefeated      int
	PotionsCreated       int
}

// Reset clears the run, keeping highScore as the score to beat.
func (s *RunStats) Reset(highScore int) {
	*s = RunStats{HighScore: highScore}
}

// AddScore applies a score delta and tracks the high score.
// The current score itself is never clamped.
func (s *RunStats) AddScore(points int) {
	s.Score += points
	if s.Score > s.HighScore {
		s.HighScore = s.Score
	}
}

// ComboHit extends the combo by one correct pick.
func (s *RunStats) ComboHit() {
	s.CurrentCombo++
	if s.CurrentCombo > s.HighestCombo {
		s.HighestCombo = s.CurrentCombo
	}
}

// ResetCombo breaks the current combo.
func (s *RunStats) ResetCombo() {
	s.CurrentCombo = 0
}

// DisplayScore returns the score floored at zero.
func (s *RunStats) DisplayScore() int {
	if s.Score < 0 {
		return 0
	}
	return s.Score
}

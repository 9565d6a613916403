package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/perfect-potion/internal/core"
	"github.com/vovakirdan/perfect-potion/internal/games/potion"
)

func testRuntime() core.RuntimeConfig {
	return core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 7}
}

func sendGame(t *testing.T, m GameModel, msgs ...tea.Msg) (GameModel, tea.Cmd) {
	t.Helper()

	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		var ok bool
		if m, ok = next.(GameModel); !ok {
			t.Fatalf("Update() returned %T, expected GameModel", next)
		}
	}
	return m, cmd
}

func newTestGameModel(t *testing.T) GameModel {
	t.Helper()

	game := potion.New()
	AttachPlayer(game, nil, nil)
	m := NewGameModel(game, testRuntime())
	m.Init()
	return m
}

func tick() tea.Msg {
	return TickMsg(time.Now())
}

func TestGameModelPause(t *testing.T) {
	m := newTestGameModel(t)

	m, _ = sendGame(t, m, runeKey('p'), tick())
	if !m.gameState.Paused {
		t.Fatal("P should pause the game on the next tick")
	}

	m, _ = sendGame(t, m, runeKey('p'), tick())
	if m.gameState.Paused {
		t.Error("P should resume a paused game")
	}
}

func TestGameModelRankingOnlyWhenPaused(t *testing.T) {
	m := newTestGameModel(t)

	m, _ = sendGame(t, m, tick(), keyTab)
	if m.WantsRanking() {
		t.Error("Tab should be ignored while playing")
	}

	m, cmd := sendGame(t, m, runeKey('p'), tick(), keyTab)
	if !m.WantsRanking() {
		t.Error("Tab should open the ranking while paused")
	}
	if cmd != nil {
		t.Error("Embedded model should leave quitting to its parent")
	}
}

func TestGameModelBackWhenPausedStandalone(t *testing.T) {
	m := newTestGameModel(t)
	m.standalone = true

	m, _ = sendGame(t, m, runeKey('b'))
	if m.BackToMenu() {
		t.Error("Back should be ignored while playing")
	}

	m, cmd := sendGame(t, m, runeKey('p'), tick(), runeKey('b'))
	if !m.BackToMenu() {
		t.Error("Back should return to the menu while paused")
	}
	if cmd == nil {
		t.Error("Standalone model should quit its program when leaving")
	}
}

func TestGameModelQuit(t *testing.T) {
	m := newTestGameModel(t)

	m, cmd := sendGame(t, m, runeKey('q'))
	if !m.IsQuitting() {
		t.Error("Q should quit")
	}
	if cmd == nil {
		t.Error("Quit should return tea.Quit")
	}
	if m.View() != "" {
		t.Error("View() should be empty after quitting")
	}
}

func TestGameModelResizeKeepsRun(t *testing.T) {
	m := newTestGameModel(t)
	m, _ = sendGame(t, m, tick(), tick())

	game := m.game.(*potion.Game)
	runID := game.RunID()

	m, _ = sendGame(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	if game.RunID() != runID {
		t.Error("Resize should not restart the run")
	}
	if m.screen.Width() != 100 || m.screen.Height() != 30 {
		t.Errorf("screen = %dx%d, expected 100x30", m.screen.Width(), m.screen.Height())
	}
	if !strings.Contains(m.View(), "Recipe") {
		t.Error("View() should draw the recipe line")
	}
}

func TestAttachPlayer(t *testing.T) {
	store := openTestStore(t, "alice")
	p, err := store.GetPlayerByName("alice")
	if err != nil {
		t.Fatalf("GetPlayerByName() failed: %v", err)
	}

	game := potion.New()
	AttachPlayer(game, store, &p)
	game.Reset(testRuntime())

	if snap := game.Snapshot(); snap.PlayerName != "alice" {
		t.Errorf("PlayerName = %q, expected %q", snap.PlayerName, "alice")
	}
}

func TestSessionModelRankingLoop(t *testing.T) {
	store := openTestStore(t, "alice")
	p, err := store.GetPlayerByName("alice")
	if err != nil {
		t.Fatalf("GetPlayerByName() failed: %v", err)
	}

	m, err := NewSessionModel(store, testRuntime(), "potion", &p)
	if err != nil {
		t.Fatalf("NewSessionModel() failed: %v", err)
	}
	m.Init()

	send := func(msgs ...tea.Msg) {
		for _, msg := range msgs {
			next, _ := m.Update(msg)
			m = next.(SessionModel)
		}
	}

	send(runeKey('p'), tick(), keyTab)
	if !m.inRanking {
		t.Fatal("Tab on a paused game should show the ranking")
	}
	if m.ranking.highlight != "alice" {
		t.Errorf("ranking highlight = %q, expected %q", m.ranking.highlight, "alice")
	}

	// Stale ticks from the finished game are dropped
	send(tick())
	if !m.inRanking {
		t.Error("Tick should not leave the ranking")
	}

	send(keyEsc)
	if m.inRanking {
		t.Error("Back from the ranking should start a new game")
	}
	if m.gameModel.gameState.Paused {
		t.Error("New game should not start paused")
	}

	send(runeKey('q'))
	if !m.quitting {
		t.Error("Q should end the session")
	}
}

func TestSessionModelUnknownGame(t *testing.T) {
	if _, err := NewSessionModel(nil, testRuntime(), "nope", nil); err == nil {
		t.Error("NewSessionModel() with unknown game should fail")
	}
}

func TestScoreboardModel(t *testing.T) {
	store := openTestStore(t, "alice", "bob")
	players, err := store.ListPlayers()
	if err != nil {
		t.Fatalf("ListPlayers() failed: %v", err)
	}
	ids := map[string]int64{}
	for _, p := range players {
		ids[p.Name] = p.ID
	}
	if _, err := store.AddScore(ids["alice"], 120, 3, 65); err != nil {
		t.Fatalf("AddScore() failed: %v", err)
	}

	m := NewScoreboardModel(store, "alice", 100, 30)
	rows := m.table.Rows()
	if len(rows) != 1 {
		t.Fatalf("rows = %d, expected 1", len(rows))
	}
	if rows[0][1] != "* alice" {
		t.Errorf("player cell = %q, expected highlighted alice", rows[0][1])
	}
	if rows[0][4] != "01:05" {
		t.Errorf("time cell = %q, expected %q", rows[0][4], "01:05")
	}
	if len(rows[0]) != 6 {
		t.Errorf("columns = %d, expected 6 with a date on a wide screen", len(rows[0]))
	}

	// New scores show up on refresh
	if _, err := store.AddScore(ids["bob"], 300, 5, 90); err != nil {
		t.Fatalf("AddScore() failed: %v", err)
	}
	next, _ := m.Update(runeKey('r'))
	m = next.(ScoreboardModel)
	rows = m.table.Rows()
	if len(rows) != 2 || rows[0][1] != "bob" {
		t.Errorf("after refresh rows = %v, expected bob first", rows)
	}

	next, _ = m.Update(keyEsc)
	if !next.(ScoreboardModel).IsGoingBack() {
		t.Error("Esc should go back")
	}
}

func TestScoreboardNarrowDropsDate(t *testing.T) {
	store := openTestStore(t, "alice")
	p, _ := store.GetPlayerByName("alice")
	if _, err := store.AddScore(p.ID, 10, 1, 5); err != nil {
		t.Fatalf("AddScore() failed: %v", err)
	}

	m := NewScoreboardModel(store, "", 60, 20)
	if rows := m.table.Rows(); len(rows) != 1 || len(rows[0]) != 5 {
		t.Errorf("rows = %v, expected one row without a date", rows)
	}
}

func TestScoreboardWithoutStore(t *testing.T) {
	m := NewScoreboardModel(nil, "", 80, 24)
	if !strings.Contains(m.View(), "not available") {
		t.Error("View() without a store should say scores are not available")
	}
}

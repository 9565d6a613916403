package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustCreatePlayer(t *testing.T, store *Store, name string) int64 {
	t.Helper()

	id, err := store.CreatePlayer(name)
	if err != nil {
		t.Fatalf("CreatePlayer(%q) failed: %v", name, err)
	}
	return id
}

func TestStoreOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}

	// Reopening runs migrations again
	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	store.Close()
}

func TestCreateAndGetPlayer(t *testing.T) {
	store := openTestStore(t)

	id := mustCreatePlayer(t, store, "  Merlin ")

	p, err := store.GetPlayer(id)
	if err != nil {
		t.Fatalf("GetPlayer() failed: %v", err)
	}
	if p.Name != "Merlin" {
		t.Errorf("Name = %q, expected trimmed \"Merlin\"", p.Name)
	}
	if p.BestScore != 0 || !p.LastPlayed.IsZero() {
		t.Errorf("new player = %+v, expected no score and never played", p)
	}

	byName, err := store.GetPlayerByName("Merlin")
	if err != nil {
		t.Fatalf("GetPlayerByName() failed: %v", err)
	}
	if byName.ID != id {
		t.Errorf("GetPlayerByName().ID = %d, expected %d", byName.ID, id)
	}
}

func TestCreatePlayerErrors(t *testing.T) {
	store := openTestStore(t)
	mustCreatePlayer(t, store, "Morgana")

	if _, err := store.CreatePlayer("Morgana"); !errors.Is(err, ErrPlayerExists) {
		t.Errorf("duplicate CreatePlayer() error = %v, expected ErrPlayerExists", err)
	}
	if _, err := store.CreatePlayer("   "); err == nil {
		t.Error("CreatePlayer() with a blank name should fail")
	}
	if _, err := store.GetPlayer(999); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("GetPlayer(999) error = %v, expected ErrPlayerNotFound", err)
	}
	if _, err := store.GetPlayerByName("nobody"); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("GetPlayerByName() error = %v, expected ErrPlayerNotFound", err)
	}
}

func TestGetOrCreatePlayer(t *testing.T) {
	store := openTestStore(t)

	first, err := store.GetOrCreatePlayer("guest")
	if err != nil {
		t.Fatalf("GetOrCreatePlayer() failed: %v", err)
	}
	second, err := store.GetOrCreatePlayer("guest")
	if err != nil {
		t.Fatalf("GetOrCreatePlayer() failed: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("IDs differ: %d vs %d", first.ID, second.ID)
	}

	players, err := store.ListPlayers()
	if err != nil {
		t.Fatalf("ListPlayers() failed: %v", err)
	}
	if len(players) != 1 {
		t.Errorf("expected 1 player, got %d", len(players))
	}
}

func TestAddScoreKeepsBest(t *testing.T) {
	store := openTestStore(t)
	id := mustCreatePlayer(t, store, "Merlin")

	firstID, err := store.AddScore(id, 100, 2, 65)
	if err != nil {
		t.Fatalf("AddScore() failed: %v", err)
	}

	// A worse run does not replace the best one
	sameID, err := store.AddScore(id, 40, 1, 20)
	if err != nil {
		t.Fatalf("AddScore() failed: %v", err)
	}
	if sameID != firstID {
		t.Errorf("score row ID = %d, expected %d", sameID, firstID)
	}

	scores, err := store.PlayerScores(id, 10)
	if err != nil {
		t.Fatalf("PlayerScores() failed: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("expected one score per player, got %d", len(scores))
	}
	if s := scores[0]; s.Score != 100 || s.Level != 2 || s.GameTime != 65 || s.PlayerName != "Merlin" {
		t.Errorf("PlayerScores()[0] = %+v, expected 100 at level 2 in 65s", s)
	}

	// A better run replaces it
	if _, err := store.AddScore(id, 250, 5, 180); err != nil {
		t.Fatalf("AddScore() failed: %v", err)
	}
	scores, _ = store.PlayerScores(id, 10)
	if len(scores) != 1 || scores[0].Score != 250 || scores[0].Level != 5 {
		t.Errorf("PlayerScores() = %+v, expected the 250 run only", scores)
	}

	p, err := store.GetPlayer(id)
	if err != nil {
		t.Fatalf("GetPlayer() failed: %v", err)
	}
	if p.BestScore != 250 {
		t.Errorf("BestScore = %d, expected 250", p.BestScore)
	}
	if p.LastPlayed.IsZero() {
		t.Error("LastPlayed should be set after a game")
	}
}

func TestAddScoreUnknownPlayer(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.AddScore(42, 10, 1, 1); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("AddScore() error = %v, expected ErrPlayerNotFound", err)
	}
}

func TestHighScores(t *testing.T) {
	store := openTestStore(t)

	scores := map[string]int{"Merlin": 300, "Morgana": 500, "Nimue": 100, "Idle": 0}
	for name, score := range scores {
		id := mustCreatePlayer(t, store, name)
		if name == "Idle" {
			continue
		}
		if _, err := store.AddScore(id, score, 1, 30); err != nil {
			t.Fatalf("AddScore() failed: %v", err)
		}
	}

	top, err := store.HighScores(10)
	if err != nil {
		t.Fatalf("HighScores() failed: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("expected 3 entries (players without games excluded), got %d", len(top))
	}

	expected := []string{"Morgana", "Merlin", "Nimue"}
	for i, name := range expected {
		if top[i].PlayerName != name {
			t.Errorf("rank %d = %s, expected %s", i+1, top[i].PlayerName, name)
		}
	}

	limited, err := store.HighScores(2)
	if err != nil {
		t.Fatalf("HighScores(2) failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("HighScores(2) returned %d entries", len(limited))
	}
}

func TestClearScores(t *testing.T) {
	store := openTestStore(t)
	id := mustCreatePlayer(t, store, "Merlin")
	if _, err := store.AddScore(id, 100, 1, 10); err != nil {
		t.Fatalf("AddScore() failed: %v", err)
	}

	if err := store.ClearScores(); err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}

	top, _ := store.HighScores(10)
	if len(top) != 0 {
		t.Errorf("expected no scores after clear, got %d", len(top))
	}
	p, err := store.GetPlayer(id)
	if err != nil {
		t.Fatalf("players should survive ClearScores(): %v", err)
	}
	if p.BestScore != 0 {
		t.Errorf("BestScore = %d, expected reset to 0", p.BestScore)
	}
}

func TestDeletePlayer(t *testing.T) {
	store := openTestStore(t)
	id := mustCreatePlayer(t, store, "Merlin")
	other := mustCreatePlayer(t, store, "Nimue")
	store.AddScore(id, 100, 1, 10)
	store.AddScore(other, 50, 1, 10)

	if err := store.DeletePlayer(id); err != nil {
		t.Fatalf("DeletePlayer() failed: %v", err)
	}
	if _, err := store.GetPlayer(id); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("deleted player still found: %v", err)
	}

	top, _ := store.HighScores(10)
	if len(top) != 1 || top[0].PlayerID != other {
		t.Errorf("HighScores() = %+v, expected only Nimue's score", top)
	}

	if err := store.DeletePlayer(id); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("second DeletePlayer() error = %v, expected ErrPlayerNotFound", err)
	}
}

func TestGetStats(t *testing.T) {
	store := openTestStore(t)

	st, err := store.GetStats()
	if err != nil {
		t.Fatalf("GetStats() failed: %v", err)
	}
	if st.Players != 0 || st.Scores != 0 || st.HighScore != 0 || !st.LastPlayed.IsZero() {
		t.Errorf("empty store stats = %+v", st)
	}

	a := mustCreatePlayer(t, store, "Merlin")
	b := mustCreatePlayer(t, store, "Nimue")
	store.AddScore(a, 100, 1, 10)
	store.AddScore(b, 300, 3, 10)

	st, err = store.GetStats()
	if err != nil {
		t.Fatalf("GetStats() failed: %v", err)
	}
	if st.Players != 2 || st.Scores != 2 || st.HighScore != 300 || st.AvgScore != 200 {
		t.Errorf("GetStats() = %+v, expected 2 players, 2 scores, best 300, avg 200", st)
	}
}

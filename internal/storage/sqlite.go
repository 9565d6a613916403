// Package storage provides SQLite-based persistence for players and scores.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Sentinel errors returned by player operations.
var (
	ErrPlayerExists   = errors.New("storage: player already exists")
	ErrPlayerNotFound = errors.New("storage: player not found")
)

// sqliteTime is the layout SQLite uses for CURRENT_TIMESTAMP.
const sqliteTime = "2006-01-02 15:04:05"

// Store manages the SQLite database connection. It is safe for
// concurrent use.
type Store struct {
	db *sql.DB
}

// Player is a named profile scores are attributed to.
type Player struct {
	ID         int64
	Name       string
	BestScore  int
	CreatedAt  time.Time
	LastPlayed time.Time // Zero if the player never finished a game
}

// ScoreEntry is a player's best run.
type ScoreEntry struct {
	ID         int64
	PlayerID   int64
	PlayerName string
	Score      int
	Level      int
	GameTime   float64 // Seconds
	CreatedAt  time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS players (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			best_score INTEGER NOT NULL DEFAULT 0,
			last_played DATETIME
		);

		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player_id INTEGER NOT NULL REFERENCES players(id) ON DELETE CASCADE,
			score INTEGER NOT NULL,
			level INTEGER NOT NULL DEFAULT 1,
			game_time REAL NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_player ON scores(player_id);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(score DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// parseTime handles both time.Time and string columns.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse(sqliteTime, v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const playerColumns = "id, name, best_score, created_at, last_played"

func scanPlayer(r rowScanner) (Player, error) {
	var p Player
	var createdAt, lastPlayed any
	if err := r.Scan(&p.ID, &p.Name, &p.BestScore, &createdAt, &lastPlayed); err != nil {
		return Player{}, err
	}
	p.CreatedAt = parseTime(createdAt)
	p.LastPlayed = parseTime(lastPlayed)
	return p, nil
}

// GetPlayer returns the player with the given ID.
func (s *Store) GetPlayer(id int64) (Player, error) {
	p, err := scanPlayer(s.db.QueryRow("SELECT "+playerColumns+" FROM players WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return Player{}, fmt.Errorf("%w: id %d", ErrPlayerNotFound, id)
	}
	if err != nil {
		return Player{}, fmt.Errorf("storage: cannot query player: %w", err)
	}
	return p, nil
}

// GetPlayerByName returns the player with the given name.
func (s *Store) GetPlayerByName(name string) (Player, error) {
	p, err := scanPlayer(s.db.QueryRow("SELECT "+playerColumns+" FROM players WHERE name = ?", name))
	if errors.Is(err, sql.ErrNoRows) {
		return Player{}, fmt.Errorf("%w: %q", ErrPlayerNotFound, name)
	}
	if err != nil {
		return Player{}, fmt.Errorf("storage: cannot query player: %w", err)
	}
	return p, nil
}

// CreatePlayer adds a new player and returns its ID. Names are trimmed
// and must be unique.
func (s *Store) CreatePlayer(name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.New("storage: player name must not be empty")
	}

	if _, err := s.GetPlayerByName(name); err == nil {
		return 0, fmt.Errorf("%w: %q", ErrPlayerExists, name)
	} else if !errors.Is(err, ErrPlayerNotFound) {
		return 0, err
	}

	result, err := s.db.Exec("INSERT INTO players (name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot create player: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// GetOrCreatePlayer returns the player with the given name, creating it
// if needed.
func (s *Store) GetOrCreatePlayer(name string) (Player, error) {
	p, err := s.GetPlayerByName(strings.TrimSpace(name))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrPlayerNotFound) {
		return Player{}, err
	}

	id, err := s.CreatePlayer(name)
	if errors.Is(err, ErrPlayerExists) {
		// Created concurrently by another session
		return s.GetPlayerByName(strings.TrimSpace(name))
	}
	if err != nil {
		return Player{}, err
	}
	return s.GetPlayer(id)
}

// ListPlayers returns all players, most recently played first.
func (s *Store) ListPlayers() ([]Player, error) {
	rows, err := s.db.Query(
		`SELECT ` + playerColumns + `
		 FROM players
		 ORDER BY last_played IS NULL, last_played DESC, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query players: %w", err)
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		players = append(players, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return players, nil
}

// DeletePlayer removes a player together with their scores.
func (s *Store) DeletePlayer(id int64) error {
	result, err := s.db.Exec("DELETE FROM players WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("storage: cannot delete player: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: id %d", ErrPlayerNotFound, id)
	}
	return nil
}

// AddScore records a finished run. Only the player's best run is kept:
// a score that does not beat the stored one leaves the scores table
// untouched. The player's last_played is always updated.
// Returns the ID of the player's score row.
func (s *Store) AddScore(playerID int64, score, level, gameSeconds int) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	var best int
	err = tx.QueryRow("SELECT best_score FROM players WHERE id = ?", playerID).Scan(&best)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: id %d", ErrPlayerNotFound, playerID)
	}
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query player: %w", err)
	}

	var (
		scoreID  int64
		existing int
	)
	err = tx.QueryRow(
		"SELECT id, score FROM scores WHERE player_id = ? ORDER BY score DESC LIMIT 1",
		playerID,
	).Scan(&scoreID, &existing)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		result, err := tx.Exec(
			"INSERT INTO scores (player_id, score, level, game_time) VALUES (?, ?, ?, ?)",
			playerID, score, level, float64(gameSeconds),
		)
		if err != nil {
			return 0, fmt.Errorf("storage: cannot save score: %w", err)
		}
		if scoreID, err = result.LastInsertId(); err != nil {
			return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
		}
	case err != nil:
		return 0, fmt.Errorf("storage: cannot query scores: %w", err)
	case score > existing:
		_, err := tx.Exec(
			`UPDATE scores SET score = ?, level = ?, game_time = ?, created_at = CURRENT_TIMESTAMP
			 WHERE id = ?`,
			score, level, float64(gameSeconds), scoreID,
		)
		if err != nil {
			return 0, fmt.Errorf("storage: cannot update score: %w", err)
		}
	}

	_, err = tx.Exec(
		"UPDATE players SET best_score = MAX(best_score, ?), last_played = CURRENT_TIMESTAMP WHERE id = ?",
		score, playerID,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot update player: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit score: %w", err)
	}
	return scoreID, nil
}

func (s *Store) queryScores(query string, args ...any) ([]ScoreEntry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.PlayerID, &e.PlayerName, &e.Score, &e.Level, &e.GameTime, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// HighScores returns the top scores across all players, best first.
func (s *Store) HighScores(limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.queryScores(
		`SELECT s.id, s.player_id, p.name, s.score, s.level, s.game_time, s.created_at
		 FROM scores s
		 JOIN players p ON p.id = s.player_id
		 ORDER BY s.score DESC, s.created_at ASC
		 LIMIT ?`,
		limit,
	)
}

// PlayerScores returns a player's scores, best first.
func (s *Store) PlayerScores(playerID int64, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.queryScores(
		`SELECT s.id, s.player_id, p.name, s.score, s.level, s.game_time, s.created_at
		 FROM scores s
		 JOIN players p ON p.id = s.player_id
		 WHERE s.player_id = ?
		 ORDER BY s.score DESC
		 LIMIT ?`,
		playerID, limit,
	)
}

// ClearScores deletes every score and resets all best scores. Players
// are kept.
func (s *Store) ClearScores() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	if _, err := tx.Exec("DELETE FROM scores"); err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	if _, err := tx.Exec("UPDATE players SET best_score = 0"); err != nil {
		return fmt.Errorf("storage: cannot reset best scores: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit: %w", err)
	}
	return nil
}

// Stats contains aggregated statistics over all players.
type Stats struct {
	Players    int
	Scores     int
	HighScore  int
	AvgScore   float64
	LastPlayed time.Time
}

// GetStats returns aggregated statistics.
func (s *Store) GetStats() (Stats, error) {
	var st Stats
	err := s.db.QueryRow(
		`SELECT (SELECT COUNT(*) FROM players), COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0)
		 FROM scores`,
	).Scan(&st.Players, &st.Scores, &st.HighScore, &st.AvgScore)
	if err != nil {
		return Stats{}, fmt.Errorf("storage: cannot get stats: %w", err)
	}

	var lastPlayed any
	err = s.db.QueryRow("SELECT MAX(last_played) FROM players").Scan(&lastPlayed)
	if err != nil {
		return Stats{}, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	st.LastPlayed = parseTime(lastPlayed)

	return st, nil
}

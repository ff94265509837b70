// Package storage provides SQLite-based persistence for scores, game history,
// favorites and suspended sessions.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

var (
	// ErrNotFound is returned when a history entry or favorite does not exist.
	ErrNotFound = errors.New("storage: not found")
	// ErrNoSession is returned when no suspended session is stored for a key.
	ErrNoSession = errors.New("storage: no suspended session")
)

// DefaultHistoryLimit is the number of history entries kept before the oldest are pruned.
const DefaultHistoryLimit = 100

// Store manages the SQLite database connection.
type Store struct {
	db           *sql.DB
	historyLimit int
}

// ScoreEntry represents a single high score record.
type ScoreEntry struct {
	ID        int64
	GameID    string
	Score     int
	MaxChain  int
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// One writer; the SSH server shares the store across sessions.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db, historyLimit: DefaultHistoryLimit}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// SetHistoryLimit changes how many history entries are kept. Non-positive values
// restore the default.
func (s *Store) SetHistoryLimit(n int) {
	if n <= 0 {
		n = DefaultHistoryLimit
	}
	s.historyLimit = n
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			score INTEGER NOT NULL,
			max_chain INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_game_id ON scores(game_id);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(game_id, score DESC);

		CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			game_id TEXT NOT NULL,
			field TEXT NOT NULL,
			score INTEGER NOT NULL,
			max_chain INTEGER NOT NULL,
			drop_count INTEGER NOT NULL,
			ledger TEXT NOT NULL,
			next_snapshot_id INTEGER NOT NULL,
			note TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '[]',
			last_played_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_games_played ON games(last_played_at DESC);

		CREATE TABLE IF NOT EXISTS favorites (
			id TEXT PRIMARY KEY,
			source_id TEXT NOT NULL,
			game_id TEXT NOT NULL,
			field TEXT NOT NULL,
			score INTEGER NOT NULL,
			max_chain INTEGER NOT NULL,
			drop_count INTEGER NOT NULL,
			ledger TEXT NOT NULL,
			next_snapshot_id INTEGER NOT NULL,
			note TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '[]',
			last_played_at INTEGER NOT NULL,
			favorited_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS sessions (
			key TEXT PRIMARY KEY,
			record_id TEXT NOT NULL DEFAULT '',
			game_id TEXT NOT NULL DEFAULT '',
			version INTEGER NOT NULL,
			data TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
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

// parseTimestamp reads a DATETIME column, which the driver hands back either as
// time.Time or as text.
func parseTimestamp(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// SaveScore records a finished game's score and best chain.
// Returns the ID of the inserted record.
func (s *Store) SaveScore(gameID string, score, maxChain int) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO scores (game_id, score, max_chain) VALUES (?, ?, ?)",
		gameID, score, maxChain,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save score: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// TopScores retrieves the top N scores for the given game.
// Results are ordered by score descending. A non-positive limit means 10.
func (s *Store) TopScores(gameID string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.queryScores(
		`SELECT id, game_id, score, max_chain, created_at
		 FROM scores
		 WHERE game_id = ?
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		gameID, limit,
	)
}

// AllScores retrieves all scores for the given game (no limit).
func (s *Store) AllScores(gameID string) ([]ScoreEntry, error) {
	return s.queryScores(
		`SELECT id, game_id, score, max_chain, created_at
		 FROM scores
		 WHERE game_id = ?
		 ORDER BY score DESC, id ASC`,
		gameID,
	)
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
		if err := rows.Scan(&e.ID, &e.GameID, &e.Score, &e.MaxChain, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTimestamp(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// HighScore returns the highest score for the given game.
// Returns 0 if no scores exist.
func (s *Store) HighScore(gameID string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM scores WHERE game_id = ?",
		gameID,
	).Scan(&score)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}

	return int(score.Int64), nil
}

// ClearScores deletes all scores for the given game.
func (s *Store) ClearScores(gameID string) error {
	_, err := s.db.Exec("DELETE FROM scores WHERE game_id = ?", gameID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// GameStats contains aggregated statistics for a game variant.
type GameStats struct {
	GameID     string
	GamesCount int
	HighScore  int
	BestChain  int
	AvgScore   float64
	LastPlayed time.Time
}

// GetAllGamesStats retrieves statistics for every variant that has been played.
func (s *Store) GetAllGamesStats() (map[string]*GameStats, error) {
	rows, err := s.db.Query(
		`SELECT game_id, COUNT(*), MAX(score), MAX(max_chain), AVG(score), MAX(created_at)
		 FROM scores
		 GROUP BY game_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all games stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*GameStats)
	for rows.Next() {
		var st GameStats
		var lastPlayed any
		if err := rows.Scan(&st.GameID, &st.GamesCount, &st.HighScore, &st.BestChain, &st.AvgScore, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastPlayed = parseTimestamp(lastPlayed)
		stats[st.GameID] = &st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

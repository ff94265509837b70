package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/tui-puyo/internal/games/puyo"
	"github.com/vovakirdan/tui-puyo/internal/games/puyo/core"
)

// SaveSession stores the suspended game for key, replacing any previous one.
func (s *Store) SaveSession(key string, rec puyo.GameRecord) error {
	data, err := json.Marshal(rec.Session)
	if err != nil {
		return fmt.Errorf("storage: cannot encode session: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO sessions (key, record_id, game_id, version, data, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			record_id = excluded.record_id,
			game_id = excluded.game_id,
			version = excluded.version,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		key, rec.ID, rec.GameID, rec.Session.Version, string(data), rec.PlayedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save session: %w", err)
	}
	return nil
}

// LoadSession returns the suspended game for key. A stored session that cannot
// be decoded or was written by another schema version yields
// core.ErrIncompatibleSession; a missing one yields ErrNoSession.
func (s *Store) LoadSession(key string) (puyo.GameRecord, error) {
	var (
		rec       puyo.GameRecord
		version   int
		data      string
		updatedAt int64
	)
	err := s.db.QueryRow(
		"SELECT record_id, game_id, version, data, updated_at FROM sessions WHERE key = ?", key,
	).Scan(&rec.ID, &rec.GameID, &version, &data, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, ErrNoSession
	}
	if err != nil {
		return rec, fmt.Errorf("storage: cannot load session: %w", err)
	}

	if version != core.SessionVersion {
		return rec, fmt.Errorf("%w: stored version %d", core.ErrIncompatibleSession, version)
	}
	if err := json.Unmarshal([]byte(data), &rec.Session); err != nil {
		return rec, fmt.Errorf("%w: %w", core.ErrIncompatibleSession, err)
	}
	rec.PlayedAt = time.Unix(0, updatedAt)
	return rec, nil
}

// ClearSession removes the suspended game for key. Missing sessions are not an error.
func (s *Store) ClearSession(key string) error {
	if _, err := s.db.Exec("DELETE FROM sessions WHERE key = ?", key); err != nil {
		return fmt.Errorf("storage: cannot clear session: %w", err)
	}
	return nil
}

// Ensure Store implements puyo.Recorder
var _ puyo.Recorder = (*Store)(nil)

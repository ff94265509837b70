package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/tui-puyo/internal/games/puyo"
	"github.com/vovakirdan/tui-puyo/internal/games/puyo/core"
)

// HistoryEntry is a recorded game with its full snapshot ledger.
type HistoryEntry struct {
	ID             string
	GameID         string
	Field          core.Field
	Score          int
	MaxChain       int
	DropCount      int
	Ledger         core.Ledger
	NextSnapshotID int
	Note           string
	Tags           []string
	LastPlayedAt   time.Time
}

// Favorite is an independent copy of a history entry. Deleting or pruning the
// source entry does not affect it.
type Favorite struct {
	HistoryEntry
	SourceID    string
	FavoritedAt time.Time
}

// SaveHistory upserts the entry for a game in progress. Games without a single drop
// are not kept: an existing entry for them is removed. The oldest entries beyond the
// history limit are pruned.
func (s *Store) SaveHistory(rec puyo.GameRecord) error {
	if rec.DropCount() == 0 {
		if _, err := s.db.Exec("DELETE FROM games WHERE id = ?", rec.ID); err != nil {
			return fmt.Errorf("storage: cannot remove empty game: %w", err)
		}
		return nil
	}

	field, err := json.Marshal(rec.Session.Field)
	if err != nil {
		return fmt.Errorf("storage: cannot encode field: %w", err)
	}
	ledger, err := json.Marshal(rec.Session.Ledger)
	if err != nil {
		return fmt.Errorf("storage: cannot encode ledger: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.Exec(
		`INSERT INTO games
		 (id, game_id, field, score, max_chain, drop_count, ledger, next_snapshot_id, last_played_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			field = excluded.field,
			score = excluded.score,
			max_chain = excluded.max_chain,
			drop_count = excluded.drop_count,
			ledger = excluded.ledger,
			next_snapshot_id = excluded.next_snapshot_id,
			last_played_at = excluded.last_played_at`,
		rec.ID, rec.GameID, string(field), rec.Session.Score, rec.Session.MaxChain,
		rec.DropCount(), string(ledger), rec.Session.NextID, rec.PlayedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save game: %w", err)
	}

	_, err = tx.Exec(
		`DELETE FROM games WHERE id NOT IN (
			SELECT id FROM games ORDER BY last_played_at DESC, rowid DESC LIMIT ?
		)`,
		s.historyLimit,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot prune history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit game: %w", err)
	}
	return nil
}

const historyColumns = `id, game_id, field, score, max_chain, drop_count, ledger,
	next_snapshot_id, note, tags, last_played_at`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanHistory reads historyColumns followed by any extra destinations.
func scanHistory(row scanner, extra ...any) (HistoryEntry, error) {
	var (
		e                   HistoryEntry
		field, ledger, tags string
		playedAt            int64
	)
	dest := append([]any{
		&e.ID, &e.GameID, &field, &e.Score, &e.MaxChain, &e.DropCount, &ledger,
		&e.NextSnapshotID, &e.Note, &tags, &playedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return e, err
	}

	if err := json.Unmarshal([]byte(field), &e.Field); err != nil {
		return e, fmt.Errorf("storage: bad field in %s: %w", e.ID, err)
	}
	if err := json.Unmarshal([]byte(ledger), &e.Ledger); err != nil {
		return e, fmt.Errorf("storage: bad ledger in %s: %w", e.ID, err)
	}
	if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
		return e, fmt.Errorf("storage: bad tags in %s: %w", e.ID, err)
	}
	e.LastPlayedAt = time.Unix(0, playedAt)
	return e, nil
}

// ListHistory returns all history entries, most recently played first.
func (s *Store) ListHistory() ([]HistoryEntry, error) {
	rows, err := s.db.Query(
		`SELECT ` + historyColumns + ` FROM games ORDER BY last_played_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		e, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// History returns one entry by id.
func (s *Store) History(id string) (HistoryEntry, error) {
	e, err := scanHistory(s.db.QueryRow(
		`SELECT `+historyColumns+` FROM games WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return e, fmt.Errorf("%w: game %s", ErrNotFound, id)
	}
	if err != nil {
		return e, fmt.Errorf("storage: cannot load game: %w", err)
	}
	return e, nil
}

// DeleteHistory removes one entry. Favorites copied from it stay.
func (s *Store) DeleteHistory(id string) error {
	return s.deleteByID("games", id)
}

// UpdateHistoryNote replaces the note and tags of a history entry.
func (s *Store) UpdateHistoryNote(id, note string, tags []string) error {
	return s.updateNote("games", id, note, tags)
}

// AddFavorite copies a history entry into the favorites and returns the copy's id.
func (s *Store) AddFavorite(historyID string) (string, error) {
	e, err := s.History(historyID)
	if err != nil {
		return "", err
	}
	field, err := json.Marshal(e.Field)
	if err != nil {
		return "", fmt.Errorf("storage: cannot encode field: %w", err)
	}
	ledger, err := json.Marshal(e.Ledger)
	if err != nil {
		return "", fmt.Errorf("storage: cannot encode ledger: %w", err)
	}
	tags, err := encodeTags(e.Tags)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO favorites
		 (id, source_id, game_id, field, score, max_chain, drop_count, ledger,
		  next_snapshot_id, note, tags, last_played_at, favorited_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, e.ID, e.GameID, string(field), e.Score, e.MaxChain, e.DropCount, string(ledger),
		e.NextSnapshotID, e.Note, tags, e.LastPlayedAt.UnixNano(), time.Now().UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot add favorite: %w", err)
	}
	return id, nil
}

// ListFavorites returns all favorites, newest first.
func (s *Store) ListFavorites() ([]Favorite, error) {
	rows, err := s.db.Query(
		`SELECT ` + historyColumns + `, source_id, favorited_at
		 FROM favorites ORDER BY favorited_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query favorites: %w", err)
	}
	defer rows.Close()

	var favs []Favorite
	for rows.Next() {
		var (
			f   Favorite
			at  int64
			err error
		)
		f.HistoryEntry, err = scanHistory(rows, &f.SourceID, &at)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan favorite row: %w", err)
		}
		f.FavoritedAt = time.Unix(0, at)
		favs = append(favs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return favs, nil
}

// Favorite returns one favorite by id.
func (s *Store) Favorite(id string) (Favorite, error) {
	var (
		f   Favorite
		at  int64
		err error
	)
	f.HistoryEntry, err = scanHistory(s.db.QueryRow(
		`SELECT `+historyColumns+`, source_id, favorited_at FROM favorites WHERE id = ?`, id,
	), &f.SourceID, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return f, fmt.Errorf("%w: favorite %s", ErrNotFound, id)
	}
	if err != nil {
		return f, fmt.Errorf("storage: cannot load favorite: %w", err)
	}
	f.FavoritedAt = time.Unix(0, at)
	return f, nil
}

// RemoveFavorite deletes a favorite copy.
func (s *Store) RemoveFavorite(id string) error {
	return s.deleteByID("favorites", id)
}

// UpdateFavoriteNote replaces the note and tags of a favorite.
func (s *Store) UpdateFavoriteNote(id, note string, tags []string) error {
	return s.updateNote("favorites", id, note, tags)
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("storage: cannot encode tags: %w", err)
	}
	return string(data), nil
}

// table is always one of the package's own table names, never user input.
func (s *Store) deleteByID(table, id string) error {
	res, err := s.db.Exec("DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("storage: cannot delete from %s: %w", table, err)
	}
	return expectRow(res, table, id)
}

func (s *Store) updateNote(table, id, note string, tags []string) error {
	encoded, err := encodeTags(tags)
	if err != nil {
		return err
	}
	res, err := s.db.Exec("UPDATE "+table+" SET note = ?, tags = ? WHERE id = ?", note, encoded, id)
	if err != nil {
		return fmt.Errorf("storage: cannot update note in %s: %w", table, err)
	}
	return expectRow(res, table, id)
}

func expectRow(res sql.Result, table, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", ErrNotFound, table, id)
	}
	return nil
}

package storage

import (
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

func TestStoreOpenCreatesNestedPath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, err := store.SaveScore("puyo", 120, 2); err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer store.Close()

	high, err := store.HighScore("puyo")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 120 {
		t.Errorf("HighScore() = %d after reopen, want 120", high)
	}
}

func TestStoreTopScores(t *testing.T) {
	store := openTestStore(t)

	for i, score := range []int{100, 50, 500, 400, 300} {
		if _, err := store.SaveScore("puyo", score, i); err != nil {
			t.Fatalf("SaveScore() failed: %v", err)
		}
	}
	store.SaveScore("puyo_3", 900, 7)

	scores, err := store.TopScores("puyo", 3)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("Expected 3 scores with limit, got %d", len(scores))
	}
	if scores[0].Score != 500 || scores[1].Score != 400 || scores[2].Score != 300 {
		t.Errorf("Scores not in expected order: %v", scores)
	}
	if scores[0].MaxChain != 2 {
		t.Errorf("MaxChain = %d, want 2", scores[0].MaxChain)
	}

	all, err := store.AllScores("puyo")
	if err != nil {
		t.Fatalf("AllScores() failed: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("Expected 5 scores, got %d", len(all))
	}
}

func TestStoreHighScoreAndClear(t *testing.T) {
	store := openTestStore(t)

	high, err := store.HighScore("puyo")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 0 {
		t.Errorf("Expected high score of 0 for empty game, got %d", high)
	}

	store.SaveScore("puyo", 100, 1)
	store.SaveScore("puyo", 300, 3)
	store.SaveScore("puyo_5", 200, 1)

	if high, _ = store.HighScore("puyo"); high != 300 {
		t.Errorf("Expected high score of 300, got %d", high)
	}

	if err := store.ClearScores("puyo"); err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}
	if scores, _ := store.TopScores("puyo", 10); len(scores) != 0 {
		t.Errorf("Expected 0 scores after clear, got %d", len(scores))
	}
	if scores, _ := store.TopScores("puyo_5", 10); len(scores) != 1 {
		t.Error("other variants should not be affected by clearing")
	}
}

func TestStoreGamesStats(t *testing.T) {
	store := openTestStore(t)
	store.SaveScore("puyo", 100, 1)
	store.SaveScore("puyo", 300, 4)
	store.SaveScore("puyo_3", 50, 0)

	stats, err := store.GetAllGamesStats()
	if err != nil {
		t.Fatalf("GetAllGamesStats() failed: %v", err)
	}
	st := stats["puyo"]
	if st == nil {
		t.Fatal("missing stats for puyo")
	}
	if st.GamesCount != 2 || st.HighScore != 300 || st.BestChain != 4 || st.AvgScore != 200 {
		t.Errorf("stats = %+v", *st)
	}
	if _, ok := stats["puyo_3"]; !ok {
		t.Error("missing stats for puyo_3")
	}
}

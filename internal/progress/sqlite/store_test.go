package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"history-trivia/internal/progress"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestLoadWithoutRecord(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load(context.Background())
	if !errors.Is(err, progress.ErrNoProgress) {
		t.Fatalf("error = %v, want ErrNoProgress", err)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := progress.NewUserProgress()
	record.Level = 4
	record.Experience = 300
	record.TotalPoints = 2500
	record.Streak = 7
	record.LastPlayDate = "2026-08-26"
	record.UnlockedFigures = []string{"curie", "goya"}
	record.Badges = []string{"beginner", "streak_7"}
	record.Statistics.TotalQuestions = 120
	record.Statistics.CorrectAnswers = 90
	record.Statistics.AccuracyRate = 75
	record.Statistics.Categories["scientist"] = progress.CategoryStat{Total: 40, Correct: 35}

	if err := store.Save(ctx, record); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Level != 4 || loaded.Experience != 300 || loaded.Streak != 7 {
		t.Fatalf("loaded = %+v", loaded)
	}
	if len(loaded.UnlockedFigures) != 2 || loaded.UnlockedFigures[0] != "curie" {
		t.Fatalf("figures = %v", loaded.UnlockedFigures)
	}
	if loaded.Statistics.Categories["scientist"].Correct != 35 {
		t.Fatalf("categories = %+v", loaded.Statistics.Categories)
	}
}

func TestSaveReplacesDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := progress.NewUserProgress()
	first.TotalPoints = 10
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	second := progress.NewUserProgress()
	second.TotalPoints = 999
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.TotalPoints != 999 {
		t.Fatalf("total points = %d, want 999 (single-row replace)", loaded.TotalPoints)
	}
}

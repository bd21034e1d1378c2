package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"keylay/internal/model"
)

func TestInsertAndListRuns(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(filepath.Join(dir, "keylay.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	base := time.Unix(0, 0).UTC()
	for i := 0; i < 3; i++ {
		run := model.RunRecord{
			At:               base.Add(time.Duration(i) * time.Minute),
			Layout:           "QWERTY",
			Mode:             "simulate",
			Source:           "text",
			Lines:            1,
			Chars:            10 + i,
			Skipped:          i,
			Distance:         float64(i) * 1.5,
			AlternationRatio: 0.5,
			DurationMs:       int64(i) * 100,
			WPM:              40 + float64(i),
		}
		if _, err := st.InsertRun(ctx, run); err != nil {
			t.Fatalf("insert run %d: %v", i, err)
		}
	}

	runs, err := st.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	// Newest first.
	if runs[0].Chars != 12 || runs[1].Chars != 11 {
		t.Fatalf("unexpected order: %+v", runs)
	}
	if !runs[0].At.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("unexpected timestamp: %v", runs[0].At)
	}

	all, err := st.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list all runs: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
}

func TestListRunsEmpty(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "keylay.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	runs, err := st.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected no runs, got %d", len(runs))
	}
}

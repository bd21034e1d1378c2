// Package store handles SQLite persistence of run history.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"keylay/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for run records.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			at TEXT NOT NULL,
			layout TEXT NOT NULL,
			mode TEXT NOT NULL,
			source TEXT NOT NULL,
			lines INTEGER NOT NULL,
			chars INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			distance REAL NOT NULL,
			alternation REAL NOT NULL,
			duration_ms INTEGER NOT NULL,
			wpm REAL NOT NULL,
			best_line TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_at ON runs(at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a completed run.
func (s *Store) InsertRun(ctx context.Context, run model.RunRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (at, layout, mode, source, lines, chars, skipped, distance, alternation, duration_ms, wpm, best_line)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.At.Format(time.RFC3339Nano),
		run.Layout,
		run.Mode,
		run.Source,
		run.Lines,
		run.Chars,
		run.Skipped,
		run.Distance,
		run.AlternationRatio,
		run.DurationMs,
		run.WPM,
		run.BestLine,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListRuns returns the most recent runs, newest first. A limit of 0
// returns everything.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error) {
	query := `SELECT id, at, layout, mode, source, lines, chars, skipped, distance, alternation, duration_ms, wpm, best_line
		FROM runs
		ORDER BY at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunRecord
	for rows.Next() {
		var run model.RunRecord
		var at string
		if err := rows.Scan(&run.ID, &at, &run.Layout, &run.Mode, &run.Source, &run.Lines, &run.Chars,
			&run.Skipped, &run.Distance, &run.AlternationRatio, &run.DurationMs, &run.WPM, &run.BestLine); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, err
		}
		run.At = parsed
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

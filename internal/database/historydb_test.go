package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/waveload/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// createTestRun stores a run and returns it with its ID set.
func createTestRun(t *testing.T, db *HistoryDB, target string) *model.Run {
	t.Helper()

	run := &model.Run{
		Target:    target,
		PoolSize:  5,
		Interval:  time.Second,
		StartedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := db.CreateRun(context.Background(), run); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	return run
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "missing")
		_, err := Open(dbDir, Options{CreateIfNotExists: false})
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "database not found") {
			t.Errorf("unexpected error %q", err.Error())
		}
		if _, statErr := os.Stat(dbDir); !os.IsNotExist(statErr) {
			t.Error("directory should not have been created")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		db1, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		run := createTestRun(t, db1, "http://example.com")
		_ = db1.Close()

		db2, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db2.Close()

		got, err := db2.GetRun(context.Background(), run.ID)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.Target != "http://example.com" {
			t.Errorf("unexpected target %q", got.Target)
		}
	})
}

func TestHistoryDB_Runs(t *testing.T) {
	t.Parallel()

	t.Run("create and get round trip", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		run := createTestRun(t, db, "http://example.com")

		if run.ID == 0 {
			t.Fatal("expected run ID to be set")
		}

		got, err := db.GetRun(context.Background(), run.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.PoolSize != 5 || got.Interval != time.Second {
			t.Errorf("unexpected run %+v", got)
		}
		if !got.StartedAt.Equal(run.StartedAt) {
			t.Errorf("expected StartedAt %v, got %v", run.StartedAt, got.StartedAt)
		}
		if got.Finished() {
			t.Error("expected run to be unfinished")
		}
	})

	t.Run("finish run stores end time and waves", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		run := createTestRun(t, db, "http://example.com")

		run.FinishedAt = run.StartedAt.Add(time.Minute)
		run.Waves = 42
		if err := db.FinishRun(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := db.GetRun(context.Background(), run.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Waves != 42 {
			t.Errorf("expected 42 waves, got %d", got.Waves)
		}
		if got.Duration() != time.Minute {
			t.Errorf("expected 1m duration, got %v", got.Duration())
		}
	})

	t.Run("finish unknown run returns ErrRunNotFound", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		err := db.FinishRun(context.Background(), &model.Run{ID: 999, FinishedAt: time.Now()})
		if !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("get unknown run returns ErrRunNotFound", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		_, err := db.GetRun(context.Background(), 999)
		if !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("list runs newest first with limit", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		createTestRun(t, db, "http://a")
		createTestRun(t, db, "http://b")
		createTestRun(t, db, "http://c")

		runs, err := db.ListRuns(context.Background(), 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(runs))
		}
		if runs[0].Target != "http://c" || runs[1].Target != "http://b" {
			t.Errorf("unexpected order: %s, %s", runs[0].Target, runs[1].Target)
		}

		all, err := db.ListRuns(context.Background(), 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 runs, got %d", len(all))
		}
	})
}

func TestHistoryDB_Waves(t *testing.T) {
	t.Parallel()

	t.Run("insert and list in order", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		run := createTestRun(t, db, "http://example.com")
		ctx := context.Background()

		for _, n := range []int{2, 1, 3} {
			w := model.Wave{
				RunID:      run.ID,
				Number:     n,
				Dispatched: 4,
				StartedAt:  run.StartedAt.Add(time.Duration(n) * time.Second),
				Elapsed:    time.Duration(n) * 10 * time.Millisecond,
			}
			if err := db.InsertWave(ctx, w); err != nil {
				t.Fatalf("failed to insert wave %d: %v", n, err)
			}
		}

		waves, err := db.ListWaves(ctx, run.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(waves) != 3 {
			t.Fatalf("expected 3 waves, got %d", len(waves))
		}
		for i, w := range waves {
			if w.Number != i+1 {
				t.Errorf("position %d: expected wave %d, got %d", i, i+1, w.Number)
			}
		}
		if waves[2].Elapsed != 30*time.Millisecond {
			t.Errorf("expected 30ms, got %v", waves[2].Elapsed)
		}

		got, err := db.GetRun(ctx, run.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Waves != 3 {
			t.Errorf("expected run wave count 3, got %d", got.Waves)
		}
	})

	t.Run("duplicate wave number is rejected", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		run := createTestRun(t, db, "http://example.com")
		ctx := context.Background()

		w := model.Wave{RunID: run.ID, Number: 1, StartedAt: time.Now()}
		if err := db.InsertWave(ctx, w); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := db.InsertWave(ctx, w); err == nil {
			t.Error("expected error for duplicate wave")
		}
	})

	t.Run("wave for unknown run returns ErrRunNotFound", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		err := db.InsertWave(context.Background(), model.Wave{RunID: 12345, Number: 1, StartedAt: time.Now()})
		if !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	t.Run("records finished waves under its run", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		run := createTestRun(t, db, "http://example.com")

		rec := NewRecorder(db, run.ID, nil)
		ctx := context.Background()
		rec.WaveStarted(ctx, 1, 4)
		rec.WaveFinished(ctx, model.Wave{Number: 1, Dispatched: 4, StartedAt: time.Now()})

		waves, err := db.ListWaves(ctx, run.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(waves) != 1 || waves[0].RunID != run.ID {
			t.Errorf("unexpected waves %+v", waves)
		}
	})

	t.Run("records even when context is cancelled", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		run := createTestRun(t, db, "http://example.com")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		NewRecorder(db, run.ID, nil).WaveFinished(ctx, model.Wave{Number: 1, StartedAt: time.Now()})

		waves, err := db.ListWaves(context.Background(), run.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(waves) != 1 {
			t.Errorf("expected 1 wave, got %d", len(waves))
		}
	})

	t.Run("write failure is logged not returned", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		NewRecorder(db, 777, logger).WaveFinished(context.Background(), model.Wave{Number: 1, StartedAt: time.Now()})

		if !strings.Contains(buf.String(), "failed to record wave") {
			t.Errorf("expected warning, got %q", buf.String())
		}
	})
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  time.Time
	}{
		{input: "2025-03-01T12:00:00.5Z", want: time.Date(2025, 3, 1, 12, 0, 0, 500000000, time.UTC)},
		{input: "2025-03-01T12:00:00Z", want: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		{input: "2025-03-01 12:00:00", want: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		{input: "garbage", want: time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := parseTimestamp(tt.input); !got.Equal(tt.want) {
				t.Errorf("parseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/waveload/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "waveload.db"

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// HistoryDB stores runs and waves in SQLite.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so history can be read while a
	// run is writing.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	dsn := dbPath + "?mode=rwc&_pragma=busy_timeout(5000)"
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	} else {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
		dsn = dbPath + "?mode=rw&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		target TEXT NOT NULL,
		pool_size INTEGER NOT NULL,
		interval_ns INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		waves INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_target ON runs(target);

	CREATE TABLE IF NOT EXISTS waves (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		number INTEGER NOT NULL,
		dispatched INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		elapsed_ns INTEGER NOT NULL,
		UNIQUE(run_id, number)
	);

	CREATE INDEX IF NOT EXISTS idx_waves_run ON waves(run_id);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// CreateRun inserts run and sets its ID.
func (h *HistoryDB) CreateRun(ctx context.Context, run *model.Run) error {
	result, err := h.db.ExecContext(ctx,
		`INSERT INTO runs (target, pool_size, interval_ns, started_at) VALUES (?, ?, ?, ?)`,
		run.Target,
		run.PoolSize,
		int64(run.Interval),
		formatTimestamp(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read run id: %w", err)
	}
	run.ID = id
	return nil
}

// FinishRun stores the end time and wave count of a run.
func (h *HistoryDB) FinishRun(ctx context.Context, run *model.Run) error {
	result, err := h.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, waves = ? WHERE id = ?`,
		formatTimestamp(run.FinishedAt),
		run.Waves,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}

// InsertWave stores a completed wave and bumps the run's wave count.
func (h *HistoryDB) InsertWave(ctx context.Context, wave model.Wave) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO waves (run_id, number, dispatched, started_at, elapsed_ns) VALUES (?, ?, ?, ?, ?)`,
		wave.RunID,
		wave.Number,
		wave.Dispatched,
		formatTimestamp(wave.StartedAt),
		int64(wave.Elapsed),
	); err != nil {
		return fmt.Errorf("failed to insert wave: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE runs SET waves = MAX(waves, ?) WHERE id = ?`, wave.Number, wave.RunID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrRunNotFound
	}

	return tx.Commit()
}

// GetRun retrieves a run by ID.
func (h *HistoryDB) GetRun(ctx context.Context, id int64) (*model.Run, error) {
	row := h.db.QueryRowContext(ctx,
		`SELECT id, target, pool_size, interval_ns, started_at, finished_at, waves FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns runs newest first. A limit of zero returns all runs.
func (h *HistoryDB) ListRuns(ctx context.Context, limit int) ([]*model.Run, error) {
	query := `SELECT id, target, pool_size, interval_ns, started_at, finished_at, waves FROM runs ORDER BY id DESC`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListWaves returns the waves of a run in order.
func (h *HistoryDB) ListWaves(ctx context.Context, runID int64) ([]model.Wave, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT run_id, number, dispatched, started_at, elapsed_ns FROM waves WHERE run_id = ? ORDER BY number`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list waves: %w", err)
	}
	defer rows.Close()

	var waves []model.Wave
	for rows.Next() {
		var (
			w         model.Wave
			startedAt string
			elapsedNs int64
		)
		if err := rows.Scan(&w.RunID, &w.Number, &w.Dispatched, &startedAt, &elapsedNs); err != nil {
			return nil, fmt.Errorf("failed to scan wave: %w", err)
		}
		w.StartedAt = parseTimestamp(startedAt)
		w.Elapsed = time.Duration(elapsedNs)
		waves = append(waves, w)
	}
	return waves, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (*model.Run, error) {
	var (
		run        model.Run
		intervalNs int64
		startedAt  string
		finishedAt sql.NullString
	)
	if err := s.Scan(&run.ID, &run.Target, &run.PoolSize, &intervalNs, &startedAt, &finishedAt, &run.Waves); err != nil {
		return nil, err
	}
	run.Interval = time.Duration(intervalNs)
	run.StartedAt = parseTimestamp(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTimestamp(finishedAt.String)
	}
	return &run, nil
}

// Timestamps are stored as RFC 3339 with nanoseconds in UTC so they sort
// lexically and round-trip without loss.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampFormats lists formats accepted when reading, newest first.
// Older rows may carry SQLite's default datetime format.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseTimestamp parses s with the known formats; zero time on failure.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

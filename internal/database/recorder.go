package database

import (
	"context"
	"log/slog"

	"github.com/nao1215/waveload/internal/model"
)

// Recorder writes completed waves of one run to the history database.
// It implements driver.Observer. Write failures are logged and dropped so
// a broken history store never interrupts the load.
type Recorder struct {
	db     *HistoryDB
	runID  int64
	logger *slog.Logger
}

// NewRecorder creates a Recorder for a run already stored with CreateRun.
func NewRecorder(db *HistoryDB, runID int64, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{db: db, runID: runID, logger: logger}
}

// WaveStarted implements driver.Observer. Nothing is stored until the wave
// has drained.
func (r *Recorder) WaveStarted(context.Context, int, int) {}

// WaveFinished implements driver.Observer.
func (r *Recorder) WaveFinished(ctx context.Context, w model.Wave) {
	w.RunID = r.runID
	// A wave that drained is recorded even if the run is being cancelled.
	if err := r.db.InsertWave(context.WithoutCancel(ctx), w); err != nil {
		r.logger.Warn("failed to record wave", "run", r.runID, "wave", w.Number, "error", err)
	}
}

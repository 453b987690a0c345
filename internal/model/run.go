package model

import (
	"time"
)

// Run describes one invocation of the load driver.
// A Run is created when the driver starts and finished when it stops,
// whether by cancellation or by reaching MaxWaves.
type Run struct {
	// ID is the database identifier. Zero until the run is persisted.
	ID int64 `json:"id"`

	// Target is the URL under load.
	Target string `json:"target"`

	// PoolSize is the worker pool size of every wave.
	PoolSize int `json:"pool_size"`

	// Interval is the sleep between waves.
	Interval time.Duration `json:"interval"`

	// StartedAt is when the first wave was about to be dispatched.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the driver returned. Zero while the run is active.
	FinishedAt time.Time `json:"finished_at,omitzero"`

	// Waves is the number of waves that completed.
	Waves int `json:"waves"`
}

// NewRun creates a Run for the given target and pool parameters.
func NewRun(target string, poolSize int, interval time.Duration) *Run {
	return &Run{
		Target:    target,
		PoolSize:  poolSize,
		Interval:  interval,
		StartedAt: time.Now(),
	}
}

// Finished reports whether the run has ended.
func (r *Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Duration returns the wall time of the run.
// For an active run this is the time elapsed so far.
func (r *Run) Duration() time.Duration {
	if r.StartedAt.IsZero() {
		return 0
	}
	if r.Finished() {
		return r.FinishedAt.Sub(r.StartedAt)
	}
	return time.Since(r.StartedAt)
}

// Dispatched returns the total number of requests sent over the run,
// assuming every wave dispatched PoolSize-1 requests.
func (r *Run) Dispatched() int {
	return r.Waves * WaveRequests(r.PoolSize)
}

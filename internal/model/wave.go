package model

import "time"

// Wave is one iteration of the load loop.
// It records when the wave ran and how many requests it dispatched.
// Request outcomes are not part of a Wave: the driver never inspects them.
type Wave struct {
	// RunID links the wave to its Run. Zero when history is disabled.
	RunID int64 `json:"run_id"`

	// Number is the 1-based wave counter.
	Number int `json:"number"`

	// Dispatched is the number of requests submitted in this wave.
	Dispatched int `json:"dispatched"`

	// StartedAt is when dispatch began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the time from dispatch until the pool drained.
	Elapsed time.Duration `json:"elapsed"`
}

// WaveRequests returns how many requests a wave dispatches for a pool of
// the given size. One slot of the pool stays unused, so a pool of N sends
// N-1 requests. Pools smaller than 2 send nothing.
func WaveRequests(poolSize int) int {
	if poolSize < 2 {
		return 0
	}
	return poolSize - 1
}

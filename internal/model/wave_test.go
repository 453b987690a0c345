package model

import (
	"testing"
	"time"
)

func TestWaveRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		poolSize int
		want     int
	}{
		{name: "zero pool sends nothing", poolSize: 0, want: 0},
		{name: "single slot sends nothing", poolSize: 1, want: 0},
		{name: "pool of two sends one", poolSize: 2, want: 1},
		{name: "pool of five sends four", poolSize: 5, want: 4},
		{name: "pool of 1000 sends 999", poolSize: 1000, want: 999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := WaveRequests(tt.poolSize); got != tt.want {
				t.Errorf("WaveRequests(%d) = %d, want %d", tt.poolSize, got, tt.want)
			}
		})
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("new run is active", func(t *testing.T) {
		t.Parallel()
		r := NewRun("http://example.com", 10, time.Second)
		if r.Finished() {
			t.Error("expected new run to be active")
		}
		if r.StartedAt.IsZero() {
			t.Error("expected StartedAt to be set")
		}
	})

	t.Run("duration of finished run", func(t *testing.T) {
		t.Parallel()
		start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		r := &Run{StartedAt: start, FinishedAt: start.Add(90 * time.Second)}
		if got := r.Duration(); got != 90*time.Second {
			t.Errorf("expected 90s, got %v", got)
		}
	})

	t.Run("zero start has zero duration", func(t *testing.T) {
		t.Parallel()
		r := &Run{}
		if got := r.Duration(); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})

	t.Run("dispatched counts pool minus one per wave", func(t *testing.T) {
		t.Parallel()
		r := &Run{PoolSize: 5, Waves: 3}
		if got := r.Dispatched(); got != 12 {
			t.Errorf("expected 12, got %d", got)
		}
	})
}

package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/waveload/internal/model"
)

// createTestRun returns a finished run with three waves.
func createTestRun() (*model.Run, []model.Wave) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	run := &model.Run{
		ID:         7,
		Target:     "http://lb.example.com",
		PoolSize:   1000,
		Interval:   time.Second,
		StartedAt:  start,
		FinishedAt: start.Add(5 * time.Second),
		Waves:      3,
	}
	waves := []model.Wave{
		{RunID: 7, Number: 1, Dispatched: 999, StartedAt: start, Elapsed: 100 * time.Millisecond},
		{RunID: 7, Number: 2, Dispatched: 999, StartedAt: start.Add(2 * time.Second), Elapsed: 300 * time.Millisecond},
		{RunID: 7, Number: 3, Dispatched: 999, StartedAt: start.Add(4 * time.Second), Elapsed: 200 * time.Millisecond},
	}
	return run, waves
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	t.Run("empty waves", func(t *testing.T) {
		t.Parallel()
		s := Summarize(nil)
		if s.Count != 0 || s.Mean != 0 {
			t.Errorf("expected zero stats, got %+v", s)
		}
	})

	t.Run("min mean max", func(t *testing.T) {
		t.Parallel()
		_, waves := createTestRun()
		s := Summarize(waves)
		if s.Count != 3 {
			t.Errorf("expected count 3, got %d", s.Count)
		}
		if s.Dispatched != 2997 {
			t.Errorf("expected 2997 dispatched, got %d", s.Dispatched)
		}
		if s.Min != 100*time.Millisecond {
			t.Errorf("expected min 100ms, got %v", s.Min)
		}
		if s.Max != 300*time.Millisecond {
			t.Errorf("expected max 300ms, got %v", s.Max)
		}
		if s.Mean != 200*time.Millisecond {
			t.Errorf("expected mean 200ms, got %v", s.Mean)
		}
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format  Format
		wantErr bool
	}{
		{format: "", wantErr: false},
		{format: FormatText, wantErr: false},
		{format: FormatMarkdown, wantErr: false},
		{format: FormatJSON, wantErr: false},
		{format: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			t.Parallel()
			_, err := New(tt.format, &bytes.Buffer{})
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
		})
	}
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("runs table with grouped counts", func(t *testing.T) {
		t.Parallel()
		run, _ := createTestRun()

		var buf bytes.Buffer
		if err := NewSimpleWriter(&buf).WriteRuns([]*model.Run{run}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{"ID", "TARGET", "http://lb.example.com", "1,000", "2,997", "finished"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
	})

	t.Run("no runs", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := NewSimpleWriter(&buf).WriteRuns(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No runs recorded") {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("run detail", func(t *testing.T) {
		t.Parallel()
		run, waves := createTestRun()

		var buf bytes.Buffer
		if err := NewSimpleWriter(&buf).WriteRun(run, waves); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{"Run 7", "999 requests per wave", "min 100ms / mean 200ms / max 300ms", "WAVE", "ELAPSED"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
	})

	t.Run("run without waves omits wave table", func(t *testing.T) {
		t.Parallel()
		run, _ := createTestRun()
		run.FinishedAt = time.Time{}

		var buf bytes.Buffer
		if err := NewSimpleWriter(&buf).WriteRun(run, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()
		if strings.Contains(out, "WAVE") {
			t.Errorf("expected no wave table, got:\n%s", out)
		}
		if !strings.Contains(out, "running") {
			t.Errorf("expected running status, got:\n%s", out)
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("runs table", func(t *testing.T) {
		t.Parallel()
		run, _ := createTestRun()

		var buf bytes.Buffer
		if err := NewMarkdownWriter(&buf).WriteRuns([]*model.Run{run}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{"# waveload history", "Started", "`http://lb.example.com`", "2997"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
	})

	t.Run("run detail", func(t *testing.T) {
		t.Parallel()
		run, waves := createTestRun()

		var buf bytes.Buffer
		if err := NewMarkdownWriter(&buf).WriteRun(run, waves); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{"# Run 7", "## Wave timing", "## Waves", "300ms"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
	})

	t.Run("run without waves", func(t *testing.T) {
		t.Parallel()
		run, _ := createTestRun()

		var buf bytes.Buffer
		if err := NewMarkdownWriter(&buf).WriteRun(run, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No waves recorded") {
			t.Errorf("unexpected output:\n%s", buf.String())
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("runs array", func(t *testing.T) {
		t.Parallel()
		run, _ := createTestRun()

		var buf bytes.Buffer
		if err := NewJSONWriter(&buf).WriteRuns([]*model.Run{run}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got []model.Run
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(got) != 1 || got[0].Target != run.Target {
			t.Errorf("unexpected runs %+v", got)
		}
	})

	t.Run("nil runs encode as empty array", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := NewJSONWriter(&buf).WriteRuns(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.TrimSpace(buf.String()) != "[]" {
			t.Errorf("expected [], got %q", buf.String())
		}
	})

	t.Run("run detail pretty printed", func(t *testing.T) {
		t.Parallel()
		run, waves := createTestRun()

		var buf bytes.Buffer
		if err := NewJSONWriter(&buf, WithPrettyPrint()).WriteRun(run, waves); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"run\"") {
			t.Errorf("expected indented output, got:\n%s", buf.String())
		}

		var got struct {
			Waves []model.Wave `json:"waves"`
		}
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(got.Waves) != 3 {
			t.Errorf("expected 3 waves, got %d", len(got.Waves))
		}
	})
}

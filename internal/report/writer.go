package report

import (
	"fmt"
	"io"
	"time"

	"github.com/nao1215/waveload/internal/model"
)

// Writer renders run history.
type Writer interface {
	// WriteRuns renders a list of runs, newest first.
	WriteRuns(runs []*model.Run) error

	// WriteRun renders a single run with its waves.
	WriteRun(run *model.Run, waves []model.Wave) error
}

// Format selects a Writer implementation.
type Format string

const (
	// FormatText is the default terminal format.
	FormatText Format = "text"
	// FormatMarkdown renders Markdown.
	FormatMarkdown Format = "markdown"
	// FormatJSON renders JSON.
	FormatJSON Format = "json"
)

// New returns the Writer for format.
func New(format Format, output io.Writer) (Writer, error) {
	switch format {
	case FormatText, "":
		return NewSimpleWriter(output), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// WaveStats summarizes wave durations of a run.
type WaveStats struct {
	Count      int
	Dispatched int
	Min        time.Duration
	Max        time.Duration
	Mean       time.Duration
}

// Summarize computes WaveStats for waves.
func Summarize(waves []model.Wave) WaveStats {
	var s WaveStats
	if len(waves) == 0 {
		return s
	}

	var total time.Duration
	s.Min = waves[0].Elapsed
	for _, w := range waves {
		s.Count++
		s.Dispatched += w.Dispatched
		total += w.Elapsed
		if w.Elapsed < s.Min {
			s.Min = w.Elapsed
		}
		if w.Elapsed > s.Max {
			s.Max = w.Elapsed
		}
	}
	s.Mean = total / time.Duration(s.Count)
	return s
}

// runStatus returns a short status label.
func runStatus(run *model.Run) string {
	if run.Finished() {
		return "finished"
	}
	return "running"
}

const timeLayout = "2006-01-02 15:04:05 MST"

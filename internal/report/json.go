package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/waveload/internal/model"
)

// JSONWriter renders history as JSON.
type JSONWriter struct {
	output io.Writer
	indent string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint indents output with two spaces.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to output.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{output: output}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// runDetail is the JSON shape of WriteRun.
type runDetail struct {
	Run   *model.Run   `json:"run"`
	Waves []model.Wave `json:"waves"`
}

// WriteRuns implements Writer.
func (w *JSONWriter) WriteRuns(runs []*model.Run) error {
	if runs == nil {
		runs = []*model.Run{}
	}
	return w.encode(runs)
}

// WriteRun implements Writer.
func (w *JSONWriter) WriteRun(run *model.Run, waves []model.Wave) error {
	if waves == nil {
		waves = []model.Wave{}
	}
	return w.encode(runDetail{Run: run, Waves: waves})
}

func (w *JSONWriter) encode(v any) error {
	enc := json.NewEncoder(w.output)
	if w.indent != "" {
		enc.SetIndent("", w.indent)
	}
	return enc.Encode(v)
}

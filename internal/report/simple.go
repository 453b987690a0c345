package report

import (
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/nao1215/waveload/internal/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SimpleWriter renders history as aligned text.
// Large counts are printed with digit grouping (999,000) via x/text.
type SimpleWriter struct {
	output  io.Writer
	printer *message.Printer
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithLanguage sets the language used for number formatting.
func WithLanguage(tag language.Tag) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.printer = message.NewPrinter(tag)
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to output.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		output:  output,
		printer: message.NewPrinter(language.English),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteRuns implements Writer.
func (w *SimpleWriter) WriteRuns(runs []*model.Run) error {
	if len(runs) == 0 {
		_, err := io.WriteString(w.output, "No runs recorded.\n")
		return err
	}

	tw := tabwriter.NewWriter(w.output, 0, 0, 2, ' ', 0)
	w.printer.Fprintf(tw, "ID\tSTARTED\tTARGET\tPOOL\tWAVES\tREQUESTS\tDURATION\tSTATUS\n")
	for _, r := range runs {
		w.printer.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			r.ID,
			r.StartedAt.Local().Format(timeLayout),
			r.Target,
			r.PoolSize,
			r.Waves,
			r.Dispatched(),
			r.Duration().Round(time.Second),
			runStatus(r),
		)
	}
	return tw.Flush()
}

// WriteRun implements Writer.
func (w *SimpleWriter) WriteRun(run *model.Run, waves []model.Wave) error {
	var sb strings.Builder
	stats := Summarize(waves)

	sb.WriteString(strings.Repeat("=", 60) + "\n")
	w.printer.Fprintf(&sb, "Run %d: %s\n", run.ID, run.Target)
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	w.printer.Fprintf(&sb, "Started:   %s\n", run.StartedAt.Local().Format(timeLayout))
	w.printer.Fprintf(&sb, "Status:    %s\n", runStatus(run))
	w.printer.Fprintf(&sb, "Pool:      %d (%d requests per wave)\n", run.PoolSize, model.WaveRequests(run.PoolSize))
	w.printer.Fprintf(&sb, "Interval:  %s\n", run.Interval)
	w.printer.Fprintf(&sb, "Waves:     %d\n", stats.Count)
	w.printer.Fprintf(&sb, "Requests:  %d\n", stats.Dispatched)
	if stats.Count > 0 {
		w.printer.Fprintf(&sb, "Wave time: min %s / mean %s / max %s\n",
			stats.Min.Round(time.Millisecond),
			stats.Mean.Round(time.Millisecond),
			stats.Max.Round(time.Millisecond),
		)
	}

	if _, err := io.WriteString(w.output, sb.String()); err != nil {
		return err
	}
	if len(waves) == 0 {
		return nil
	}

	if _, err := io.WriteString(w.output, "\n"); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w.output, 0, 0, 2, ' ', 0)
	w.printer.Fprintf(tw, "WAVE\tSTARTED\tREQUESTS\tELAPSED\n")
	for _, wv := range waves {
		w.printer.Fprintf(tw, "%d\t%s\t%d\t%s\n",
			wv.Number,
			wv.StartedAt.Local().Format("15:04:05.000"),
			wv.Dispatched,
			wv.Elapsed.Round(time.Millisecond),
		)
	}
	return tw.Flush()
}

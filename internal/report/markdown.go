package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/waveload/internal/model"
)

// MarkdownWriter renders history as GitHub Flavored Markdown.
type MarkdownWriter struct {
	output io.Writer
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to output.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

// WriteRuns implements Writer.
func (w *MarkdownWriter) WriteRuns(runs []*model.Run) error {
	md := markdown.NewMarkdown(w.output)
	md.H1("waveload history")
	md.PlainText("")

	if len(runs) == 0 {
		md.Note("No runs recorded.")
		return md.Build()
	}

	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			strconv.FormatInt(r.ID, 10),
			r.StartedAt.Local().Format(timeLayout),
			"`" + r.Target + "`",
			strconv.Itoa(r.PoolSize),
			strconv.Itoa(r.Waves),
			strconv.Itoa(r.Dispatched()),
			r.Duration().Round(time.Second).String(),
			runStatus(r),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Started", "Target", "Pool", "Waves", "Requests", "Duration", "Status"},
		Rows:   rows,
	})
	return md.Build()
}

// WriteRun implements Writer.
func (w *MarkdownWriter) WriteRun(run *model.Run, waves []model.Wave) error {
	md := markdown.NewMarkdown(w.output)
	stats := Summarize(waves)

	md.H1("Run " + strconv.FormatInt(run.ID, 10))
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", "`" + run.Target + "`"},
			{"Started", run.StartedAt.Local().Format(timeLayout)},
			{"Status", runStatus(run)},
			{"Pool", strconv.Itoa(run.PoolSize)},
			{"Requests per wave", strconv.Itoa(model.WaveRequests(run.PoolSize))},
			{"Interval", run.Interval.String()},
			{"Waves", strconv.Itoa(stats.Count)},
			{"Requests", strconv.Itoa(stats.Dispatched)},
		},
	})
	md.PlainText("")

	if stats.Count == 0 {
		md.Note("No waves recorded for this run.")
		return md.Build()
	}

	md.H2("Wave timing")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Min", "Mean", "Max"},
		Rows: [][]string{{
			stats.Min.Round(time.Millisecond).String(),
			stats.Mean.Round(time.Millisecond).String(),
			stats.Max.Round(time.Millisecond).String(),
		}},
	})
	md.PlainText("")

	md.H2("Waves")
	md.PlainText("")
	rows := make([][]string, len(waves))
	for i, wv := range waves {
		rows[i] = []string{
			strconv.Itoa(wv.Number),
			wv.StartedAt.Local().Format("15:04:05.000"),
			strconv.Itoa(wv.Dispatched),
			wv.Elapsed.Round(time.Millisecond).String(),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Wave", "Started", "Requests", "Elapsed"},
		Rows:   rows,
	})
	return md.Build()
}

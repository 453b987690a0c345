package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/waveload/internal/config"
	"github.com/nao1215/waveload/internal/database"
	"github.com/nao1215/waveload/internal/report"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is the number of runs listed when --limit is not set.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
// It reads run and wave records written by "waveload run".
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded load runs",
		Long: `History lists load runs stored in the local history database.

Each run records its target, pool size, interval, and the timing of every
completed wave. Request outcomes are never recorded.

Examples:
  # List the 20 most recent runs
  waveload history

  # Show the waves of run 3
  waveload history --run 3

  # Output in Markdown or JSON
  waveload history --markdown
  waveload history --run 3 --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64P("run", "r", 0, "Show the waves of this run ID")
	cmd.Flags().IntP("limit", "l", defaultHistoryLimit, "Maximum number of runs to list")
	cmd.Flags().BoolP("json", "j", false, "Output in JSON format")
	cmd.Flags().BoolP("markdown", "m", false, "Output in Markdown format")
	cmd.Flags().String("db-dir", "", "History database directory (default: XDG data directory)")
	_ = cmd.Flags().MarkHidden("db-dir")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	runID, err := flags.GetInt64("run")
	if err != nil {
		return err
	}
	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}
	format, err := historyFormat(cmd)
	if err != nil {
		return err
	}
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	w, err := report.New(format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if runID == 0 {
		runs, err := db.ListRuns(ctx, limit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		return w.WriteRuns(runs)
	}

	run, err := db.GetRun(ctx, runID)
	if err != nil {
		if errors.Is(err, database.ErrRunNotFound) {
			return fmt.Errorf("run %d not found (use 'waveload history' to list runs)", runID)
		}
		return err
	}
	waves, err := db.ListWaves(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to list waves: %w", err)
	}
	return w.WriteRun(run, waves)
}

func historyFormat(cmd *cobra.Command) (report.Format, error) {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return "", err
	}
	asMarkdown, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return "", err
	}
	switch {
	case asJSON:
		return report.FormatJSON, nil
	case asMarkdown:
		return report.FormatMarkdown, nil
	default:
		return report.FormatText, nil
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for waveload.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "waveload",
		Short: "Naive concurrent HTTP load generator",
		Long: `waveload sends waves of concurrent HTTP GET requests to a single target.

Each wave dispatches pool-1 requests through a worker pool of the given size,
waits for all of them, sleeps for the interval, and starts the next wave.
Responses and errors are ignored: the goal is load, not verification.

The dns command updates a Route 53 CNAME so a stable name points at the
load balancer under test.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewDNSCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

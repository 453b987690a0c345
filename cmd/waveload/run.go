package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nao1215/waveload/internal/config"
	"github.com/nao1215/waveload/internal/database"
	"github.com/nao1215/waveload/internal/driver"
	"github.com/nao1215/waveload/internal/log"
	"github.com/nao1215/waveload/internal/metrics"
	"github.com/nao1215/waveload/internal/model"
	"github.com/nao1215/waveload/internal/transport"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [url]",
		Short: "Send waves of concurrent GET requests to a target",
		Long: `Run sends waves of concurrent HTTP GET requests to the target until interrupted.

Before each wave it prints "<pool> requests <wave>". A wave dispatches pool-1
requests, never more than pool at once, and waits for all of them before
sleeping for the interval. Responses and errors are ignored.

Examples:
  # 1000-slot pool, one wave per second, until Ctrl+C
  waveload run http://my-lb.ap-southeast-1.elb.amazonaws.com

  # Smaller waves, faster, stop after 60 waves
  waveload run -n 50 -i 200ms -w 60 http://localhost:8080/

  # Use the "staging" profile from .waveload
  waveload run -p staging

  # Expose Prometheus metrics while running
  waveload run -M :9090 http://localhost:8080/

Configuration file (.waveload) example:
  defaults:
    pool: 1000
    interval: 1s
  profiles:
    staging:
      target: http://staging-lb.example.com
      headers:
        X-Load-Test: "true"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRunCmd,
	}

	cmd.Flags().IntP("pool", "n", config.DefaultPoolSize,
		"Worker pool size; each wave sends pool-1 requests")
	cmd.Flags().DurationP("interval", "i", config.DefaultInterval,
		"Sleep between waves")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Per-request timeout")
	cmd.Flags().IntP("max-waves", "w", 0,
		"Stop after this many waves (0 runs until interrupted)")
	cmd.Flags().StringP("proxy", "x", "",
		"Send requests through a SOCKS5 proxy (host:port)")
	cmd.Flags().StringP("metrics-addr", "M", "",
		"Serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().StringP("profile", "p", "",
		"Profile name from the configuration file")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .waveload in current or home directory)")
	cmd.Flags().Bool("no-history", false,
		"Do not record the run in the history database")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildRunConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.New(os.Stderr, log.Options{Verbose: cfg.Verbose})
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, stopping after current wave...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runLoad(ctx, cfg, cmd.OutOrStdout(), logger)
}

// buildRunConfig creates a Config from defaults, the profile file, and flags,
// in increasing order of precedence.
func buildRunConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.Profile, err = flags.GetString("profile"); err != nil {
		return nil, err
	}

	file, err := config.Load(cfg.ConfigFilePath)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
		}
		return nil, fmt.Errorf("failed to load configuration file: %w", err)
	}
	profile, err := file.GetProfile(cfg.Profile)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, cfg.Profile)
	}
	cfg.ApplyProfile(profile)

	if flags.Changed("pool") {
		if cfg.PoolSize, err = flags.GetInt("pool"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("interval") {
		if cfg.Interval, err = flags.GetDuration("interval"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("max-waves") {
		if cfg.MaxWaves, err = flags.GetInt("max-waves"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if cfg.MetricsAddress, err = flags.GetString("metrics-addr"); err != nil {
		return nil, err
	}

	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveHistory = !noHistory

	if len(args) > 0 {
		cfg.Target = args[0]
	}
	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// runLoad wires the driver to its transport and observers and runs it.
// Cancellation is the normal way to stop and is not reported as an error.
func runLoad(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	client, err := transport.NewClient(transport.Options{
		Timeout:      cfg.Timeout,
		PoolSize:     cfg.PoolSize,
		ProxyAddress: cfg.ProxyAddress,
		UserAgent:    cfg.UserAgent,
		Headers:      cfg.Headers,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}

	opts := []driver.Option{
		driver.WithOutput(out),
		driver.WithLogger(logger),
	}

	if cfg.MetricsAddress != "" {
		collector := metrics.NewCollector(cfg.Target, cfg.PoolSize)
		if err := collector.Serve(ctx, cfg.MetricsAddress, logger); err != nil {
			return err
		}
		opts = append(opts, driver.WithObserver(collector))
	}

	run := model.NewRun(cfg.Target, cfg.PoolSize, cfg.Interval)

	if cfg.SaveHistory {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()

		if err := db.CreateRun(ctx, run); err != nil {
			return err
		}
		logger.Info("recording run", "id", run.ID, "db", db.Path())
		opts = append(opts, driver.WithObserver(database.NewRecorder(db, run.ID, logger)))

		defer func() {
			if err := db.FinishRun(context.WithoutCancel(ctx), run); err != nil {
				logger.Warn("failed to finish run record", "id", run.ID, "error", err)
			}
		}()
	}

	d, err := driver.New(driver.Params{
		Target:   cfg.Target,
		PoolSize: cfg.PoolSize,
		Interval: cfg.Interval,
		MaxWaves: cfg.MaxWaves,
	}, client, opts...)
	if err != nil {
		return err
	}

	waves, err := d.Run(ctx)
	run.Waves = waves
	run.FinishedAt = time.Now()

	logger.Info("load driver stopped", "waves", waves, "elapsed", run.Duration())

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

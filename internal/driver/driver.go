package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/nao1215/waveload/internal/model"
	"golang.org/x/sync/errgroup"
)

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Observer is notified around each wave. It sees wave numbers and timing
// only, never request outcomes. Observers are called from the coordinating
// goroutine and must not block for long.
type Observer interface {
	// WaveStarted is called right before a wave is dispatched.
	WaveStarted(ctx context.Context, number, dispatched int)

	// WaveFinished is called once every request of the wave has returned.
	WaveFinished(ctx context.Context, wave model.Wave)
}

// Params is the immutable input of a run.
type Params struct {
	// Target is the URL every request is sent to.
	Target string

	// PoolSize caps concurrent requests; a wave sends PoolSize-1.
	PoolSize int

	// Interval is the sleep after each wave.
	Interval time.Duration

	// MaxWaves stops the run after this many waves. Zero means no limit.
	MaxWaves int
}

// Driver runs waves of requests against a target.
type Driver struct {
	params    Params
	client    Doer
	out       io.Writer
	logger    *slog.Logger
	observers []Observer
	sleep     func(ctx context.Context, d time.Duration) error
}

// Option configures a Driver.
type Option func(*Driver)

// WithOutput sets where wave lines are printed. Default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(d *Driver) {
		d.out = w
	}
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

// WithObserver adds an observer. Observers are notified in the order added.
func WithObserver(o Observer) Option {
	return func(d *Driver) {
		if o != nil {
			d.observers = append(d.observers, o)
		}
	}
}

// ErrInvalidParams is returned by New when Params cannot drive a run.
var ErrInvalidParams = errors.New("invalid driver parameters")

// New creates a Driver. client is typically built by the transport package.
func New(params Params, client Doer, opts ...Option) (*Driver, error) {
	if params.Target == "" {
		return nil, fmt.Errorf("%w: empty target", ErrInvalidParams)
	}
	if params.PoolSize <= 0 {
		return nil, fmt.Errorf("%w: pool size must be positive", ErrInvalidParams)
	}
	if params.Interval < 0 {
		return nil, fmt.Errorf("%w: interval must be non-negative", ErrInvalidParams)
	}
	if params.MaxWaves < 0 {
		return nil, fmt.Errorf("%w: max waves must be non-negative", ErrInvalidParams)
	}
	if client == nil {
		client = http.DefaultClient
	}

	d := &Driver{
		params: params,
		client: client,
		out:    os.Stdout,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d, nil
}

// Run drives waves until ctx is cancelled or MaxWaves is reached.
// It returns the number of completed waves, and ctx.Err() if it stopped
// because of cancellation. Request failures never end the run.
func (d *Driver) Run(ctx context.Context) (int, error) {
	dispatched := model.WaveRequests(d.params.PoolSize)

	d.logger.Info("starting load driver",
		"target", d.params.Target,
		"pool", d.params.PoolSize,
		"interval", d.params.Interval,
		"maxWaves", d.params.MaxWaves,
	)

	completed := 0
	for wave := 1; ; wave++ {
		if err := ctx.Err(); err != nil {
			return completed, err
		}

		fmt.Fprintf(d.out, "%d requests %d\n", d.params.PoolSize, wave)
		for _, o := range d.observers {
			o.WaveStarted(ctx, wave, dispatched)
		}

		started := time.Now()
		d.runWave(ctx, dispatched)
		elapsed := time.Since(started)

		d.logger.Debug("wave drained", "wave", wave, "dispatched", dispatched, "elapsed", elapsed)

		// A wave cut short by cancellation is not reported as finished.
		if err := ctx.Err(); err != nil {
			return completed, err
		}
		completed = wave

		w := model.Wave{
			Number:     wave,
			Dispatched: dispatched,
			StartedAt:  started,
			Elapsed:    elapsed,
		}
		for _, o := range d.observers {
			o.WaveFinished(ctx, w)
		}

		if d.params.MaxWaves > 0 && wave >= d.params.MaxWaves {
			d.logger.Info("wave limit reached", "waves", wave)
			return completed, nil
		}

		if err := d.sleep(ctx, d.params.Interval); err != nil {
			return completed, err
		}
	}
}

// runWave dispatches n requests through a pool capped at PoolSize and
// returns once all of them have finished. The pool lives for this wave only.
func (d *Driver) runWave(ctx context.Context, n int) {
	var g errgroup.Group
	g.SetLimit(d.params.PoolSize)

	for range n {
		g.Go(func() error {
			d.send(ctx)
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // workers never return an error
}

// send issues one GET and discards the outcome.
func (d *Driver) send(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.params.Target, nil)
	if err != nil {
		return
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return
	}
	// Drain so the connection goes back to the pool for the next wave.
	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // outcome is ignored
	_ = resp.Body.Close()                 //nolint:errcheck // outcome is ignored
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/nao1215/waveload/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "waveload"

// Collector records wave metrics into its own registry.
type Collector struct {
	registry   *prometheus.Registry
	waves      prometheus.Counter
	dispatched prometheus.Counter
	current    prometheus.Gauge
	active     prometheus.Gauge
	duration   prometheus.Histogram
}

// NewCollector creates a Collector labelled with the target and pool size.
func NewCollector(target string, poolSize int) *Collector {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{
		"target": target,
		"pool":   fmt.Sprint(poolSize),
	}
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		waves: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "waves_total",
			Help:        "Number of completed waves.",
			ConstLabels: labels,
		}),
		dispatched: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "requests_dispatched_total",
			Help:        "Number of requests dispatched by completed and running waves.",
			ConstLabels: labels,
		}),
		current: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "wave_number",
			Help:        "Number of the wave most recently started.",
			ConstLabels: labels,
		}),
		active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "wave_active",
			Help:        "1 while a wave is dispatching, 0 while sleeping.",
			ConstLabels: labels,
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "wave_duration_seconds",
			Help:        "Time from wave dispatch until every request returned.",
			ConstLabels: labels,
			Buckets:     []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}

// WaveStarted implements driver.Observer.
func (c *Collector) WaveStarted(_ context.Context, number, dispatched int) {
	c.current.Set(float64(number))
	c.active.Set(1)
	c.dispatched.Add(float64(dispatched))
}

// WaveFinished implements driver.Observer.
func (c *Collector) WaveFinished(_ context.Context, w model.Wave) {
	c.active.Set(0)
	c.waves.Inc()
	c.duration.Observe(w.Elapsed.Seconds())
}

// Registry returns the registry the collector writes to.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an http.Handler serving the collector's metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
// The listener is bound before Serve returns, so a bad address fails fast.
func (c *Collector) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown failed", "error", err)
		}
	}()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()

	logger.Info("serving metrics", "addr", ln.Addr().String())
	return nil
}

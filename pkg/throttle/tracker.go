package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for throttle tracking.
var (
	throttleCurrentlyAvailable = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "feed_throttle_currently_available",
		Help: "Query cost currently available in the remote throttle bucket",
	})

	throttleWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feed_throttle_waits_total",
		Help: "Total number of requests held back because the throttle bucket was low",
	})

	throttleWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "feed_throttle_wait_seconds",
		Help:    "Time requests were held back waiting for the throttle bucket to restore",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})
)

// Config holds tracker configuration.
type Config struct {
	// Shop scopes the stored state.
	Shop string

	// MinAvailable is the bucket level below which requests wait.
	MinAvailable float64

	// MaxStale is the age after which stored state is ignored.
	MaxStale time.Duration

	// MaxWait caps a single wait.
	MaxWait time.Duration
}

// DefaultConfig returns the default tracker configuration for a shop.
func DefaultConfig(shop string) Config {
	return Config{
		Shop:         shop,
		MinAvailable: DefaultMinAvailable,
		MaxStale:     DefaultMaxStale,
		MaxWait:      DefaultMaxWait,
	}
}

// Tracker monitors the throttle bucket and gates requests.
type Tracker struct {
	store  Store
	config Config
	logger zerolog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewTracker creates a new throttle tracker.
func NewTracker(store Store, cfg Config, logger zerolog.Logger) *Tracker {
	if cfg.MinAvailable <= 0 {
		cfg.MinAvailable = DefaultMinAvailable
	}
	if cfg.MaxStale <= 0 {
		cfg.MaxStale = DefaultMaxStale
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = DefaultMaxWait
	}

	return &Tracker{
		store:  store,
		config: cfg,
		logger: logger,
		sleep:  sleepContext,
	}
}

// GetState returns the stored state, or nil when nothing was recorded yet.
func (t *Tracker) GetState(ctx context.Context) (*State, error) {
	state, err := t.store.Get(ctx, Key(t.config.Shop))
	if err != nil {
		return nil, fmt.Errorf("get throttle state: %w", err)
	}
	return state, nil
}

// Update records the bucket reported by the latest response.
func (t *Tracker) Update(ctx context.Context, status Status) error {
	state := &State{
		Status:     status,
		LastUpdate: time.Now(),
	}

	if err := t.store.Set(ctx, Key(t.config.Shop), state); err != nil {
		return fmt.Errorf("update throttle state: %w", err)
	}

	throttleCurrentlyAvailable.Set(status.CurrentlyAvailable)

	t.logger.Debug().
		Float64("currently_available", status.CurrentlyAvailable).
		Float64("maximum_available", status.MaximumAvailable).
		Float64("restore_rate", status.RestoreRate).
		Msg("Throttle state updated")

	return nil
}

// Wait blocks until the bucket is expected to hold at least MinAvailable.
// It returns immediately when no fresh state is known.
func (t *Tracker) Wait(ctx context.Context) error {
	state, err := t.GetState(ctx)
	if err != nil {
		return err
	}
	if state == nil || state.IsStale(t.config.MaxStale) {
		return nil
	}

	wait := state.TimeUntilAvailable(t.config.MinAvailable, t.config.MaxWait)
	if wait <= 0 {
		return nil
	}

	t.logger.Warn().
		Float64("currently_available", state.CurrentlyAvailable).
		Dur("wait", wait).
		Msg("Throttle bucket low - waiting for restore")

	throttleWaitsTotal.Inc()
	throttleWaitSeconds.Observe(wait.Seconds())

	return t.sleep(ctx, wait)
}

// SetSleepFunc replaces the sleep used by Wait (for testing).
func (t *Tracker) SetSleepFunc(fn func(ctx context.Context, d time.Duration) error) {
	t.sleep = fn
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

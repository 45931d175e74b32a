package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for fetch and retry operations.
var (
	fetchRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feed_fetch_retries_total",
		Help: "Total number of fetch retries after a throttling signal",
	})

	fetchBackoffSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "feed_fetch_backoff_seconds",
		Help:    "Backoff duration before a fetch retry",
		Buckets: []float64{1, 2, 4, 8, 16, 32},
	})

	fetchRetryExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feed_fetch_retry_exhausted_total",
		Help: "Total number of fetches that stayed throttled through all attempts",
	})

	fetchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_fetch_errors_total",
		Help: "Total fetch failures by error class",
	}, []string{"error_class"})
)

// RetryConfig holds the configuration for retry logic.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the initial request).
	MaxAttempts int

	// BaseDelay is multiplied by 2^attempt to get the wait after a failed attempt.
	BaseDelay time.Duration
}

// DefaultRetryConfig returns the default retry configuration: three
// attempts, waiting 2s then 4s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
	}
}

// Backoff returns the wait after the given failed attempt (1-based).
func (c RetryConfig) Backoff(attempt int) time.Duration {
	return c.BaseDelay * time.Duration(1<<attempt)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Fetcher issues queries through an Executor, retrying throttled calls with
// exponential backoff. It is the only place that separates transient
// failures from fatal ones.
type Fetcher struct {
	exec   Executor
	config RetryConfig
	sleep  SleepFunc
	logger zerolog.Logger
}

// NewFetcher creates a fetcher over exec.
func NewFetcher(exec Executor, cfg RetryConfig) *Fetcher {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Fetcher{
		exec:   exec,
		config: cfg,
		sleep:  sleepContext,
		logger: log.With().Str("component", "fetcher").Logger(),
	}
}

// SetSleepFunc replaces the backoff sleep (for testing).
func (f *Fetcher) SetSleepFunc(fn SleepFunc) {
	f.sleep = fn
}

// Execute runs query and returns a response without GraphQL errors.
// A response carrying an error list fails immediately with *QueryError.
// Throttling signals are retried until MaxAttempts is reached, after which
// the last error is returned wrapped in ErrRetryExhausted.
func (f *Fetcher) Execute(ctx context.Context, query string, variables map[string]any) (*Response, error) {
	var lastErr error

	for attempt := 1; attempt <= f.config.MaxAttempts; attempt++ {
		resp, err := f.exec.Execute(ctx, query, variables)
		if err == nil {
			if len(resp.Errors) > 0 {
				fetchErrorsTotal.WithLabelValues(string(ErrorClassQuery)).Inc()
				return nil, &QueryError{Errors: resp.Errors}
			}
			if attempt > 1 {
				f.logger.Info().
					Int("attempt", attempt).
					Msg("Fetch succeeded after retry")
			}
			return resp, nil
		}

		lastErr = err
		errClass := Classify(err)

		if !shouldRetry(errClass) {
			fetchErrorsTotal.WithLabelValues(string(errClass)).Inc()
			return nil, err
		}

		// Last attempt, don't wait
		if attempt >= f.config.MaxAttempts {
			break
		}

		wait := f.config.Backoff(attempt)
		fetchRetriesTotal.Inc()
		fetchBackoffSeconds.Observe(wait.Seconds())

		f.logger.Warn().
			Err(err).
			Str("error_class", string(errClass)).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("Throttled - retrying after backoff")

		if err := f.sleep(ctx, wait); err != nil {
			f.logger.Warn().
				Int("attempt", attempt).
				Msg("Context cancelled during retry backoff")
			return nil, fmt.Errorf("%w: %v", ErrContextCancelled, err)
		}
	}

	fetchRetryExhaustedTotal.Inc()
	fetchErrorsTotal.WithLabelValues(string(ErrorClassThrottled)).Inc()
	f.logger.Error().
		Err(lastErr).
		Int("max_attempts", f.config.MaxAttempts).
		Msg("Retry attempts exhausted")

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, f.config.MaxAttempts, lastErr)
}

// Query executes query and decodes its data object into out.
func (f *Fetcher) Query(ctx context.Context, query string, variables map[string]any, out any) error {
	resp, err := f.Execute(ctx, query, variables)
	if err != nil {
		return err
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return fmt.Errorf("graphql response has no data")
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("decode graphql data: %w", err)
	}
	return nil
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

package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultFileName is the name a document is stored under unless configured.
const DefaultFileName = "shopify-tweakwise-feed.xml"

// Builder produces the feed content of one run. *Generator implements it.
type Builder interface {
	Generate(ctx context.Context) (*Feed, error)
}

// Sink stores a rendered document and returns the URL it is retrievable at.
type Sink interface {
	Store(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// Result describes a finished run.
type Result struct {
	RunID      string        `json:"run_id"`
	URL        string        `json:"xmlUrl"`
	Categories int           `json:"categories"`
	Items      int           `json:"items"`
	Bytes      int           `json:"bytes"`
	Duration   time.Duration `json:"duration"`
}

// Job generates a feed, renders it and hands it to a sink.
type Job struct {
	builder  Builder
	sink     Sink
	fileName string
	logger   zerolog.Logger
}

// NewJob creates a job. An empty fileName uses DefaultFileName.
func NewJob(builder Builder, sink Sink, fileName string) *Job {
	if fileName == "" {
		fileName = DefaultFileName
	}
	return &Job{
		builder:  builder,
		sink:     sink,
		fileName: fileName,
		logger:   log.With().Str("component", "feed").Logger(),
	}
}

// FileName returns the name documents are stored under.
func (j *Job) FileName() string {
	return j.fileName
}

// Run executes one feed run.
func (j *Job) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	logger := j.logger.With().Str("run_id", runID).Logger()
	startTime := time.Now()

	logger.Info().Msg("Feed run started")

	result, err := j.run(ctx, runID)
	duration := time.Since(startTime)
	RunDuration.Observe(duration.Seconds())

	if err != nil {
		RunsTotal.WithLabelValues("failed").Inc()
		logger.Error().
			Err(err).
			Dur("duration", duration).
			Msg("Feed run failed")
		return nil, err
	}

	result.Duration = duration
	RunsTotal.WithLabelValues("success").Inc()
	logger.Info().
		Str("url", result.URL).
		Int("categories", result.Categories).
		Int("items", result.Items).
		Int("bytes", result.Bytes).
		Dur("duration", duration).
		Msg("Feed run completed")

	return result, nil
}

func (j *Job) run(ctx context.Context, runID string) (*Result, error) {
	f, err := j.builder.Generate(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate feed: %w", err)
	}

	data, err := f.Render()
	if err != nil {
		return nil, fmt.Errorf("render feed: %w", err)
	}
	DocumentBytes.Set(float64(len(data)))

	url, err := j.sink.Store(ctx, j.fileName, data, ContentType)
	if err != nil {
		return nil, fmt.Errorf("store feed: %w", err)
	}

	return &Result{
		RunID:      runID,
		URL:        url,
		Categories: len(f.Categories),
		Items:      len(f.Items),
		Bytes:      len(data),
	}, nil
}

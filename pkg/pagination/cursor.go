package pagination

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/ratelimit"
)

// Prometheus metrics for pagination.
var (
	pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feed_pages_fetched_total",
		Help: "Total number of connection pages fetched",
	})

	recordsFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feed_records_fetched_total",
		Help: "Total number of records yielded by paginated fetches",
	})
)

// ErrConsumed is yielded when a sequence is ranged over a second time.
var ErrConsumed = errors.New("pagination sequence already consumed")

// PageInfo is the pageInfo object of a connection.
type PageInfo struct {
	HasNextPage bool `json:"hasNextPage"`
}

// Edge is one record of a connection with its pagination cursor.
type Edge[T any] struct {
	Cursor string `json:"cursor"`
	Node   T      `json:"node"`
}

// Connection is one page of a GraphQL connection.
type Connection[T any] struct {
	Edges    []Edge[T] `json:"edges"`
	PageInfo PageInfo  `json:"pageInfo"`
}

// Nodes returns the records of the page in order.
func (c Connection[T]) Nodes() []T {
	nodes := make([]T, 0, len(c.Edges))
	for _, edge := range c.Edges {
		nodes = append(nodes, edge.Node)
	}
	return nodes
}

// NextCursor returns the cursor for the following page and whether one
// should be requested. A missing last cursor ends pagination even when the
// page claims more data.
func (c Connection[T]) NextCursor() (string, bool) {
	if !c.PageInfo.HasNextPage || len(c.Edges) == 0 {
		return "", false
	}
	cursor := c.Edges[len(c.Edges)-1].Cursor
	return cursor, cursor != ""
}

// PageFunc fetches the page after cursor; cursor is nil for the first page.
type PageFunc[T any] func(ctx context.Context, cursor *string) (*Connection[T], error)

// Config holds paginator configuration.
type Config struct {
	// PageDelay is the minimum spacing between page requests.
	// Recommendation: 200-500ms to stay under the Admin API rate limit.
	PageDelay time.Duration
}

// DefaultConfig returns the default paginator configuration.
func DefaultConfig() Config {
	return Config{
		PageDelay: 300 * time.Millisecond,
	}
}

// Paginator spaces page requests of every sequence it drives.
type Paginator struct {
	limiter ratelimit.Limiter
	logger  zerolog.Logger
}

// New creates a paginator. A PageDelay of zero disables spacing.
func New(cfg Config) *Paginator {
	limiter := ratelimit.NewUnlimited()
	if cfg.PageDelay > 0 {
		limiter = ratelimit.New(1, ratelimit.Per(cfg.PageDelay), ratelimit.WithoutSlack)
	}
	return NewWithLimiter(limiter)
}

// NewWithLimiter creates a paginator around an existing limiter.
func NewWithLimiter(limiter ratelimit.Limiter) *Paginator {
	return &Paginator{
		limiter: limiter,
		logger:  log.With().Str("component", "paginator").Logger(),
	}
}

// Take blocks until the next request may be issued. Requests that are not
// part of a paginated sequence call it to share the same spacing.
func (p *Paginator) Take() {
	p.limiter.Take()
}

// All returns the lazy sequence of records of every page fetched by fetch.
func All[T any](ctx context.Context, p *Paginator, fetch PageFunc[T]) iter.Seq2[T, error] {
	consumed := false

	return func(yield func(T, error) bool) {
		var zero T
		if consumed {
			yield(zero, ErrConsumed)
			return
		}
		consumed = true

		var cursor *string
		for page := 1; ; page++ {
			if err := ctx.Err(); err != nil {
				yield(zero, err)
				return
			}

			p.Take()

			conn, err := fetch(ctx, cursor)
			if err != nil {
				yield(zero, err)
				return
			}
			pagesFetchedTotal.Inc()

			p.logger.Debug().
				Int("page", page).
				Int("edges", len(conn.Edges)).
				Bool("has_next_page", conn.PageInfo.HasNextPage).
				Msg("Page fetched")

			for _, edge := range conn.Edges {
				recordsFetchedTotal.Inc()
				if !yield(edge.Node, nil) {
					return
				}
			}

			next, ok := conn.NextCursor()
			if !ok {
				return
			}
			cursor = &next
		}
	}
}

// Collect drains seq into a slice, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Package client provides the GraphQL Admin API transport and the
// rate-limited fetcher every feed query goes through.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Sternrassler/tweakwise-feed/pkg/throttle"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"resty.dev/v3"
)

// Prometheus metrics for GraphQL transport operations.
var (
	graphqlRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_graphql_requests_total",
		Help: "Total GraphQL requests by outcome",
	}, []string{"status"})

	graphqlRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "feed_graphql_request_duration_seconds",
		Help:    "GraphQL request duration in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	})
)

// throttledCode is the extensions.code the API uses for a throttled query.
const throttledCode = "THROTTLED"

// Executor runs one parameterized GraphQL query.
type Executor interface {
	Execute(ctx context.Context, query string, variables map[string]any) (*Response, error)
}

// Response is a decoded GraphQL response envelope.
type Response struct {
	Data       json.RawMessage `json:"data"`
	Errors     []GraphQLError  `json:"errors,omitempty"`
	Extensions *Extensions     `json:"extensions,omitempty"`
}

// Extensions carries the response's cost report.
type Extensions struct {
	Cost *Cost `json:"cost,omitempty"`
}

// Cost is the query cost report of one response.
type Cost struct {
	RequestedQueryCost float64         `json:"requestedQueryCost"`
	ActualQueryCost    *float64        `json:"actualQueryCost"`
	ThrottleStatus     throttle.Status `json:"throttleStatus"`
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// Config holds the transport configuration.
type Config struct {
	// ShopDomain is the shop's admin domain, e.g. "demo.myshopify.com".
	ShopDomain string

	// AccessToken is sent as X-Shopify-Access-Token.
	AccessToken string

	// APIVersion selects the Admin API version, e.g. "2024-10".
	APIVersion string

	// BaseURL overrides https://{ShopDomain} (for testing).
	BaseURL string

	// Timeout bounds a single HTTP request.
	Timeout time.Duration

	// Throttle, when set, gates requests on the reported bucket.
	Throttle *throttle.Tracker
}

// DefaultConfig returns a default transport configuration.
func DefaultConfig(shopDomain, accessToken string) Config {
	return Config{
		ShopDomain:  shopDomain,
		AccessToken: accessToken,
		APIVersion:  "2024-10",
		Timeout:     30 * time.Second,
	}
}

// Client is the GraphQL Admin API transport.
type Client struct {
	http     *resty.Client
	endpoint string
	throttle *throttle.Tracker
	logger   zerolog.Logger
}

// New creates a new GraphQL client.
func New(cfg Config) (*Client, error) {
	if cfg.ShopDomain == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("shop domain is required")
	}
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("access token is required")
	}
	if cfg.APIVersion == "" {
		return nil, fmt.Errorf("api version is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://" + cfg.ShopDomain
	}
	baseURL = strings.TrimRight(baseURL, "/")

	httpClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("X-Shopify-Access-Token", cfg.AccessToken).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:     httpClient,
		endpoint: fmt.Sprintf("%s/admin/api/%s/graphql.json", baseURL, cfg.APIVersion),
		throttle: cfg.Throttle,
		logger:   log.With().Str("component", "graphql-client").Logger(),
	}, nil
}

// Execute performs one GraphQL request. A throttling signal (HTTP 429 or a
// THROTTLED error code) is returned as *ThrottledError. Any other GraphQL
// error list is returned inside the Response for the caller to reject.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any) (*Response, error) {
	if c.throttle != nil {
		if err := c.throttle.Wait(ctx); err != nil {
			return nil, fmt.Errorf("throttle wait: %w", err)
		}
	}

	startTime := time.Now()
	defer func() {
		graphqlRequestDuration.Observe(time.Since(startTime).Seconds())
	}()

	var out Response
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(graphqlRequest{Query: query, Variables: variables}).
		SetResult(&out).
		Post(c.endpoint)
	if err != nil {
		graphqlRequestsTotal.WithLabelValues("network_error").Inc()
		return nil, fmt.Errorf("graphql request: %w", err)
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		graphqlRequestsTotal.WithLabelValues("throttled").Inc()
		return nil, &ThrottledError{StatusCode: resp.StatusCode(), Message: resp.Status()}
	}

	if resp.IsError() {
		graphqlRequestsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode())).Inc()
		c.logger.Warn().
			Int("status", resp.StatusCode()).
			Msg("GraphQL endpoint error")
		return nil, &APIError{StatusCode: resp.StatusCode(), Message: resp.Status()}
	}

	c.recordCost(ctx, out.Extensions)

	for _, gqlErr := range out.Errors {
		if gqlErr.Code() == throttledCode {
			graphqlRequestsTotal.WithLabelValues("throttled").Inc()
			return nil, &ThrottledError{Message: gqlErr.Message}
		}
	}

	if len(out.Errors) > 0 {
		graphqlRequestsTotal.WithLabelValues("query_error").Inc()
	} else {
		graphqlRequestsTotal.WithLabelValues("ok").Inc()
	}

	c.logger.Debug().
		Int("status", resp.StatusCode()).
		Int("errors", len(out.Errors)).
		Msg("GraphQL request executed")

	return &out, nil
}

func (c *Client) recordCost(ctx context.Context, ext *Extensions) {
	if c.throttle == nil || ext == nil || ext.Cost == nil {
		return
	}
	if err := c.throttle.Update(ctx, ext.Cost.ThrottleStatus); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to update throttle state")
	}
}

// Close releases the underlying HTTP resources.
func (c *Client) Close() error {
	return c.http.Close()
}

// Package app wires configuration into a runnable feed job.
package app

import (
	"context"
	"fmt"

	"github.com/Sternrassler/tweakwise-feed/internal/config"
	"github.com/Sternrassler/tweakwise-feed/pkg/client"
	"github.com/Sternrassler/tweakwise-feed/pkg/feed"
	"github.com/Sternrassler/tweakwise-feed/pkg/markets"
	"github.com/Sternrassler/tweakwise-feed/pkg/pagination"
	"github.com/Sternrassler/tweakwise-feed/pkg/shopify"
	"github.com/Sternrassler/tweakwise-feed/pkg/sink"
	"github.com/Sternrassler/tweakwise-feed/pkg/throttle"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Sink stores documents and serves them back.
type Sink interface {
	feed.Sink
	sink.Reader
}

// App holds the long-lived components of one configured shop.
type App struct {
	Job    *feed.Job
	Sink   Sink
	Redis  *redis.Client
	client *client.Client
	logger zerolog.Logger
}

// New builds the component graph for cfg. A Redis connection is opened and
// pinged only when the sink or the throttle store needs one.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	a := &App{logger: log.With().Str("component", "app").Logger()}

	if cfg.UsesRedis() {
		a.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			a.Redis.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		a.logger.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
	}

	shop := cfg.Shop.Domain
	if shop == "" {
		shop = cfg.Shop.BaseURL
	}

	trackerCfg := throttle.DefaultConfig(shop)
	trackerCfg.MinAvailable = cfg.Throttle.MinAvailable

	var store throttle.Store = throttle.NewMemoryStore()
	if cfg.Throttle.Store == config.StoreRedis {
		store = throttle.NewRedisStore(a.Redis, trackerCfg.MaxStale)
	}
	tracker := throttle.NewTracker(store, trackerCfg, log.With().Str("component", "throttle").Logger())

	clientCfg := client.DefaultConfig(cfg.Shop.Domain, cfg.Shop.AccessToken)
	clientCfg.APIVersion = cfg.Shop.APIVersion
	clientCfg.BaseURL = cfg.Shop.BaseURL
	clientCfg.Timeout = cfg.Shop.Timeout
	clientCfg.Throttle = tracker

	c, err := client.New(clientCfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create graphql client: %w", err)
	}
	a.client = c

	fetcher := client.NewFetcher(c, client.RetryConfig{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
	})
	pages := pagination.New(pagination.Config{PageDelay: cfg.Feed.PageDelay})
	source := shopify.NewSource(fetcher, pages, cfg.Feed.PageSize)

	switch cfg.Feed.Sink {
	case config.SinkRedis:
		a.Sink = sink.NewRedisSink(a.Redis, shop, cfg.Feed.TTL)
	default:
		a.Sink = sink.NewFileSink(cfg.Feed.OutputDir, cfg.Feed.PublicPrefix)
	}

	generator := feed.NewGenerator(markets.NewResolver(source), source)
	a.Job = feed.NewJob(generator, a.Sink, cfg.Feed.FileName)

	a.logger.Debug().
		Str("shop", shop).
		Str("sink", cfg.Feed.Sink).
		Str("throttle_store", cfg.Throttle.Store).
		Msg("Feed job configured")

	return a, nil
}

// Close releases the transport and the Redis connection.
func (a *App) Close() error {
	if a.client != nil {
		a.client.Close()
	}
	if a.Redis != nil {
		return a.Redis.Close()
	}
	return nil
}

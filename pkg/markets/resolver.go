// Package markets resolves the shop's markets and the locales each one sells in.
package markets

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sternrassler/tweakwise-feed/pkg/catalog"
	"github.com/Sternrassler/tweakwise-feed/pkg/shopify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Source is the subset of *shopify.Source the resolver reads.
type Source interface {
	PrimaryDomainURL(ctx context.Context) (string, error)
	Markets(ctx context.Context) ([]shopify.MarketNode, error)
	WebPresence(ctx context.Context, marketID string) (*shopify.WebPresence, error)
}

// Resolver turns remote markets into catalog markets with derived ids.
type Resolver struct {
	source Source
	logger zerolog.Logger
}

// NewResolver creates a resolver over source.
func NewResolver(source Source) *Resolver {
	return &Resolver{
		source: source,
		logger: log.With().Str("component", "markets").Logger(),
	}
}

// Resolve lists every market with its default locale first. A market
// without a web presence is returned with no locales. Any query failure
// aborts resolution.
func (r *Resolver) Resolve(ctx context.Context) ([]catalog.Market, error) {
	nodes, err := r.source.Markets(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve markets: %w", err)
	}

	markets := make([]catalog.Market, 0, len(nodes))
	for _, node := range nodes {
		wp, err := r.source.WebPresence(ctx, node.ID)
		if err != nil {
			return nil, fmt.Errorf("resolve locales of market %q: %w", node.Name, err)
		}

		market := catalog.Market{
			ID:       catalog.MarketShortID(node.ID),
			RemoteID: node.ID,
			Name:     node.Name,
		}
		for _, l := range wp.Locales() {
			market.Locales = append(market.Locales, catalog.Locale{
				ID:   catalog.LocaleID(market.ID, l.Locale),
				Tag:  l.Locale,
				Name: l.Name,
			})
		}

		if wp == nil {
			r.logger.Warn().
				Str("market", market.ID).
				Msg("Market has no web presence, skipping its locales")
		}

		r.logger.Debug().
			Str("market", market.ID).
			Int("locales", len(market.Locales)).
			Msg("Market resolved")

		markets = append(markets, market)
	}

	r.logger.Info().Int("count", len(markets)).Msg("Markets resolved")
	return markets, nil
}

// BaseURL returns the primary domain URL without a trailing slash.
func (r *Resolver) BaseURL(ctx context.Context) (string, error) {
	url, err := r.source.PrimaryDomainURL(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve base url: %w", err)
	}
	return strings.TrimRight(url, "/"), nil
}

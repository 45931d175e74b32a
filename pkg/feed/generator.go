package feed

import (
	"context"
	"fmt"
	"iter"
	"strconv"

	"github.com/Sternrassler/tweakwise-feed/pkg/catalog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// MarketResolver resolves the markets of a run and the shared base URL.
// *markets.Resolver implements it.
type MarketResolver interface {
	Resolve(ctx context.Context) ([]catalog.Market, error)
	BaseURL(ctx context.Context) (string, error)
}

// CatalogSource enumerates the localized collections and products of the shop.
// *shopify.Source implements it.
type CatalogSource interface {
	Collections(ctx context.Context, locale string) iter.Seq2[catalog.Collection, error]
	Products(ctx context.Context, locale string) iter.Seq2[catalog.Product, error]
}

// Generator builds the feed of every market and locale. Market/locale pairs
// are processed one at a time; the first error aborts the run.
type Generator struct {
	resolver MarketResolver
	source   CatalogSource
	logger   zerolog.Logger
}

// NewGenerator creates a generator.
func NewGenerator(resolver MarketResolver, source CatalogSource) *Generator {
	return &Generator{
		resolver: resolver,
		source:   source,
		logger:   log.With().Str("component", "feed").Logger(),
	}
}

// Generate resolves markets, then builds the category tree, then the items.
func (g *Generator) Generate(ctx context.Context) (*Feed, error) {
	markets, err := g.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	baseURL, err := g.resolver.BaseURL(ctx)
	if err != nil {
		return nil, err
	}

	categories, err := g.buildCategories(ctx, baseURL, markets)
	if err != nil {
		return nil, err
	}

	items, err := g.buildItems(ctx, baseURL, markets)
	if err != nil {
		return nil, err
	}

	return &Feed{Categories: categories, Items: items}, nil
}

func (g *Generator) buildCategories(ctx context.Context, baseURL string, markets []catalog.Market) ([]catalog.Category, error) {
	tree := NewCategoryTree(g.logger)

	for _, m := range markets {
		tree.Append(MarketCategory(m))

		for _, l := range m.Locales {
			tree.Append(LocaleCategory(m, l))

			count := 0
			for c, err := range g.source.Collections(ctx, l.Tag) {
				if err != nil {
					return nil, fmt.Errorf("categories of %s/%s: %w", m.ID, l.Tag, err)
				}
				if tree.Append(CollectionCategory(baseURL, m, l, c)) {
					count++
				}
			}

			g.logger.Info().
				Str("market", m.ID).
				Str("locale", l.Tag).
				Int("count", count).
				Msg("Collections processed")
		}
	}

	categories := tree.Build()
	for _, c := range categories {
		CategoriesGenerated.WithLabelValues(strconv.Itoa(c.Rank)).Inc()
	}
	return categories, nil
}

func (g *Generator) buildItems(ctx context.Context, baseURL string, markets []catalog.Market) ([]catalog.Item, error) {
	var items []catalog.Item

	for _, m := range markets {
		for _, l := range m.Locales {
			count := 0
			for p, err := range g.source.Products(ctx, l.Tag) {
				if err != nil {
					return nil, fmt.Errorf("items of %s/%s: %w", m.ID, l.Tag, err)
				}
				built := BuildItems(baseURL, m, l, p)
				items = append(items, built...)
				count += len(built)
			}

			ItemsGenerated.WithLabelValues(m.ID).Add(float64(count))
			g.logger.Info().
				Str("market", m.ID).
				Str("locale", l.Tag).
				Int("count", count).
				Msg("Products processed")
		}
	}

	return items, nil
}

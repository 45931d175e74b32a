package shopify

import (
	"context"
	"fmt"
	"iter"

	"github.com/Sternrassler/tweakwise-feed/pkg/catalog"
	"github.com/Sternrassler/tweakwise-feed/pkg/pagination"
)

// Querier runs one query and decodes its data object into out.
// *client.Fetcher implements it.
type Querier interface {
	Query(ctx context.Context, query string, variables map[string]any, out any) error
}

// Source reads shop content through a Querier. Every request is spaced by
// the shared paginator.
type Source struct {
	querier     Querier
	pages       *pagination.Paginator
	productPage int
}

// NewSource creates a source. A productPage below 1 uses DefaultProductsPage.
func NewSource(q Querier, pages *pagination.Paginator, productPage int) *Source {
	if productPage < 1 {
		productPage = DefaultProductsPage
	}
	return &Source{
		querier:     q,
		pages:       pages,
		productPage: productPage,
	}
}

// PrimaryDomainURL returns the URL of the shop's primary domain.
func (s *Source) PrimaryDomainURL(ctx context.Context) (string, error) {
	s.pages.Take()

	var data shopData
	if err := s.querier.Query(ctx, shopQuery, nil, &data); err != nil {
		return "", fmt.Errorf("query primary domain: %w", err)
	}
	if data.Shop.PrimaryDomain == nil || data.Shop.PrimaryDomain.URL == "" {
		return "", fmt.Errorf("shop has no primary domain")
	}
	return data.Shop.PrimaryDomain.URL, nil
}

// Markets lists up to MarketsPageSize markets.
func (s *Source) Markets(ctx context.Context) ([]MarketNode, error) {
	s.pages.Take()

	var data marketsData
	vars := map[string]any{"first": MarketsPageSize}
	if err := s.querier.Query(ctx, marketsQuery, vars, &data); err != nil {
		return nil, fmt.Errorf("query markets: %w", err)
	}
	return data.Markets.Nodes(), nil
}

// WebPresence returns the web presence of a market, or nil when the market
// has none.
func (s *Source) WebPresence(ctx context.Context, marketID string) (*WebPresence, error) {
	s.pages.Take()

	var data webPresenceData
	vars := map[string]any{"id": marketID}
	if err := s.querier.Query(ctx, webPresenceQuery, vars, &data); err != nil {
		return nil, fmt.Errorf("query web presence of %s: %w", marketID, err)
	}
	if data.Market == nil {
		return nil, nil
	}
	return data.Market.WebPresence, nil
}

// Collections returns every collection with its translations for locale.
func (s *Source) Collections(ctx context.Context, locale string) iter.Seq2[catalog.Collection, error] {
	fetch := func(ctx context.Context, cursor *string) (*pagination.Connection[collectionNode], error) {
		var data collectionsData
		vars := pageVariables(CollectionsPageSize, cursor, locale)
		if err := s.querier.Query(ctx, collectionsQuery, vars, &data); err != nil {
			return nil, fmt.Errorf("query collections (%s): %w", locale, err)
		}
		return &data.Collections, nil
	}
	return mapSeq(pagination.All(ctx, s.pages, fetch), collectionNode.toCatalog)
}

// Products returns every product with its translations for locale.
func (s *Source) Products(ctx context.Context, locale string) iter.Seq2[catalog.Product, error] {
	fetch := func(ctx context.Context, cursor *string) (*pagination.Connection[productNode], error) {
		var data productsData
		vars := pageVariables(s.productPage, cursor, locale)
		if err := s.querier.Query(ctx, productsQuery, vars, &data); err != nil {
			return nil, fmt.Errorf("query products (%s): %w", locale, err)
		}
		return &data.Products, nil
	}
	return mapSeq(pagination.All(ctx, s.pages, fetch), productNode.toCatalog)
}

func pageVariables(first int, cursor *string, locale string) map[string]any {
	vars := map[string]any{
		"first":  first,
		"locale": locale,
	}
	if cursor != nil {
		vars["cursor"] = *cursor
	}
	return vars
}

func mapSeq[From, To any](seq iter.Seq2[From, error], fn func(From) To) iter.Seq2[To, error] {
	return func(yield func(To, error) bool) {
		for v, err := range seq {
			var out To
			if err == nil {
				out = fn(v)
			}
			if !yield(out, err) {
				return
			}
		}
	}
}

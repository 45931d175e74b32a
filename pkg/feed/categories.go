package feed

import (
	"github.com/Sternrassler/tweakwise-feed/pkg/catalog"
	"github.com/rs/zerolog"
)

const rootCategoryName = "root"

// CategoryTree accumulates the category hierarchy of a run. It always
// starts with the root category and ignores ids it has already seen.
type CategoryTree struct {
	categories []catalog.Category
	seen       map[string]struct{}
	logger     zerolog.Logger
}

// NewCategoryTree creates a tree holding only the root category.
func NewCategoryTree(logger zerolog.Logger) *CategoryTree {
	t := &CategoryTree{
		seen:   make(map[string]struct{}),
		logger: logger,
	}
	t.Append(catalog.Category{
		ID:   catalog.RootCategoryID,
		Name: rootCategoryName,
		Rank: catalog.RankRoot,
	})
	return t
}

// Append adds c and reports whether it was added.
func (t *CategoryTree) Append(c catalog.Category) bool {
	if _, dup := t.seen[c.ID]; dup {
		t.logger.Warn().
			Str("category_id", c.ID).
			Msg("Duplicate category id, skipping")
		return false
	}
	t.seen[c.ID] = struct{}{}
	t.categories = append(t.categories, c)
	return true
}

// Len returns the number of categories in the tree.
func (t *CategoryTree) Len() int {
	return len(t.categories)
}

// Build returns the categories in insertion order.
func (t *CategoryTree) Build() []catalog.Category {
	return append([]catalog.Category(nil), t.categories...)
}

// MarketCategory is the rank 1 category of a market.
func MarketCategory(m catalog.Market) catalog.Category {
	return catalog.Category{
		ID:       m.ID,
		Name:     m.Name,
		Rank:     catalog.RankMarket,
		ParentID: catalog.RootCategoryID,
	}
}

// LocaleCategory is the rank 2 category of a locale within its market.
func LocaleCategory(m catalog.Market, l catalog.Locale) catalog.Category {
	return catalog.Category{
		ID:       l.ID,
		Name:     l.Name,
		Rank:     catalog.RankLocale,
		ParentID: m.ID,
	}
}

// CollectionCategory is the rank 3 category of a collection in one locale.
// Name and handle use the collection's translations.
func CollectionCategory(baseURL string, m catalog.Market, l catalog.Locale, c catalog.Collection) catalog.Category {
	handle := c.Translations.Lookup("handle", c.Handle)
	return catalog.Category{
		ID:       catalog.ScopedID(l.ID, c.RemoteID),
		Name:     c.Translations.Lookup("title", c.Title),
		URL:      BuildURL(baseURL, m, l.Tag, "/collections/"+handle),
		Rank:     catalog.RankCollection,
		ParentID: l.ID,
	}
}

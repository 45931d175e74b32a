// Package catalog defines the records a feed run is built from: markets and
// their locales, the products and collections read from the shop, and the
// categories, items and attributes written to the export document.
//
// All values are transient. They are constructed during one run and dropped
// once the document has been rendered.
package catalog

// RootCategoryID is the id of the single rank 0 category.
const RootCategoryID = "1"

// DefaultVariantTitle is the title the shop assigns to the only variant of a
// product without options. It is never appended to an item name.
const DefaultVariantTitle = "Default Title"

// Category ranks by hierarchy depth.
const (
	RankRoot       = 0
	RankMarket     = 1
	RankLocale     = 2
	RankCollection = 3
)

// Market is a merchant-configured sales region.
type Market struct {
	// ID is the short identifier derived from the remote id.
	ID string

	// RemoteID is the opaque GraphQL id (gid://shopify/Market/...).
	RemoteID string

	Name string

	// Locales lists the default locale first, then the alternates.
	Locales []Locale
}

// HasMultipleLocales reports whether URLs for this market carry a locale segment.
func (m Market) HasMultipleLocales() bool {
	return len(m.Locales) > 1
}

// Locale is a language within one market.
type Locale struct {
	// ID is the composite id {marketId}_{tag}.
	ID string

	// Tag is the locale code, e.g. "en" or "nl-BE".
	Tag string

	Name string
}

// Translations maps a canonical key to its localized value for one locale.
type Translations map[string]string

// Lookup returns the translated value for key, or fallback when no
// non-empty translation exists. A nil map always yields fallback.
func (t Translations) Lookup(key, fallback string) string {
	if v, ok := t[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Collection is a remote product collection.
type Collection struct {
	RemoteID     string
	Title        string
	Handle       string
	Translations Translations
}

// Metafield is a namespaced custom value attached to a product.
type Metafield struct {
	Namespace string
	Key       string
	Value     string
}

// ProductOption is an option definition, e.g. Size with its values.
type ProductOption struct {
	Name   string
	Values []string
}

// SelectedOption is the option value a variant was created for.
type SelectedOption struct {
	Name  string
	Value string
}

// Variant is one purchasable configuration of a product.
type Variant struct {
	RemoteID    string
	SKU         string
	Barcode     string
	DisplayName string
	Title       string
	Price       string

	// CompareAtPrice is nil when the variant has no compare-at price.
	CompareAtPrice *string

	// AvailableForSale is nil when the source did not report availability.
	AvailableForSale *bool

	// InventoryQuantity is nil when inventory is not tracked.
	InventoryQuantity *int

	ImageURL        string
	SelectedOptions []SelectedOption
}

// Product is a remote product with the fields the feed needs.
type Product struct {
	RemoteID       string
	Title          string
	Handle         string
	Vendor         string
	SEOTitle       string
	SEODescription string
	ImageURL       string

	// TotalInventory is nil when inventory is not tracked.
	TotalInventory *int

	Metafields []Metafield
	Options    []ProductOption
	Tags       []string

	CreatedAt   string
	UpdatedAt   string
	PublishedAt string

	Variants []Variant

	// CollectionIDs are the remote ids of the collections the product belongs to.
	CollectionIDs []string

	Translations Translations
}

// Category is one node of the exported category hierarchy.
type Category struct {
	ID   string
	Name string
	URL  string
	Rank int

	// ParentID is empty only for the root category.
	ParentID string
}

// Attribute is a name/value pair attached to an item.
type Attribute struct {
	Name  string
	Value string
}

// Item is one exported entry: a variant, or a product without variants.
type Item struct {
	ID          string
	GroupCode   string
	Name        string
	URL         string
	Image       string
	Brand       string
	Stock       string
	Price       string
	Attributes  []Attribute
	CategoryIDs []string
}

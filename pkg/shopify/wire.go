package shopify

import (
	"github.com/Sternrassler/tweakwise-feed/pkg/catalog"
	"github.com/Sternrassler/tweakwise-feed/pkg/pagination"
)

// translationKeyAliases maps API translation keys onto the canonical
// attribute keys the feed looks them up by.
var translationKeyAliases = map[string]string{
	"meta_title":       "seo_title",
	"meta_description": "seo_description",
}

type shopData struct {
	Shop struct {
		PrimaryDomain *struct {
			URL string `json:"url"`
		} `json:"primaryDomain"`
	} `json:"shop"`
}

// MarketNode is a market as listed by the markets query.
type MarketNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type marketsData struct {
	Markets pagination.Connection[MarketNode] `json:"markets"`
}

// ShopLocale is a locale enabled on a web presence.
type ShopLocale struct {
	Locale string `json:"locale"`
	Name   string `json:"name"`
}

// WebPresence lists the locales a market sells in.
type WebPresence struct {
	DefaultLocale    *ShopLocale  `json:"defaultLocale"`
	AlternateLocales []ShopLocale `json:"alternateLocales"`
}

// Locales returns the default locale followed by the alternates.
func (w *WebPresence) Locales() []ShopLocale {
	if w == nil {
		return nil
	}
	locales := make([]ShopLocale, 0, 1+len(w.AlternateLocales))
	if w.DefaultLocale != nil {
		locales = append(locales, *w.DefaultLocale)
	}
	return append(locales, w.AlternateLocales...)
}

type webPresenceData struct {
	Market *struct {
		WebPresence *WebPresence `json:"webPresence"`
	} `json:"market"`
}

type translationNode struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type collectionNode struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Handle       string            `json:"handle"`
	Translations []translationNode `json:"translations"`
}

type collectionsData struct {
	Collections pagination.Connection[collectionNode] `json:"collections"`
}

type imageNode struct {
	URL string `json:"url"`
}

type idNode struct {
	ID string `json:"id"`
}

type metafieldNode struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
}

type optionNode struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type selectedOptionNode struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type variantNode struct {
	ID                string               `json:"id"`
	SKU               string               `json:"sku"`
	Barcode           string               `json:"barcode"`
	DisplayName       string               `json:"displayName"`
	Title             string               `json:"title"`
	Price             string               `json:"price"`
	CompareAtPrice    *string              `json:"compareAtPrice"`
	AvailableForSale  *bool                `json:"availableForSale"`
	InventoryQuantity *int                 `json:"inventoryQuantity"`
	Image             *imageNode           `json:"image"`
	SelectedOptions   []selectedOptionNode `json:"selectedOptions"`
}

type productNode struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Handle         string `json:"handle"`
	Vendor         string `json:"vendor"`
	TotalInventory *int   `json:"totalInventory"`

	Images pagination.Connection[imageNode] `json:"images"`
	SEO    *struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"seo"`
	Metafields pagination.Connection[metafieldNode] `json:"metafields"`
	Options    []optionNode                         `json:"options"`
	Tags       []string                             `json:"tags"`

	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
	PublishedAt string `json:"publishedAt"`

	Collections  pagination.Connection[idNode]      `json:"collections"`
	Variants     pagination.Connection[variantNode] `json:"variants"`
	Translations []translationNode                  `json:"translations"`
}

type productsData struct {
	Products pagination.Connection[productNode] `json:"products"`
}

func toTranslations(nodes []translationNode) catalog.Translations {
	if len(nodes) == 0 {
		return nil
	}
	t := make(catalog.Translations, len(nodes))
	for _, n := range nodes {
		if n.Value == "" {
			continue
		}
		key := n.Key
		if alias, ok := translationKeyAliases[key]; ok {
			key = alias
		}
		t[key] = n.Value
	}
	return t
}

func (n collectionNode) toCatalog() catalog.Collection {
	return catalog.Collection{
		RemoteID:     n.ID,
		Title:        n.Title,
		Handle:       n.Handle,
		Translations: toTranslations(n.Translations),
	}
}

func (n variantNode) toCatalog() catalog.Variant {
	v := catalog.Variant{
		RemoteID:          n.ID,
		SKU:               n.SKU,
		Barcode:           n.Barcode,
		DisplayName:       n.DisplayName,
		Title:             n.Title,
		Price:             n.Price,
		AvailableForSale:  n.AvailableForSale,
		InventoryQuantity: n.InventoryQuantity,
	}
	if n.CompareAtPrice != nil && *n.CompareAtPrice != "" {
		v.CompareAtPrice = n.CompareAtPrice
	}
	if n.Image != nil {
		v.ImageURL = n.Image.URL
	}
	for _, so := range n.SelectedOptions {
		v.SelectedOptions = append(v.SelectedOptions, catalog.SelectedOption{Name: so.Name, Value: so.Value})
	}
	return v
}

func (n productNode) toCatalog() catalog.Product {
	p := catalog.Product{
		RemoteID:       n.ID,
		Title:          n.Title,
		Handle:         n.Handle,
		Vendor:         n.Vendor,
		TotalInventory: n.TotalInventory,
		Tags:           n.Tags,
		CreatedAt:      n.CreatedAt,
		UpdatedAt:      n.UpdatedAt,
		PublishedAt:    n.PublishedAt,
		Translations:   toTranslations(n.Translations),
	}

	if images := n.Images.Nodes(); len(images) > 0 {
		p.ImageURL = images[0].URL
	}
	if n.SEO != nil {
		p.SEOTitle = n.SEO.Title
		p.SEODescription = n.SEO.Description
	}
	for _, mf := range n.Metafields.Nodes() {
		p.Metafields = append(p.Metafields, catalog.Metafield{Namespace: mf.Namespace, Key: mf.Key, Value: mf.Value})
	}
	for _, o := range n.Options {
		p.Options = append(p.Options, catalog.ProductOption{Name: o.Name, Values: o.Values})
	}
	for _, c := range n.Collections.Nodes() {
		p.CollectionIDs = append(p.CollectionIDs, c.ID)
	}
	for _, v := range n.Variants.Nodes() {
		p.Variants = append(p.Variants, v.toCatalog())
	}
	return p
}

package feed

import (
	"strconv"

	"github.com/Sternrassler/tweakwise-feed/pkg/catalog"
)

const zeroPrice = "0"

// BuildItems fans a product out into its items for one locale: one per
// variant, or a single product-level item when it has no variants.
func BuildItems(baseURL string, m catalog.Market, l catalog.Locale, p catalog.Product) []catalog.Item {
	groupCode := catalog.ScopedID(l.ID, p.RemoteID)
	name := p.Translations.Lookup("title", p.Title)
	handle := p.Translations.Lookup("handle", p.Handle)
	productPath := "/products/" + handle

	categoryIDs := make([]string, 0, len(p.CollectionIDs))
	for _, id := range p.CollectionIDs {
		categoryIDs = append(categoryIDs, catalog.ScopedID(l.ID, id))
	}

	if len(p.Variants) == 0 {
		return []catalog.Item{{
			ID:          groupCode,
			GroupCode:   groupCode,
			Name:        name,
			URL:         BuildURL(baseURL, m, l.Tag, productPath),
			Image:       p.ImageURL,
			Brand:       p.Vendor,
			Stock:       formatStock(p.TotalInventory),
			Price:       zeroPrice,
			Attributes:  SerializeAttributes(p, l.Tag, nil),
			CategoryIDs: categoryIDs,
		}}
	}

	items := make([]catalog.Item, 0, len(p.Variants))
	for i := range p.Variants {
		v := &p.Variants[i]
		variantID := catalog.ShortID(v.RemoteID)

		item := catalog.Item{
			ID:          catalog.ScopedID(l.ID, v.RemoteID),
			GroupCode:   groupCode,
			Name:        variantName(name, v.Title),
			URL:         BuildURL(baseURL, m, l.Tag, productPath+"?variant="+variantID),
			Image:       p.ImageURL,
			Brand:       p.Vendor,
			Stock:       formatStock(v.InventoryQuantity),
			Price:       v.Price,
			Attributes:  SerializeAttributes(p, l.Tag, v),
			CategoryIDs: categoryIDs,
		}
		if v.ImageURL != "" {
			item.Image = v.ImageURL
		}
		if item.Price == "" {
			item.Price = zeroPrice
		}
		items = append(items, item)
	}
	return items
}

func variantName(productName, variantTitle string) string {
	if variantTitle == "" || variantTitle == catalog.DefaultVariantTitle {
		return productName
	}
	return productName + " - " + variantTitle
}

func formatStock(qty *int) string {
	if qty == nil {
		return ""
	}
	return strconv.Itoa(*qty)
}

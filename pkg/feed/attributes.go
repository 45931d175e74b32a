package feed

import (
	"strconv"
	"strings"

	"github.com/Sternrassler/tweakwise-feed/pkg/catalog"
)

// Attribute names.
const (
	AttrItemType         = "item_type"
	AttrSEOTitle         = "seo_title"
	AttrSEODescription   = "seo_description"
	AttrSKU              = "sku"
	AttrBarcode          = "barcode"
	AttrDisplayName      = "displayName"
	AttrAvailableForSale = "availableForSale"
	AttrCompareAtPrice   = "compareAtPrice"
	AttrSelectedOptions  = "selected_options"
	AttrTags             = "tags"
	AttrCreatedAt        = "createdAt"
	AttrUpdatedAt        = "updatedAt"
	AttrPublishedAt      = "publishedAt"

	itemTypeProduct = "product"
)

// attributeList accumulates attributes in order and skips empty values.
type attributeList struct {
	attrs        []catalog.Attribute
	translations catalog.Translations
}

func (l *attributeList) add(name, value string) {
	if value == "" {
		return
	}
	l.attrs = append(l.attrs, catalog.Attribute{Name: name, Value: value})
}

// addTranslated adds value, or its translation under key when one exists.
func (l *attributeList) addTranslated(name, key, value string) {
	if value == "" {
		return
	}
	l.add(name, l.translations.Lookup(key, value))
}

func (l *attributeList) addVariantFields(v catalog.Variant, withDisplayName bool) {
	l.addTranslated(AttrSKU, AttrSKU, v.SKU)
	l.addTranslated(AttrBarcode, AttrBarcode, v.Barcode)
	if withDisplayName {
		l.addTranslated(AttrDisplayName, AttrDisplayName, v.DisplayName)
	}
	if v.AvailableForSale != nil {
		l.add(AttrAvailableForSale, strconv.FormatBool(*v.AvailableForSale))
	}
	if v.CompareAtPrice != nil {
		l.addTranslated(AttrCompareAtPrice, AttrCompareAtPrice, *v.CompareAtPrice)
	}
}

// SerializeAttributes returns the ordered attributes of a product. With a
// variant the variant's own fields and selected options are emitted;
// without one every variant's fields and the product options are. An empty
// locale disables translation.
func SerializeAttributes(p catalog.Product, locale string, v *catalog.Variant) []catalog.Attribute {
	l := &attributeList{}
	if locale != "" {
		l.translations = p.Translations
	}

	l.add(AttrItemType, itemTypeProduct)
	l.addTranslated(AttrSEOTitle, AttrSEOTitle, p.SEOTitle)
	l.addTranslated(AttrSEODescription, AttrSEODescription, p.SEODescription)

	if v != nil {
		l.addVariantFields(*v, true)
		for _, so := range v.SelectedOptions {
			if so.Name == "" || so.Value == "" {
				continue
			}
			l.add(AttrSelectedOptions, so.Name+": "+so.Value)
			l.add(strings.ToLower(so.Name), so.Value)
		}
	} else {
		for _, variant := range p.Variants {
			l.addVariantFields(variant, false)
		}
	}

	for _, mf := range p.Metafields {
		name := "metafield_" + mf.Namespace + "_" + mf.Key
		l.addTranslated(name, name, mf.Value)
	}

	if v == nil {
		for _, o := range p.Options {
			name := "option_" + o.Name
			for _, value := range o.Values {
				l.addTranslated(name, name, value)
			}
		}
	}

	for _, tag := range p.Tags {
		l.addTranslated(AttrTags, "tag_"+tag, tag)
	}

	l.add(AttrCreatedAt, p.CreatedAt)
	l.add(AttrUpdatedAt, p.UpdatedAt)
	l.add(AttrPublishedAt, p.PublishedAt)

	return l.attrs
}

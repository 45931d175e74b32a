package catalog

import "strings"

// marketShortIDLength is the number of trailing characters kept from a
// market id to form its short id.
const marketShortIDLength = 8

// ShortID returns the trailing path segment of a GraphQL global id,
// e.g. "gid://shopify/Product/123" -> "123". Query strings are dropped.
// An id without a path separator is returned unchanged.
func ShortID(gid string) string {
	id := gid
	if i := strings.IndexByte(id, '?'); i >= 0 {
		id = id[:i]
	}
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		id = id[i+1:]
	}
	if id == "" {
		return gid
	}
	return id
}

// MarketShortID keeps the last eight characters of the market id's trailing
// segment. Shorter segments are used whole.
func MarketShortID(gid string) string {
	id := ShortID(gid)
	if len(id) > marketShortIDLength {
		return id[len(id)-marketShortIDLength:]
	}
	return id
}

// LocaleID composes the id of a locale scoped to its market.
func LocaleID(marketID, tag string) string {
	return marketID + "_" + tag
}

// ScopedID composes a record id scoped to a locale, e.g. a collection
// category id, a group code or a variant item id.
func ScopedID(localeID, remoteID string) string {
	return localeID + "_" + ShortID(remoteID)
}

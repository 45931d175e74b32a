package feed

import "github.com/Sternrassler/tweakwise-feed/pkg/catalog"

// BuildURL returns the storefront URL of path for one locale of market.
// The locale tag is only inserted when the market sells in more than one
// locale. path must start with "/".
func BuildURL(baseURL string, market catalog.Market, localeTag, path string) string {
	if market.HasMultipleLocales() {
		return baseURL + "/" + localeTag + path
	}
	return baseURL + path
}

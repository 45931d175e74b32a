package sink

import (
	"fmt"
	"path"
	"strings"
)

// KeyPrefix prefixes every document key in Redis.
const KeyPrefix = "feed:document:"

// Key generates the Redis key of a document.
// Format: feed:document:{shop}:{name}
//
// Example:
//
//	feed:document:demo.myshopify.com:shopify-tweakwise-feed.xml
func Key(shop, name string) string {
	return KeyPrefix + shop + ":" + name
}

// ValidateName rejects names that are empty, hidden or would leave the
// storage directory.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("document name is empty")
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("document name %q contains a path separator", name)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("document name %q must not start with a dot", name)
	case path.Clean(name) != name:
		return fmt.Errorf("document name %q is not clean", name)
	}
	return nil
}

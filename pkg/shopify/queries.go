// Package shopify holds the GraphQL Admin API queries the feed runs and maps
// their responses onto catalog records.
package shopify

// Page sizes. The product page stays small because every product node
// carries nested variant and collection connections that add to query cost.
const (
	MarketsPageSize     = 100
	CollectionsPageSize = 100
	DefaultProductsPage = 25
)

const shopQuery = `query Shop {
  shop {
    primaryDomain {
      url
    }
  }
}`

const marketsQuery = `query Markets($first: Int!) {
  markets(first: $first) {
    edges {
      node {
        id
        name
      }
    }
  }
}`

const webPresenceQuery = `query WebPresence($id: ID!) {
  market(id: $id) {
    webPresence {
      defaultLocale {
        locale
        name
      }
      alternateLocales {
        locale
        name
      }
    }
  }
}`

const collectionsQuery = `query Collections($first: Int!, $cursor: String, $locale: String!) {
  collections(first: $first, after: $cursor) {
    pageInfo {
      hasNextPage
    }
    edges {
      cursor
      node {
        id
        title
        handle
        translations(locale: $locale) {
          key
          value
        }
      }
    }
  }
}`

const productsQuery = `query Products($first: Int!, $cursor: String, $locale: String!) {
  products(first: $first, after: $cursor) {
    pageInfo {
      hasNextPage
    }
    edges {
      cursor
      node {
        id
        title
        handle
        vendor
        totalInventory
        images(first: 1) {
          edges {
            node {
              url
            }
          }
        }
        seo {
          title
          description
        }
        metafields(first: 10) {
          edges {
            node {
              namespace
              key
              value
            }
          }
        }
        options {
          name
          values
        }
        tags
        createdAt
        updatedAt
        publishedAt
        collections(first: 100) {
          edges {
            node {
              id
            }
          }
        }
        variants(first: 100) {
          edges {
            node {
              id
              sku
              barcode
              displayName
              title
              price
              compareAtPrice
              availableForSale
              inventoryQuantity
              image {
                url
              }
              selectedOptions {
                name
                value
              }
            }
          }
        }
        translations(locale: $locale) {
          key
          value
        }
      }
    }
  }
}`

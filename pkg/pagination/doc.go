// Package pagination drives cursor-based GraphQL connections.
//
// A connection is fetched page by page: each page is requested with the
// cursor of the last edge of the previous page, until the remote source
// reports no further page. Pages are fetched strictly one after another and
// a shared limiter spaces requests out to stay under the remote rate limit.
//
// Example usage:
//
//	p := pagination.New(pagination.DefaultConfig())
//	for product, err := range pagination.All(ctx, p, fetchProducts) {
//		if err != nil {
//			return err
//		}
//		// use product
//	}
//
// The sequence:
//   - Is lazy: a page is only requested once the previous one is consumed
//   - Ends on hasNextPage=false, or when a page has no last cursor
//   - Stops at the first error, which is yielded once
//   - Can be ranged over once; a second range yields ErrConsumed
package pagination

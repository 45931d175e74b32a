// Package feed builds the Tweakwise catalog document.
//
// A run resolves the shop's markets and locales, then emits the category
// hierarchy and the item list for every market/locale pair:
//
//	root (rank 0)
//	└── market (rank 1)
//	    └── locale (rank 2)
//	        └── collection (rank 3)
//
// Products fan out into one item per variant, or one item when they have no
// variants. All items of one product in one locale share a group code.
//
// Pairs are processed sequentially so that only one request is in flight
// against the shop at any time. The first failed fetch aborts the run.
//
// Example usage:
//
//	gen := feed.NewGenerator(markets.NewResolver(src), src)
//	job := feed.NewJob(gen, fileSink, feed.DefaultFileName)
//	result, err := job.Run(ctx)
package feed

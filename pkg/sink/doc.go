// Package sink stores rendered feed documents and serves them back.
//
// Two sinks are provided:
//
// - FileSink writes documents into a directory, replacing them atomically
// - RedisSink stores documents as JSON entries with an ETag and a TTL
//
// Both implement Reader, so a stored document can be served over HTTP with
// conditional request support (If-None-Match / 304 Not Modified).
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	s := sink.NewRedisSink(redisClient, "demo.myshopify.com", 24*time.Hour)
//
//	url, err := s.Store(ctx, "shopify-tweakwise-feed.xml", data, feed.ContentType)
//	if err != nil {
//		return err
//	}
//
// # Serving
//
//	mux.Handle("GET /feeds/{name}", sink.Handler(s))
package sink

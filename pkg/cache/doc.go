// Package cache provides a generic, thread-safe in-memory memo cache.
//
// It backs the per-process memoization layers of the client: parsed vector
// catalogs, region lists, and dataset listings are expensive to rebuild
// from their durable cachestore payloads, so each is held here after first
// use. Entries never expire on their own (census releases are static); the
// caller clears or replaces them explicitly.
//
// Statistics are always collected. Prometheus export is optional and wired
// through the WithMetrics functional option; a nil registerer disables it.
package cache

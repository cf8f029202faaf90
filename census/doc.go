// Package census assembles tabular census data and region geometries into
// joined, cache-backed results.
//
// The Client is the main entry point. A Fetch call validates its
// RequestSpec, derives a canonical cache key, and serves from the local
// store when possible; otherwise it downloads the tabular data, normalizes
// it, joins requested geometries on region identifiers, and persists the
// assembled payload before returning. Catalog lookups (datasets, regions,
// vectors) follow the same cache-first discipline with an additional
// in-process memo.
package census

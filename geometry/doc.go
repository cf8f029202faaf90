// Package geometry models region boundary payloads.
//
// The census service returns boundaries as a GeoJSON FeatureCollection
// keyed by region id in the feature properties. ParseGeoJSON normalizes
// that into a typed Collection backed by go-geom geometries; features
// missing an id or geometry are dropped rather than failing the response,
// because boundary coverage only ever partially overlaps the tabular rows
// of the same request.
//
// Collections marshal to JSON with GeoJSON-encoded geometries, which is
// the form the cache store persists.
package geometry

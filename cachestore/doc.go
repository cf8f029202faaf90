// Package cachestore persists successful census responses to local disk.
//
// The store is keyed by the canonical cache key derived from a request
// spec (see the census package); it never inspects keys. Each entry is a
// payload file plus a small sidecar of metadata, so List can report key,
// size, and creation time without deserializing payloads. Writes go
// through temp-file-and-rename, which makes concurrent writers to the same
// key last-writer-wins and guarantees a reader never sees a torn entry.
//
// Entries never auto-expire: census releases are static. Hygiene is
// explicit through Remove, RemoveIf, and Clear.
package cachestore

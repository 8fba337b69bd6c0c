// Package cache defines the generic key/value contract the extraction
// engine uses to memoize OCR and table results, plus an in-memory TTL
// implementation suitable for tests and single-process deployments.
//
// The engine never depends on a specific cache technology: anything
// implementing [Cache] can be injected. Entries are immutable once
// written; a write race between two callers extracting the same document
// resolves as last-writer-wins, which is safe because both values are
// computed from identical input.
//
// Keys are derived from a HighwayHash content hash of the source document
// bytes plus the requested page subset and the result schema version, so
// a new engine revision naturally misses old entries.
package cache

// Package cache provides the in-memory caches used on the hot query path.
//
// Two concerns live here:
//
//   - Cache: a generic fixed-capacity cache combining per-entry TTL
//     expiry with LRU eviction. Reads refresh an entry's recency but
//     never extend its TTL, so a hot entry still expires on schedule
//     and stale data cannot be pinned alive by repeated hits.
//   - Fingerprint: a canonical key for a query plus its extracted
//     filters, stable under casing, punctuation, and whitespace
//     variation so equivalent phrasings share cache entries.
//
// All operations are safe for concurrent use.
package cache

// Package search implements hybrid retrieval over the listing catalog.
//
// The Engine combines two candidate sources:
//
//   - exact search: structured-filter predicates evaluated against every
//     listing, using the store's native filtered search when the backend
//     offers one and a full scan otherwise
//   - semantic search: cosine similarity between the embedded query text
//     and each listing's precomputed embedding
//
// Queries that carry structured filters run exact search first and
// supplement with semantic candidates when the exact set is too small.
// Queries without filters run semantic search first and backfill from the
// full catalog. Results are cached by query fingerprint.
//
// Both collaborator failures degrade rather than abort: a failing store
// yields an empty exact set, and a failing embedder skips semantic
// supplementation.
package search

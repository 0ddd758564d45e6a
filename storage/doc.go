// Package storage provides the storage abstraction layer for leasebot.
//
// This package defines repository interfaces that decouple storage
// implementation from the search and chat logic. It allows different
// key-value backends (BadgerDB, in-memory, etc.) to be used interchangeably.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return these interfaces rather
// than concrete types:
//
//	store, err := badger.OpenStore(path)  // returns concrete *Store, whose
//	                                      // repositories satisfy this package
//
// which keeps consumers decoupled from BadgerDB specifics and lets tests
// substitute in-memory or mock implementations without modification.
//
// # Architecture
//
//   - DocumentStore: raw get/set/delete plus prefix key enumeration
//   - FilteredSearcher: optional best-effort native filtered search
//   - PropertyRepository: listing records
//   - VectorRepository: precomputed listing embeddings
//   - SessionRepository: persisted chat sessions
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support concurrent
// access from overlapping in-flight requests.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and
// timeout support.
package storage

// Package ingest loads the listing catalog and precomputes embeddings.
//
// Ingestion runs in two stages: catalog records are validated and stored,
// then their description texts are embedded in batches on a worker pool
// and the resulting vectors persisted for semantic search. Embedding
// calls retry with exponential backoff; a batch that still fails is
// logged and skipped so one bad batch never sinks a whole catalog load.
package ingest

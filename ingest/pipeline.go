package ingest

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/crestline/leasebot/ai"
	"github.com/crestline/leasebot/core"
	"github.com/crestline/leasebot/storage"
	"github.com/panjf2000/ants/v2"
)

const (
	defaultBatchSize  = 16
	defaultMaxRetries = 3
	defaultBaseDelay  = 500 * time.Millisecond
)

// Pipeline stores catalog listings and precomputes their embeddings.
type Pipeline struct {
	properties storage.PropertyRepository
	vectors    storage.VectorRepository
	embedder   ai.Embedder
	pool       *ants.Pool
	logger     *slog.Logger

	batchSize  int
	maxRetries int
	baseDelay  time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets how many listings embed per batch call.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size > 0 {
			p.batchSize = size
		}
		return nil
	}
}

// WithRetry overrides the embedding retry policy.
func WithRetry(maxRetries int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxRetries > 0 {
			p.maxRetries = maxRetries
		}
		if baseDelay > 0 {
			p.baseDelay = baseDelay
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(
	properties storage.PropertyRepository,
	vectors storage.VectorRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if properties == nil {
		return nil, ErrPropertyRepositoryRequired
	}
	if vectors == nil {
		return nil, ErrVectorRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		properties: properties,
		vectors:    vectors,
		embedder:   embedder,
		pool:       pool,
		logger:     slog.Default().With("component", "ingest"),
		batchSize:  defaultBatchSize,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}

	return p, nil
}

// IngestFile loads a catalog file and ingests its listings.
// Returns the number of listings with stored embeddings.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (int, error) {
	listings, err := LoadCatalog(path)
	if err != nil {
		return 0, err
	}
	return p.Ingest(ctx, listings)
}

// Ingest stores the listings and embeds their descriptions in batches on
// the worker pool. A batch whose embedding fails after retries is logged
// and skipped; its listings stay searchable by filters, just not
// semantically. Returns the number of listings with stored embeddings.
func (p *Pipeline) Ingest(ctx context.Context, listings []*core.Property) (int, error) {
	stored := make([]*core.Property, 0, len(listings))
	for _, listing := range listings {
		if err := p.properties.PutProperty(ctx, listing); err != nil {
			p.logger.Warn("skipping unstorable listing", "id", listing.ID, "err", err)
			continue
		}
		stored = append(stored, listing)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		embedded int
	)

	for start := 0; start < len(stored); start += p.batchSize {
		end := start + p.batchSize
		if end > len(stored) {
			end = len(stored)
		}
		batch := stored[start:end]

		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			n := p.embedBatch(ctx, batch)
			mu.Lock()
			embedded += n
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			p.logger.Error("submitting embedding batch failed", "err", submitErr)
		}
	}

	wg.Wait()

	p.logger.Info("catalog ingested", "listings", len(stored), "embedded", embedded)
	return embedded, nil
}

// embedBatch embeds one batch with retry and persists the vectors.
// Returns the number of vectors stored.
func (p *Pipeline) embedBatch(ctx context.Context, batch []*core.Property) int {
	texts := make([]string, len(batch))
	for i, listing := range batch {
		texts[i] = listing.Describe()
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = p.embedder.EmbedTexts(ctx, texts)
		return err
	}, p.maxRetries, p.baseDelay)
	if err != nil {
		p.logger.Error("embedding batch failed after retries", "batchSize", len(batch), "err", err)
		return 0
	}

	if len(embeddings) != len(batch) {
		p.logger.Error("embedding count mismatch", "expected", len(batch), "got", len(embeddings))
		return 0
	}

	stored := 0
	for i, listing := range batch {
		if err := p.vectors.PutVector(ctx, listing.ID, NormalizeVector(embeddings[i])); err != nil {
			p.logger.Warn("storing vector failed", "id", listing.ID, "err", err)
			continue
		}
		stored++
	}
	return stored
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/crestline/leasebot/ai"
	"github.com/crestline/leasebot/cache"
	"github.com/crestline/leasebot/core"
	"github.com/crestline/leasebot/storage"
)

const (
	// MaxResults caps the candidate list returned by any search.
	MaxResults = 10

	// SupplementThreshold is the primary-result count below which the
	// secondary candidate source is consulted.
	SupplementThreshold = 3
)

// Engine orchestrates exact and semantic candidate retrieval.
type Engine struct {
	properties    storage.PropertyRepository
	vectors       storage.VectorRepository
	embedder      ai.Embedder
	results       *cache.Cache[[]*core.Property]
	logger        *slog.Logger
	minSimilarity float32
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithResultCache replaces the default result cache. Used by tests to
// inject a cache with a controllable clock.
func WithResultCache(c *cache.Cache[[]*core.Property]) Option {
	return func(e *Engine) error {
		if c != nil {
			e.results = c
		}
		return nil
	}
}

// WithMinSimilarity sets a cosine-similarity floor for semantic hits.
// By default there is no floor: any candidate with positive similarity
// ranks, from highest to lowest.
func WithMinSimilarity(min float32) Option {
	return func(e *Engine) error {
		e.minSimilarity = min
		return nil
	}
}

// NewEngine creates a search engine over the given repositories.
// The embedder may be nil, in which case semantic search is skipped and
// every query is answered from exact search alone.
func NewEngine(
	properties storage.PropertyRepository,
	vectors storage.VectorRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Engine, error) {
	if properties == nil {
		return nil, ErrPropertyRepositoryRequired
	}
	if vectors == nil {
		return nil, ErrVectorRepositoryRequired
	}

	e := &Engine{
		properties: properties,
		vectors:    vectors,
		embedder:   embedder,
		results:    cache.New[[]*core.Property](cache.DefaultResultTTL),
		logger:     slog.Default().With("component", "search"),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Search retrieves up to MaxResults candidates for the analyzed query.
//
// Queries with structured filters run exact search first and supplement
// with semantic candidates when the exact set falls below the threshold.
// Queries without filters run semantic search first and backfill from the
// full catalog. Catch-all queries skip filtering entirely.
func (e *Engine) Search(ctx context.Context, query core.SearchQuery) (*core.SearchResult, error) {
	start := time.Now()

	fingerprint := cache.Fingerprint(query.Text, query.Filters)
	if cached, ok := e.results.Get(fingerprint); ok {
		return &core.SearchResult{
			Properties: cached,
			Query:      query,
			Latency:    time.Since(start),
			CacheHit:   true,
		}, nil
	}

	// Kick off the query embedding while candidates load from the store.
	// The channel is buffered so an unused embedding never blocks.
	embedCh := e.embedQueryAsync(ctx, query.Text)

	var candidates []*core.Property
	switch {
	case isCatchAll(query.Text):
		candidates = e.exactSearch(ctx, core.Filters{})
	case !query.Filters.Empty():
		candidates = e.exactSearch(ctx, query.Filters)
		if len(candidates) < SupplementThreshold {
			candidates = e.supplementSemantic(ctx, embedCh, candidates)
		}
	default:
		candidates = e.semanticSearch(ctx, embedCh)
		if len(candidates) < SupplementThreshold {
			candidates = supplement(candidates, e.exactSearch(ctx, core.Filters{}))
		}
	}

	if len(candidates) > MaxResults {
		candidates = candidates[:MaxResults]
	}

	e.results.Set(fingerprint, candidates)

	return &core.SearchResult{
		Properties: candidates,
		Query:      query,
		Latency:    time.Since(start),
	}, nil
}

// InvalidateResults drops all cached result sets. Called after catalog
// ingestion so stale candidate lists don't outlive a reload.
func (e *Engine) InvalidateResults() {
	e.results.Purge()
}

type embedOutcome struct {
	vector []float32
	err    error
}

func (e *Engine) embedQueryAsync(ctx context.Context, text string) <-chan embedOutcome {
	ch := make(chan embedOutcome, 1)
	if e.embedder == nil {
		ch <- embedOutcome{err: ai.ErrEmbedderUnavailable}
		return ch
	}
	go func() {
		vector, err := e.embedder.EmbedText(ctx, text)
		ch <- embedOutcome{vector: vector, err: err}
	}()
	return ch
}

// exactSearch returns every listing satisfying the filters. A store
// failure degrades to an empty set.
func (e *Engine) exactSearch(ctx context.Context, filters core.Filters) []*core.Property {
	if fs, ok := e.properties.(storage.FilteredSearcher); ok && !filters.Empty() {
		if matched, ok := e.nativeFilteredSearch(ctx, fs, filters); ok {
			return matched
		}
	}

	all, err := e.properties.ListProperties(ctx)
	if err != nil {
		e.logger.Error("property enumeration failed, degrading to empty exact results", "err", err)
		return nil
	}

	if filters.Empty() {
		return all
	}

	matched := make([]*core.Property, 0, len(all))
	for _, p := range all {
		if MatchesFilters(p, filters) {
			matched = append(matched, p)
		}
	}
	return matched
}

// nativeFilteredSearch tries the backend's filtered-search capability.
// Any failure falls back to the full scan; the capability is best-effort.
func (e *Engine) nativeFilteredSearch(ctx context.Context, fs storage.FilteredSearcher, filters core.Filters) ([]*core.Property, bool) {
	ids, err := fs.FilteredSearch(ctx, filters)
	if err != nil {
		e.logger.Warn("native filtered search failed, falling back to scan", "err", err)
		return nil, false
	}

	matched := make([]*core.Property, 0, len(ids))
	for _, id := range ids {
		p, err := e.properties.GetProperty(ctx, id)
		if err != nil {
			e.logger.Warn("skipping unfetchable filtered-search hit", "id", id, "err", err)
			continue
		}
		matched = append(matched, p)
	}
	return matched, true
}

// semanticSearch ranks the full catalog by cosine similarity against the
// embedded query, keeping hits at or above the similarity floor. Embedder
// failure degrades to an empty set.
func (e *Engine) semanticSearch(ctx context.Context, embedCh <-chan embedOutcome) []*core.Property {
	ranked := e.rankBySimilarity(ctx, embedCh, nil)
	if len(ranked) > MaxResults {
		ranked = ranked[:MaxResults]
	}
	return ranked
}

// supplementSemantic appends the highest-ranked semantic candidates not
// already present in the exact set, up to the overall cap.
func (e *Engine) supplementSemantic(ctx context.Context, embedCh <-chan embedOutcome, exact []*core.Property) []*core.Property {
	seen := make(map[string]bool, len(exact))
	for _, p := range exact {
		seen[p.ID] = true
	}
	return supplement(exact, e.rankBySimilarity(ctx, embedCh, seen))
}

type scoredProperty struct {
	property *core.Property
	score    float32
}

// rankBySimilarity returns catalog listings ranked by similarity to the
// query embedding, excluding IDs in skip and anything below the floor.
func (e *Engine) rankBySimilarity(ctx context.Context, embedCh <-chan embedOutcome, skip map[string]bool) []*core.Property {
	outcome := <-embedCh
	if outcome.err != nil {
		e.logger.Warn("query embedding unavailable, skipping semantic search", "err", outcome.err)
		return nil
	}

	all, err := e.properties.ListProperties(ctx)
	if err != nil {
		e.logger.Error("property enumeration failed during semantic search", "err", err)
		return nil
	}

	scored := make([]scoredProperty, 0, len(all))
	for _, p := range all {
		if skip[p.ID] {
			continue
		}
		vector, err := e.vectors.GetVector(ctx, p.ID)
		if err != nil {
			e.logger.Debug("listing has no embedding, excluded from semantic ranking", "id", p.ID)
			continue
		}
		score := CosineSimilarity(outcome.vector, vector)
		// Non-positive similarity carries no signal.
		if score <= 0 || score < e.minSimilarity {
			continue
		}
		scored = append(scored, scoredProperty{property: p, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	ranked := make([]*core.Property, 0, len(scored))
	for _, s := range scored {
		ranked = append(ranked, s.property)
	}
	return ranked
}

// supplement appends extras not already present in primary, up to MaxResults.
func supplement(primary, extras []*core.Property) []*core.Property {
	seen := make(map[string]bool, len(primary))
	for _, p := range primary {
		seen[p.ID] = true
	}
	merged := primary
	for _, p := range extras {
		if len(merged) >= MaxResults {
			break
		}
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		merged = append(merged, p)
	}
	return merged
}

// isCatchAll reports whether text asks for the whole catalog.
func isCatchAll(text string) bool {
	trimmed := strings.TrimSpace(strings.ToLower(text))
	return trimmed == "*" || strings.Contains(trimmed, "show all")
}

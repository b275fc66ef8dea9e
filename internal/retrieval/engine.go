// Package retrieval expands a user query into several search variations,
// probes the vector index once per variation, and merges the results into a
// bounded, score-ranked snippet list.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/mianwuxin/chatbot-backend/internal/embeddings"
	"github.com/mianwuxin/chatbot-backend/internal/models"
	"github.com/mianwuxin/chatbot-backend/internal/vectorindex"
)

// Engine performs multi-variation retrieval. Retrieval failure degrades to an
// empty result; it never fails the overall chat request.
type Engine struct {
	embedder  embeddings.Client
	index     vectorindex.Index
	rules     []Rule
	threshold float64
	cache     *lru.Cache[string, []float32]
	loadGroup singleflight.Group
	logger    *slog.Logger
}

// Params configures the Engine. Rules defaults to DefaultRules; CacheSize <= 0
// disables the variation-embedding cache.
type Params struct {
	Embedder  embeddings.Client
	Index     vectorindex.Index
	Rules     []Rule
	Threshold float64
	CacheSize int
	Logger    *slog.Logger
}

// NewEngine creates an Engine.
func NewEngine(p Params) *Engine {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rules := p.Rules
	if rules == nil {
		rules = DefaultRules()
	}

	var cache *lru.Cache[string, []float32]
	if p.CacheSize > 0 {
		// lru.New only errors on non-positive size, which is excluded here.
		cache, _ = lru.New[string, []float32](p.CacheSize)
	}

	return &Engine{
		embedder:  p.Embedder,
		index:     p.Index,
		rules:     rules,
		threshold: p.Threshold,
		cache:     cache,
		logger:    logger,
	}
}

// Search returns at most topK knowledge snippets relevant to query, most
// relevant first, or an empty slice when nothing qualifies or the index is
// unavailable. Each variation is embedded and searched independently; a
// variation that fails is skipped, not fatal. Candidates are deduplicated by
// exact content with the first occurrence's score winning (variation order is
// the tie-break, by contract), then ranked by score descending.
func (e *Engine) Search(ctx context.Context, query, language string, topK int) []string {
	if topK <= 0 {
		return nil
	}

	variations := Expand(query, e.rules)
	e.logger.Debug("retrieval: expanded query", "query", query, "variations", len(variations))

	// One result slot per variation keeps the merge order deterministic even
	// though the searches run concurrently.
	slots := make([][]models.SearchCandidate, len(variations))

	g, gctx := errgroup.WithContext(ctx)

	for idx, variation := range variations {
		g.Go(func() error {
			embedding, err := e.embeddingFor(gctx, variation)
			if err != nil {
				e.logger.Debug("retrieval: skip variation, embedding failed", "variation", variation, "error", err)

				return nil
			}

			matches, err := e.index.Query(gctx, embedding, 2*topK, vectorindex.Filter{Language: language})
			if err != nil {
				e.logger.Warn("retrieval: skip variation, index query failed", "variation", variation, "error", err)

				return nil
			}

			var kept []models.SearchCandidate

			for _, m := range matches {
				if m.Score > e.threshold && m.Chunk.Content != "" {
					kept = append(kept, models.SearchCandidate{Content: m.Chunk.Content, Score: m.Score})
				}
			}

			slots[idx] = kept

			return nil
		})
	}

	// Goroutines absorb their own failures, so Wait cannot return an error.
	_ = g.Wait()

	merged := mergeCandidates(slots)

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Score > merged[j].Score })

	if len(merged) > topK {
		merged = merged[:topK]
	}

	snippets := make([]string, 0, len(merged))
	for _, c := range merged {
		snippets = append(snippets, c.Content)
	}

	e.logger.Info("retrieval: search complete", "query", query, "variations", len(variations), "results", len(snippets))

	return snippets
}

// mergeCandidates flattens per-variation results in variation order,
// deduplicating by exact content. First occurrence wins; a content string seen
// again under a later variation is dropped regardless of its score.
func mergeCandidates(slots [][]models.SearchCandidate) []models.SearchCandidate {
	seen := make(map[string]struct{})

	var merged []models.SearchCandidate

	for _, candidates := range slots {
		for _, c := range candidates {
			if _, dup := seen[c.Content]; dup {
				continue
			}

			seen[c.Content] = struct{}{}
			merged = append(merged, c)
		}
	}

	return merged
}

// embeddingFor returns the embedding for a variation, consulting the LRU cache
// first. Concurrent loads of the same string are collapsed via singleflight.
func (e *Engine) embeddingFor(ctx context.Context, variation string) ([]float32, error) {
	if e.cache == nil {
		return e.embedder.CreateEmbedding(ctx, variation)
	}

	if vec, ok := e.cache.Get(variation); ok {
		return vec, nil
	}

	val, err, _ := e.loadGroup.Do(variation, func() (any, error) {
		vec, loadErr := e.embedder.CreateEmbedding(ctx, variation)
		if loadErr != nil {
			return nil, fmt.Errorf("create embedding: %w", loadErr)
		}

		e.cache.Add(variation, vec)

		return vec, nil
	})
	if err != nil {
		return nil, err
	}

	return val.([]float32), nil
}

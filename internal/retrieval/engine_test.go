package retrieval

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mianwuxin/chatbot-backend/internal/embeddings"
	"github.com/mianwuxin/chatbot-backend/internal/models"
	"github.com/mianwuxin/chatbot-backend/internal/vectorindex"
)

type stubEmbedder struct {
	embedFunc func(ctx context.Context, text string) ([]float32, error)
	calls     atomic.Int64
}

func (s *stubEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	s.calls.Add(1)
	if s.embedFunc != nil {
		return s.embedFunc(ctx, text)
	}

	return []float32{0.1}, nil
}

type stubIndex struct {
	queryFunc func(ctx context.Context, embedding []float32, topK int, filter vectorindex.Filter) ([]vectorindex.Match, error)
}

func (s *stubIndex) Query(ctx context.Context, embedding []float32, topK int, filter vectorindex.Filter) ([]vectorindex.Match, error) {
	if s.queryFunc != nil {
		return s.queryFunc(ctx, embedding, topK, filter)
	}

	return nil, nil
}

func (s *stubIndex) Upsert(context.Context, []vectorindex.Record) error { return nil }
func (s *stubIndex) DeleteAll(context.Context) error                    { return nil }
func (s *stubIndex) Stats(context.Context) (vectorindex.Stats, error) {
	return vectorindex.Stats{}, nil
}
func (s *stubIndex) Ping(context.Context) error { return nil }

// fixedRules yields exactly the given variations, independent of the query.
func fixedRules(variations ...string) []Rule {
	return []Rule{{
		Name:       "fixed",
		Matches:    func(string) bool { return true },
		Variations: func(_, _ string, _ []string) []string { return variations },
	}}
}

func match(content string, score float64) vectorindex.Match {
	return vectorindex.Match{Score: score, Chunk: models.KnowledgeChunk{Content: content}}
}

func TestEngine_Search_DedupFirstWins(t *testing.T) {
	embedder := &stubEmbedder{
		embedFunc: func(_ context.Context, text string) ([]float32, error) {
			switch text {
			case "v1":
				return []float32{1}, nil
			case "v2":
				return []float32{2}, nil
			}

			return nil, errors.New("unexpected variation")
		},
	}
	index := &stubIndex{
		queryFunc: func(_ context.Context, embedding []float32, _ int, _ vectorindex.Filter) ([]vectorindex.Match, error) {
			switch embedding[0] {
			case 1:
				return []vectorindex.Match{match("X", 0.5), match("Z", 0.7)}, nil
			case 2:
				// X again, higher score: must be dropped, not re-ranked
				return []vectorindex.Match{match("X", 0.9), match("Y", 0.3)}, nil
			}

			return nil, nil
		},
	}

	engine := NewEngine(Params{Embedder: embedder, Index: index, Rules: fixedRules("v1", "v2"), Threshold: 0.005})

	got := engine.Search(context.Background(), "anything", "en", 5)

	// X keeps its first-seen score 0.5, so Z (0.7) outranks it.
	assert.Equal(t, []string{"Z", "X", "Y"}, got)
}

func TestEngine_Search_Threshold(t *testing.T) {
	embedder := &stubEmbedder{}
	index := &stubIndex{
		queryFunc: func(context.Context, []float32, int, vectorindex.Filter) ([]vectorindex.Match, error) {
			return []vectorindex.Match{
				match("at floor", 0.005),
				match("above floor", 0.0051),
				match("below floor", 0.001),
			}, nil
		},
	}

	engine := NewEngine(Params{Embedder: embedder, Index: index, Rules: fixedRules("only"), Threshold: 0.005})

	got := engine.Search(context.Background(), "q", "en", 5)

	assert.Equal(t, []string{"above floor"}, got)
}

func TestEngine_Search_AllEmbeddingsFail(t *testing.T) {
	embedder := &stubEmbedder{
		embedFunc: func(context.Context, string) ([]float32, error) {
			return nil, errors.New("embedding api down")
		},
	}
	queried := false
	index := &stubIndex{
		queryFunc: func(context.Context, []float32, int, vectorindex.Filter) ([]vectorindex.Match, error) {
			queried = true

			return nil, nil
		},
	}

	engine := NewEngine(Params{Embedder: embedder, Index: index, Rules: fixedRules("v1", "v2", "v3"), Threshold: 0.005})

	got := engine.Search(context.Background(), "q", "en", 5)

	assert.Empty(t, got)
	assert.False(t, queried)
}

func TestEngine_Search_IndexFailureIsPerVariation(t *testing.T) {
	embedder := &stubEmbedder{
		embedFunc: func(_ context.Context, text string) ([]float32, error) {
			if text == "broken" {
				return []float32{1}, nil
			}

			return []float32{2}, nil
		},
	}
	index := &stubIndex{
		queryFunc: func(_ context.Context, embedding []float32, _ int, _ vectorindex.Filter) ([]vectorindex.Match, error) {
			if embedding[0] == 1 {
				return nil, errors.New("index unavailable")
			}

			return []vectorindex.Match{match("survivor", 0.4)}, nil
		},
	}

	engine := NewEngine(Params{Embedder: embedder, Index: index, Rules: fixedRules("broken", "healthy"), Threshold: 0.005})

	got := engine.Search(context.Background(), "q", "en", 5)

	assert.Equal(t, []string{"survivor"}, got)
}

func TestEngine_Search_TopKBoundAndOverfetch(t *testing.T) {
	embedder := &stubEmbedder{}

	var sawTopK int

	index := &stubIndex{
		queryFunc: func(_ context.Context, _ []float32, topK int, _ vectorindex.Filter) ([]vectorindex.Match, error) {
			sawTopK = topK

			return []vectorindex.Match{
				match("a", 0.9), match("b", 0.8), match("c", 0.7), match("d", 0.6),
			}, nil
		},
	}

	engine := NewEngine(Params{Embedder: embedder, Index: index, Rules: fixedRules("only"), Threshold: 0.005})

	got := engine.Search(context.Background(), "q", "en", 2)

	assert.Equal(t, []string{"a", "b"}, got)
	// the index is asked for twice the requested depth per variation
	assert.Equal(t, 4, sawTopK)
}

func TestEngine_Search_LanguageFilter(t *testing.T) {
	embedder := &stubEmbedder{}

	var sawFilter vectorindex.Filter

	index := &stubIndex{
		queryFunc: func(_ context.Context, _ []float32, _ int, filter vectorindex.Filter) ([]vectorindex.Match, error) {
			sawFilter = filter

			return nil, nil
		},
	}

	engine := NewEngine(Params{Embedder: embedder, Index: index, Rules: fixedRules("only"), Threshold: 0.005})

	engine.Search(context.Background(), "q", "ja", 5)
	assert.Equal(t, vectorindex.Filter{Language: "ja"}, sawFilter)

	engine.Search(context.Background(), "q", "", 5)
	assert.Equal(t, vectorindex.Filter{}, sawFilter)
}

func TestEngine_Search_VariationEmbeddingCached(t *testing.T) {
	embedder := &stubEmbedder{}
	index := &stubIndex{}

	engine := NewEngine(Params{
		Embedder:  embedder,
		Index:     index,
		Rules:     fixedRules("repeat", "repeat"),
		Threshold: 0.005,
		CacheSize: 16,
	})

	engine.Search(context.Background(), "q", "en", 5)
	require.Equal(t, int64(1), embedder.calls.Load())

	engine.Search(context.Background(), "q", "en", 5)
	assert.Equal(t, int64(1), embedder.calls.Load())
}

// cosine returns the cosine similarity of two unit vectors (their dot product).
func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}

	return dot
}

func TestEngine_Search_CosineScoresWithDeterministicEmbeddings(t *testing.T) {
	embedder := embeddings.NewMockClient()

	corpus := []string{
		"Menu Item: Black Garlic Oil Ramen\nPrice: 1480\nDescription: Rich tonkotsu with black garlic oil",
		"Restaurant Detail: Opening Hours\nDescription: 11:00 to 21:00 daily",
		"Menu Item: Gyoza\nPrice: 480\nDescription: Pan-fried dumplings",
	}

	// In-memory index: rank the corpus by cosine similarity against the query
	// embedding, same scoring the Postgres implementation computes in SQL.
	index := &stubIndex{
		queryFunc: func(ctx context.Context, embedding []float32, topK int, _ vectorindex.Filter) ([]vectorindex.Match, error) {
			matches := make([]vectorindex.Match, 0, len(corpus))
			for _, content := range corpus {
				vec, err := embedder.CreateEmbedding(ctx, content)
				if err != nil {
					return nil, err
				}

				matches = append(matches, match(content, cosine(embedding, vec)))
			}

			sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
			if len(matches) > topK {
				matches = matches[:topK]
			}

			return matches, nil
		},
	}

	// One variation is the stored content itself, so its embedding is identical
	// to the indexed vector and scores a full 1.0, outranking everything else.
	engine := NewEngine(Params{
		Embedder:  embedder,
		Index:     index,
		Rules:     fixedRules(corpus[0], "black garlic ramen price"),
		Threshold: 0.005,
		CacheSize: 16,
	})

	got := engine.Search(context.Background(), "how much is black garlic oil ramen", "en", 3)

	require.NotEmpty(t, got)
	assert.Equal(t, corpus[0], got[0])
}

func TestEngine_Search_ZeroTopK(t *testing.T) {
	engine := NewEngine(Params{Embedder: &stubEmbedder{}, Index: &stubIndex{}, Threshold: 0.005})
	assert.Empty(t, engine.Search(context.Background(), "q", "en", 0))
}

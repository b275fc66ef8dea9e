// Package vectorindex stores knowledge chunk embeddings and serves
// nearest-neighbor queries over them.
package vectorindex

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/mianwuxin/chatbot-backend/internal/models"
)

// Match is one ranked query result. Score is cosine similarity, higher is better.
type Match struct {
	Score float64
	Chunk models.KnowledgeChunk
}

// Record is one (id, embedding, chunk) triple for upsert.
type Record struct {
	ID        string
	Embedding []float32
	Chunk     models.KnowledgeChunk
}

// Filter restricts a query by chunk metadata. The zero value applies no filter.
type Filter struct {
	Language string
}

// Stats describes the current state of the index.
type Stats struct {
	TotalVectors int64 `json:"total_vectors"`
	Dimension    int   `json:"dimension"`
}

// Index is the vector index contract: approximate nearest-neighbor search with
// metadata filtering, whole-record upserts, and a full reset for resync.
type Index interface {
	Query(ctx context.Context, embedding []float32, topK int, filter Filter) ([]Match, error)
	Upsert(ctx context.Context, records []Record) error
	DeleteAll(ctx context.Context) error
	Stats(ctx context.Context) (Stats, error)
	Ping(ctx context.Context) error
}

// ChunkID derives the deterministic record id for a chunk from its source,
// position and a content prefix, so re-ingesting identical data overwrites
// rather than duplicates.
func ChunkID(chunk models.KnowledgeChunk) string {
	prefix := chunk.Content
	if len(prefix) > 100 {
		prefix = prefix[:100]
	}

	sum := sha256.Sum256([]byte(prefix))

	return fmt.Sprintf("doc_%s_%d_%x", chunk.Source, chunk.ChunkIndex, sum[:8])
}

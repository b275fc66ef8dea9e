package vectorindex

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PostgresIndex implements Index on a Postgres table with a pgvector column.
// Similarity uses cosine distance (<=>); score = 1 - distance.
type PostgresIndex struct {
	db        *pgxpool.Pool
	dimension int
}

var _ Index = (*PostgresIndex)(nil)

// NewPostgresIndex creates a PostgresIndex. dimension must match the vector column.
func NewPostgresIndex(db *pgxpool.Pool, dimension int) *PostgresIndex {
	return &PostgresIndex{db: db, dimension: dimension}
}

// Query returns up to topK nearest chunks to the given embedding, most similar
// first. An empty filter language disables the language restriction.
func (i *PostgresIndex) Query(ctx context.Context, embedding []float32, topK int, filter Filter) ([]Match, error) {
	vec := pgvector.NewVector(embedding)

	rows, err := i.db.Query(ctx, `
		SELECT content, language, document_type, source, chunk_index, total_chunks, source_ids,
		       (1 - (embedding <=> $1)) AS score
		FROM knowledge_chunks
		WHERE ($2 = '' OR language = $2)
		ORDER BY embedding <=> $1
		LIMIT $3`, vec, filter.Language, topK)
	if err != nil {
		return nil, fmt.Errorf("query knowledge chunks: %w", err)
	}
	defer rows.Close()

	var matches []Match

	for rows.Next() {
		var m Match
		if err := rows.Scan(
			&m.Chunk.Content, &m.Chunk.Language, &m.Chunk.DocumentType, &m.Chunk.Source,
			&m.Chunk.ChunkIndex, &m.Chunk.TotalChunks, &m.Chunk.SourceIDs, &m.Score,
		); err != nil {
			return nil, fmt.Errorf("scan knowledge chunk: %w", err)
		}

		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating knowledge chunks: %w", err)
	}

	return matches, nil
}

// Upsert writes whole records keyed by id; existing rows are fully replaced.
func (i *PostgresIndex) Upsert(ctx context.Context, records []Record) error {
	for _, rec := range records {
		if len(rec.Embedding) != i.dimension {
			return fmt.Errorf("upsert %s: embedding dimension %d, want %d", rec.ID, len(rec.Embedding), i.dimension)
		}

		_, err := i.db.Exec(ctx, `
			INSERT INTO knowledge_chunks
				(id, embedding, content, language, document_type, source, chunk_index, total_chunks, source_ids, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
			ON CONFLICT (id) DO UPDATE SET
				embedding = EXCLUDED.embedding,
				content = EXCLUDED.content,
				language = EXCLUDED.language,
				document_type = EXCLUDED.document_type,
				source = EXCLUDED.source,
				chunk_index = EXCLUDED.chunk_index,
				total_chunks = EXCLUDED.total_chunks,
				source_ids = EXCLUDED.source_ids,
				created_at = now()`,
			rec.ID, pgvector.NewVector(rec.Embedding), rec.Chunk.Content, rec.Chunk.Language,
			rec.Chunk.DocumentType, rec.Chunk.Source, rec.Chunk.ChunkIndex, rec.Chunk.TotalChunks,
			rec.Chunk.SourceIDs,
		)
		if err != nil {
			return fmt.Errorf("upsert knowledge chunk %s: %w", rec.ID, err)
		}
	}

	return nil
}

// DeleteAll wipes the index. Used before a full resync.
func (i *PostgresIndex) DeleteAll(ctx context.Context) error {
	if _, err := i.db.Exec(ctx, `DELETE FROM knowledge_chunks`); err != nil {
		return fmt.Errorf("delete all knowledge chunks: %w", err)
	}

	return nil
}

// Stats reports the vector count and configured dimension.
func (i *PostgresIndex) Stats(ctx context.Context) (Stats, error) {
	var total int64
	if err := i.db.QueryRow(ctx, `SELECT count(*) FROM knowledge_chunks`).Scan(&total); err != nil {
		return Stats{}, fmt.Errorf("count knowledge chunks: %w", err)
	}

	return Stats{TotalVectors: total, Dimension: i.dimension}, nil
}

// Ping verifies the backing store is reachable.
func (i *PostgresIndex) Ping(ctx context.Context) error {
	if err := i.db.Ping(ctx); err != nil {
		return fmt.Errorf("ping vector index: %w", err)
	}

	return nil
}

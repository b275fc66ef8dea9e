package models

// KnowledgeChunk is a unit of retrievable restaurant knowledge: a bounded group
// of source rows flattened into one embeddable text block. Updates are
// whole-record upserts keyed by a deterministic id; there is no partial mutation.
type KnowledgeChunk struct {
	Content      string  `json:"content"`
	Language     string  `json:"language"`
	DocumentType string  `json:"document_type"`
	Source       string  `json:"source"`
	ChunkIndex   int     `json:"chunk_index"`
	TotalChunks  int     `json:"total_chunks"`
	SourceIDs    []int64 `json:"source_ids,omitempty"` // back-reference to source rows, traceability only
}

// SearchCandidate is a transient per-variation search hit. Candidates are
// deduplicated by exact content and discarded once retrieval returns.
type SearchCandidate struct {
	Content string
	Score   float64
}

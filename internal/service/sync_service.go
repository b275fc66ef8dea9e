package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/mianwuxin/chatbot-backend/internal/embeddings"
	"github.com/mianwuxin/chatbot-backend/internal/models"
	"github.com/mianwuxin/chatbot-backend/internal/vectorindex"
)

// ErrNoSourceData is returned when both source tables are empty; resyncing an
// empty knowledge base would leave the index wiped for nothing.
var ErrNoSourceData = errors.New("no source data to sync")

// Source identifiers and document types tagged onto knowledge chunks.
const (
	sourceMenuItems         = "menu_items"
	sourceRestaurantDetails = "restaurant_details"

	docTypeMenuChunk   = "menu_item_chunk"
	docTypeDetailChunk = "restaurant_detail_chunk"
)

// SyncService rebuilds the vector index from the relational source tables:
// full wipe, re-chunk, re-embed, upsert.
type SyncService struct {
	source     RestaurantSource
	embedder   embeddings.Client
	index      vectorindex.Index
	chunkSize  int
	batchSize  int
	dimensions int
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// SyncServiceParams configures SyncService.
type SyncServiceParams struct {
	Source     RestaurantSource
	Embedder   embeddings.Client
	Index      vectorindex.Index
	ChunkSize  int
	BatchSize  int
	Dimensions int
	// RateLimit caps embedding API calls per second; <= 0 disables limiting.
	RateLimit int
	Logger    *slog.Logger
}

// NewSyncService creates a SyncService.
func NewSyncService(p SyncServiceParams) *SyncService {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Inf
	if p.RateLimit > 0 {
		limit = rate.Limit(p.RateLimit)
	}

	return &SyncService{
		source:     p.Source,
		embedder:   p.Embedder,
		index:      p.Index,
		chunkSize:  p.ChunkSize,
		batchSize:  p.BatchSize,
		dimensions: p.Dimensions,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
	}
}

// SyncReport summarizes one resync run.
type SyncReport struct {
	ChunksUploaded int
	ChunksSkipped  int
}

// Resync wipes the vector index and re-derives every knowledge chunk from the
// source tables. An embedding failure or dimension mismatch is fatal for that
// chunk only; the batch continues without it.
func (s *SyncService) Resync(ctx context.Context) (SyncReport, error) {
	report := SyncReport{}

	if err := s.index.DeleteAll(ctx); err != nil {
		return report, fmt.Errorf("reset vector index: %w", err)
	}

	menuItems, err := s.source.ListMenuItems(ctx)
	if err != nil {
		return report, fmt.Errorf("fetch menu items: %w", err)
	}

	details, err := s.source.ListRestaurantDetails(ctx)
	if err != nil {
		return report, fmt.Errorf("fetch restaurant details: %w", err)
	}

	chunks := BuildMenuChunks(menuItems, s.chunkSize)
	chunks = append(chunks, BuildDetailChunks(details, s.chunkSize)...)

	if len(chunks) == 0 {
		return report, ErrNoSourceData
	}

	s.logger.Info("sync: rebuilding index",
		"menu_items", len(menuItems),
		"restaurant_details", len(details),
		"chunks", len(chunks),
	)

	var records []vectorindex.Record

	for _, chunk := range chunks {
		if err := s.limiter.Wait(ctx); err != nil {
			return report, fmt.Errorf("rate limiter: %w", err)
		}

		embedding, err := s.embedder.CreateEmbedding(ctx, chunk.Content)
		if err != nil {
			s.logger.Warn("sync: skip chunk, embedding failed",
				"source", chunk.Source, "chunk_index", chunk.ChunkIndex, "error", err)
			report.ChunksSkipped++

			continue
		}

		if len(embedding) != s.dimensions {
			s.logger.Error("sync: skip chunk, dimension mismatch",
				"source", chunk.Source, "chunk_index", chunk.ChunkIndex,
				"got", len(embedding), "want", s.dimensions)
			report.ChunksSkipped++

			continue
		}

		records = append(records, vectorindex.Record{
			ID:        vectorindex.ChunkID(chunk),
			Embedding: embedding,
			Chunk:     chunk,
		})
	}

	for start := 0; start < len(records); start += s.batchSize {
		end := min(start+s.batchSize, len(records))

		if err := s.index.Upsert(ctx, records[start:end]); err != nil {
			return report, fmt.Errorf("upsert batch: %w", err)
		}

		report.ChunksUploaded += end - start
	}

	stats, err := s.index.Stats(ctx)
	if err != nil {
		s.logger.Warn("sync: index stats unavailable", "error", err)
	}

	s.logger.Info("sync: index rebuilt",
		"uploaded", report.ChunksUploaded,
		"skipped", report.ChunksSkipped,
		"total_vectors", stats.TotalVectors,
	)

	return report, nil
}

// BuildMenuChunks flattens menu items into knowledge chunks of at most size
// rows each, tagged with their position within the full set.
func BuildMenuChunks(items []models.MenuItem, size int) []models.KnowledgeChunk {
	if len(items) == 0 || size <= 0 {
		return nil
	}

	total := (len(items) + size - 1) / size
	chunks := make([]models.KnowledgeChunk, 0, total)

	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		group := items[start:end]

		lines := make([]string, 0, len(group))
		ids := make([]int64, 0, len(group))

		for _, item := range group {
			lines = append(lines, fmt.Sprintf("Menu Item: %s\nPrice: %s\nDescription: %s", item.Name, item.Price, item.Description))
			ids = append(ids, item.ID)
		}

		chunks = append(chunks, models.KnowledgeChunk{
			Content:      strings.Join(lines, "\n"),
			Language:     "en",
			DocumentType: docTypeMenuChunk,
			Source:       sourceMenuItems,
			ChunkIndex:   start / size,
			TotalChunks:  total,
			SourceIDs:    ids,
		})
	}

	return chunks
}

// BuildDetailChunks flattens restaurant detail rows into knowledge chunks of
// at most size rows each.
func BuildDetailChunks(details []models.RestaurantDetail, size int) []models.KnowledgeChunk {
	if len(details) == 0 || size <= 0 {
		return nil
	}

	total := (len(details) + size - 1) / size
	chunks := make([]models.KnowledgeChunk, 0, total)

	for start := 0; start < len(details); start += size {
		end := min(start+size, len(details))
		group := details[start:end]

		lines := make([]string, 0, len(group))
		ids := make([]int64, 0, len(group))

		for _, detail := range group {
			lines = append(lines, fmt.Sprintf("Restaurant Detail: %s\nDescription: %s", detail.Details, detail.Description))
			ids = append(ids, detail.ID)
		}

		chunks = append(chunks, models.KnowledgeChunk{
			Content:      strings.Join(lines, "\n"),
			Language:     "en",
			DocumentType: docTypeDetailChunk,
			Source:       sourceRestaurantDetails,
			ChunkIndex:   start / size,
			TotalChunks:  total,
			SourceIDs:    ids,
		})
	}

	return chunks
}

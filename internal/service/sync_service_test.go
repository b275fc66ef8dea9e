package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mianwuxin/chatbot-backend/internal/embeddings"
	"github.com/mianwuxin/chatbot-backend/internal/models"
	"github.com/mianwuxin/chatbot-backend/internal/vectorindex"
)

func menuItems(n int) []models.MenuItem {
	items := make([]models.MenuItem, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, models.MenuItem{
			ID:          int64(i),
			Name:        fmt.Sprintf("Item %d", i),
			Price:       fmt.Sprintf("%d", 900+i*10),
			Description: fmt.Sprintf("Description %d", i),
		})
	}

	return items
}

func newSyncService(source *mockRestaurantSource, embedder embeddings.Client, index *mockIndex) *SyncService {
	return NewSyncService(SyncServiceParams{
		Source:     source,
		Embedder:   embedder,
		Index:      index,
		ChunkSize:  5,
		BatchSize:  100,
		Dimensions: 768,
	})
}

func TestBuildMenuChunks(t *testing.T) {
	chunks := BuildMenuChunks(menuItems(7), 5)
	require.Len(t, chunks, 2)

	first, second := chunks[0], chunks[1]

	assert.Equal(t, 0, first.ChunkIndex)
	assert.Equal(t, 1, second.ChunkIndex)
	assert.Equal(t, 2, first.TotalChunks)
	assert.Equal(t, 2, second.TotalChunks)
	assert.Equal(t, "menu_items", first.Source)
	assert.Equal(t, "menu_item_chunk", first.DocumentType)
	assert.Equal(t, "en", first.Language)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, first.SourceIDs)
	assert.Equal(t, []int64{6, 7}, second.SourceIDs)

	assert.Contains(t, first.Content, "Menu Item: Item 1\nPrice: 910\nDescription: Description 1")
	assert.Contains(t, second.Content, "Menu Item: Item 7")
	assert.NotContains(t, first.Content, "Item 6")
}

func TestBuildDetailChunks(t *testing.T) {
	details := []models.RestaurantDetail{
		{ID: 1, Details: "Opening Hours", Description: "11:00 to 21:00 daily"},
		{ID: 2, Details: "Seating", Description: "12 counter seats"},
	}

	chunks := BuildDetailChunks(details, 5)
	require.Len(t, chunks, 1)

	chunk := chunks[0]
	assert.Equal(t, "restaurant_details", chunk.Source)
	assert.Equal(t, "restaurant_detail_chunk", chunk.DocumentType)
	assert.Equal(t, 1, chunk.TotalChunks)
	assert.Equal(t, []int64{1, 2}, chunk.SourceIDs)
	assert.Equal(t, "Restaurant Detail: Opening Hours\nDescription: 11:00 to 21:00 daily\nRestaurant Detail: Seating\nDescription: 12 counter seats", chunk.Content)
}

func TestBuildChunksEmptyInput(t *testing.T) {
	assert.Nil(t, BuildMenuChunks(nil, 5))
	assert.Nil(t, BuildDetailChunks(nil, 5))
	assert.Nil(t, BuildMenuChunks(menuItems(3), 0))
}

func TestResyncWipesThenUploads(t *testing.T) {
	source := &mockRestaurantSource{
		menuFunc: func(_ context.Context) ([]models.MenuItem, error) {
			return menuItems(7), nil
		},
	}
	embedder := embeddings.NewMockClient()
	index := &mockIndex{}

	svc := newSyncService(source, embedder, index)

	report, err := svc.Resync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, index.deletes)
	assert.Equal(t, 2, report.ChunksUploaded)
	assert.Equal(t, 0, report.ChunksSkipped)

	require.Len(t, index.upserts, 1)
	records := index.upserts[0]
	require.Len(t, records, 2)

	// Record ids are derived deterministically from chunk identity, and each
	// record carries the deterministic embedding of its own content at the
	// configured dimension.
	chunks := BuildMenuChunks(menuItems(7), 5)
	for i, chunk := range chunks {
		assert.Equal(t, vectorindex.ChunkID(chunk), records[i].ID)

		want, err := embedder.CreateEmbedding(context.Background(), chunk.Content)
		require.NoError(t, err)
		assert.Len(t, records[i].Embedding, 768)
		assert.Equal(t, want, records[i].Embedding)
	}
}

func TestResyncSkipsFailedEmbeddings(t *testing.T) {
	source := &mockRestaurantSource{
		menuFunc: func(_ context.Context) ([]models.MenuItem, error) {
			return menuItems(12), nil
		},
	}
	embedder := &mockEmbedder{}
	embedder.embedFunc = func(_ context.Context, _ string) ([]float32, error) {
		if embedder.calls == 2 {
			return nil, errors.New("rate limited")
		}

		return make([]float32, 768), nil
	}
	index := &mockIndex{}

	svc := newSyncService(source, embedder, index)

	report, err := svc.Resync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.ChunksUploaded)
	assert.Equal(t, 1, report.ChunksSkipped)
}

func TestResyncSkipsDimensionMismatch(t *testing.T) {
	source := &mockRestaurantSource{
		menuFunc: func(_ context.Context) ([]models.MenuItem, error) {
			return menuItems(3), nil
		},
	}
	embedder := &mockEmbedder{
		embedFunc: func(_ context.Context, _ string) ([]float32, error) {
			return make([]float32, 512), nil
		},
	}
	index := &mockIndex{}

	svc := newSyncService(source, embedder, index)

	report, err := svc.Resync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.ChunksUploaded)
	assert.Equal(t, 1, report.ChunksSkipped)
	assert.Empty(t, index.upserts)
}

func TestResyncEmptySources(t *testing.T) {
	svc := newSyncService(&mockRestaurantSource{}, &mockEmbedder{}, &mockIndex{})

	_, err := svc.Resync(context.Background())
	require.ErrorIs(t, err, ErrNoSourceData)
}

func TestResyncDeleteFailureAborts(t *testing.T) {
	index := &mockIndex{
		deleteAllFunc: func(_ context.Context) error {
			return errors.New("index unavailable")
		},
	}
	embedder := &mockEmbedder{}

	svc := newSyncService(&mockRestaurantSource{}, embedder, index)

	_, err := svc.Resync(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reset vector index")
	assert.Equal(t, 0, embedder.calls)
}

func TestResyncUpsertFailurePropagates(t *testing.T) {
	source := &mockRestaurantSource{
		menuFunc: func(_ context.Context) ([]models.MenuItem, error) {
			return menuItems(3), nil
		},
	}
	index := &mockIndex{
		upsertFunc: func(_ context.Context, _ []vectorindex.Record) error {
			return errors.New("write conflict")
		},
	}

	svc := newSyncService(source, &mockEmbedder{}, index)

	_, err := svc.Resync(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert batch")
}

func TestResyncBatchesUpserts(t *testing.T) {
	source := &mockRestaurantSource{
		menuFunc: func(_ context.Context) ([]models.MenuItem, error) {
			return menuItems(12), nil
		},
	}
	index := &mockIndex{}

	svc := NewSyncService(SyncServiceParams{
		Source:     source,
		Embedder:   &mockEmbedder{},
		Index:      index,
		ChunkSize:  5,
		BatchSize:  2,
		Dimensions: 768,
	})

	report, err := svc.Resync(context.Background())
	require.NoError(t, err)

	// 12 items at chunk size 5 make 3 chunks, upserted in batches of 2.
	assert.Equal(t, 3, report.ChunksUploaded)
	require.Len(t, index.upserts, 2)
	assert.Len(t, index.upserts[0], 2)
	assert.Len(t, index.upserts[1], 1)
}

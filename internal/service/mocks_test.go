package service

import (
	"context"

	"github.com/mianwuxin/chatbot-backend/internal/models"
	"github.com/mianwuxin/chatbot-backend/internal/vectorindex"
)

type mockHistoryStore struct {
	recentFunc func(ctx context.Context, sessionID string, limit int) ([]models.ChatTurn, error)
	insertFunc func(ctx context.Context, turn models.ChatTurn) error
	deleteFunc func(ctx context.Context, sessionID string) error
	pingFunc   func(ctx context.Context) error

	inserted []models.ChatTurn
}

func (m *mockHistoryStore) RecentBySession(ctx context.Context, sessionID string, limit int) ([]models.ChatTurn, error) {
	if m.recentFunc != nil {
		return m.recentFunc(ctx, sessionID, limit)
	}

	return nil, nil
}

func (m *mockHistoryStore) Insert(ctx context.Context, turn models.ChatTurn) error {
	m.inserted = append(m.inserted, turn)

	if m.insertFunc != nil {
		return m.insertFunc(ctx, turn)
	}

	return nil
}

func (m *mockHistoryStore) DeleteBySession(ctx context.Context, sessionID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, sessionID)
	}

	return nil
}

func (m *mockHistoryStore) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}

	return nil
}

type mockRetriever struct {
	searchFunc func(ctx context.Context, query, language string, topK int) []string
}

func (m *mockRetriever) Search(ctx context.Context, query, language string, topK int) []string {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, query, language, topK)
	}

	return nil
}

type mockGenerator struct {
	generateFunc func(ctx context.Context, prompt string) (string, error)

	prompts []string
}

func (m *mockGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)

	if m.generateFunc != nil {
		return m.generateFunc(ctx, prompt)
	}

	return "generated", nil
}

type mockRestaurantSource struct {
	menuFunc    func(ctx context.Context) ([]models.MenuItem, error)
	detailsFunc func(ctx context.Context) ([]models.RestaurantDetail, error)
}

func (m *mockRestaurantSource) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	if m.menuFunc != nil {
		return m.menuFunc(ctx)
	}

	return nil, nil
}

func (m *mockRestaurantSource) ListRestaurantDetails(ctx context.Context) ([]models.RestaurantDetail, error) {
	if m.detailsFunc != nil {
		return m.detailsFunc(ctx)
	}

	return nil, nil
}

type mockIndex struct {
	queryFunc     func(ctx context.Context, embedding []float32, topK int, filter vectorindex.Filter) ([]vectorindex.Match, error)
	upsertFunc    func(ctx context.Context, records []vectorindex.Record) error
	deleteAllFunc func(ctx context.Context) error
	pingFunc      func(ctx context.Context) error

	upserts [][]vectorindex.Record
	deletes int
}

func (m *mockIndex) Query(ctx context.Context, embedding []float32, topK int, filter vectorindex.Filter) ([]vectorindex.Match, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, embedding, topK, filter)
	}

	return nil, nil
}

func (m *mockIndex) Upsert(ctx context.Context, records []vectorindex.Record) error {
	m.upserts = append(m.upserts, records)

	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, records)
	}

	return nil
}

func (m *mockIndex) DeleteAll(ctx context.Context) error {
	m.deletes++

	if m.deleteAllFunc != nil {
		return m.deleteAllFunc(ctx)
	}

	return nil
}

func (m *mockIndex) Stats(ctx context.Context) (vectorindex.Stats, error) {
	return vectorindex.Stats{}, nil
}

func (m *mockIndex) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}

	return nil
}

type mockEmbedder struct {
	embedFunc func(ctx context.Context, text string) ([]float32, error)

	calls int
}

func (m *mockEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	m.calls++

	if m.embedFunc != nil {
		return m.embedFunc(ctx, text)
	}

	return make([]float32, 768), nil
}

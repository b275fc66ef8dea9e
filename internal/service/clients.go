package service

import (
	"context"

	"github.com/mianwuxin/chatbot-backend/internal/models"
)

// TextGenerator produces a completion for a prompt.
// Implemented by provider-specific clients (e.g. Google Gemini, OpenAI).
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// HistoryStore is the append-only per-session chat record.
type HistoryStore interface {
	RecentBySession(ctx context.Context, sessionID string, limit int) ([]models.ChatTurn, error)
	Insert(ctx context.Context, turn models.ChatTurn) error
	DeleteBySession(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}

// KnowledgeRetriever returns knowledge snippets for a query. It degrades to an
// empty result instead of failing; see the retrieval package.
type KnowledgeRetriever interface {
	Search(ctx context.Context, query, language string, topK int) []string
}

// RestaurantSource reads the knowledge source tables.
type RestaurantSource interface {
	ListMenuItems(ctx context.Context) ([]models.MenuItem, error)
	ListRestaurantDetails(ctx context.Context) ([]models.RestaurantDetail, error)
}

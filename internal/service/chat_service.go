// Package service contains the request orchestration: chat handling, session
// management, knowledge resync, and the summary operation.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mianwuxin/chatbot-backend/internal/models"
	"github.com/mianwuxin/chatbot-backend/internal/prompt"
)

// ChatService orchestrates one chat request: history load and knowledge
// retrieval (both degradable), prompt assembly, a single generation call, and
// persistence. Persistence is the only step whose failure fails the request;
// a silently lost history row would corrupt future context.
type ChatService struct {
	history       HistoryStore
	retriever     KnowledgeRetriever
	generator     TextGenerator
	historyLimit  int
	contextWindow int
	topK          int
	logger        *slog.Logger
}

// ChatServiceParams configures ChatService.
type ChatServiceParams struct {
	History       HistoryStore
	Retriever     KnowledgeRetriever
	Generator     TextGenerator
	HistoryLimit  int
	ContextWindow int
	TopK          int
	Logger        *slog.Logger
}

// NewChatService creates a ChatService.
func NewChatService(p ChatServiceParams) *ChatService {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ChatService{
		history:       p.History,
		retriever:     p.Retriever,
		generator:     p.Generator,
		historyLimit:  p.HistoryLimit,
		contextWindow: p.ContextWindow,
		topK:          p.TopK,
		logger:        logger,
	}
}

// HandleChat runs the full chat sequence for one request and returns the
// generated response together with the persistence timestamp.
func (s *ChatService) HandleChat(ctx context.Context, sessionID, query, language string) (models.ChatResponse, error) {
	var (
		historyRes   result[[]models.ChatTurn]
		retrievalRes result[[]string]
	)

	// History load and knowledge retrieval are independent; run them together.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		historyRes = s.loadHistory(gctx, sessionID)

		return nil
	})
	g.Go(func() error {
		retrievalRes = success(s.retriever.Search(gctx, query, language, s.topK))

		return nil
	})
	// Both steps absorb their own failures.
	_ = g.Wait()

	if historyRes.Degraded() {
		s.logger.Warn("chat: history load degraded to empty", "session_id", sessionID, "reason", historyRes.Reason())
	}

	history := historyRes.Value()
	snippets := retrievalRes.Value()

	promptText := prompt.BuildPrompt(
		query,
		language,
		prompt.KnowledgeContext(snippets),
		prompt.BuildConversationContext(history, s.contextWindow),
	)

	responseText := generateWithFallback(ctx, s.generator, s.logger, promptText)

	now := time.Now().UTC()
	turn := models.ChatTurn{
		ID:        uuid.Must(uuid.NewV7()),
		SessionID: sessionID,
		Query:     query,
		Response:  responseText,
		Language:  language,
		CreatedAt: now,
	}

	if err := s.history.Insert(ctx, turn); err != nil {
		return models.ChatResponse{}, fmt.Errorf("store chat turn: %w", err)
	}

	s.logger.Info("chat: request completed",
		"session_id", sessionID,
		"history_turns", len(history),
		"context_snippets", len(snippets),
	)

	return models.ChatResponse{
		Response:  responseText,
		SessionID: sessionID,
		Timestamp: now.Format(time.RFC3339),
	}, nil
}

// ClearSession hard-deletes a session's history. Store errors propagate.
func (s *ChatService) ClearSession(ctx context.Context, sessionID string) error {
	if err := s.history.DeleteBySession(ctx, sessionID); err != nil {
		return fmt.Errorf("clear session %s: %w", sessionID, err)
	}

	s.logger.Info("chat: session cleared", "session_id", sessionID)

	return nil
}

// loadHistory fetches the most recent turns and reverses them into
// chronological order. A store failure degrades to empty history: a
// fresh-feeling conversation beats a hard failure.
func (s *ChatService) loadHistory(ctx context.Context, sessionID string) result[[]models.ChatTurn] {
	turns, err := s.history.RecentBySession(ctx, sessionID, s.historyLimit)
	if err != nil {
		return degraded[[]models.ChatTurn](nil, err)
	}

	slices.Reverse(turns)

	return success(turns)
}

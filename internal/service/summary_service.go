package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mianwuxin/chatbot-backend/internal/prompt"
)

// SummaryService renders the whole knowledge base into one analytical prompt
// and asks the model to enumerate completeness gaps.
type SummaryService struct {
	source    RestaurantSource
	generator TextGenerator
	logger    *slog.Logger
}

// NewSummaryService creates a SummaryService.
func NewSummaryService(source RestaurantSource, generator TextGenerator, logger *slog.Logger) *SummaryService {
	if logger == nil {
		logger = slog.Default()
	}

	return &SummaryService{source: source, generator: generator, logger: logger}
}

// Summarize fetches every menu item and restaurant detail, builds the analyst
// prompt and returns the model's free-text answer. Source fetch failures
// propagate; generation failures degrade to the fixed apologies, same as chat.
func (s *SummaryService) Summarize(ctx context.Context, language string) (string, error) {
	menuItems, err := s.source.ListMenuItems(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch menu items: %w", err)
	}

	details, err := s.source.ListRestaurantDetails(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch restaurant details: %w", err)
	}

	s.logger.Info("summary: analyzing knowledge base",
		"language", language,
		"menu_items", len(menuItems),
		"restaurant_details", len(details),
	)

	// The analyst block rides in the knowledge-context slot of the chat
	// template, exactly like retrieved snippets would.
	analystContext := prompt.BuildSummaryPrompt(language, menuItems, details)
	promptText := prompt.BuildPrompt(
		prompt.SummaryQuery,
		language,
		analystContext,
		prompt.BuildConversationContext(nil, 0),
	)

	return generateWithFallback(ctx, s.generator, s.logger, promptText), nil
}

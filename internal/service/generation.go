package service

import (
	"context"
	"log/slog"
)

// Fixed user-visible fallbacks. A generation problem is never a protocol
// error: the request still succeeds with one of these.
const (
	// apologyEmptyResponse substitutes an empty completion.
	apologyEmptyResponse = "I apologize, but I'm having trouble generating a response right now. Please try again."
	// apologyGenerationFailed substitutes a failed generation call.
	apologyGenerationFailed = "I apologize, but I'm experiencing technical difficulties. Please try again later."
)

// generateWithFallback invokes the language model exactly once and maps the
// two failure shapes (call error, empty completion) to their fixed apologies.
func generateWithFallback(ctx context.Context, generator TextGenerator, logger *slog.Logger, promptText string) string {
	text, err := generator.GenerateText(ctx, promptText)
	if err != nil {
		logger.Error("generation: call failed", "error", err)

		return apologyGenerationFailed
	}

	if text == "" {
		logger.Warn("generation: empty completion")

		return apologyEmptyResponse
	}

	return text
}

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mianwuxin/chatbot-backend/internal/api/response"
)

// SummaryService defines the summary operation the handler depends on.
type SummaryService interface {
	Summarize(ctx context.Context, language string) (string, error)
}

// SummaryHandler handles knowledge base summary requests.
type SummaryHandler struct {
	service SummaryService
	logger  *slog.Logger
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(service SummaryService, logger *slog.Logger) *SummaryHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &SummaryHandler{service: service, logger: logger}
}

// Summary handles GET /summary/{language}.
func (h *SummaryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	language := r.PathValue("language")
	if language == "" {
		response.RespondBadRequest(w, "language is required")

		return
	}

	summary, err := h.service.Summarize(r.Context(), language)
	if err != nil {
		h.logger.Error("summary: request failed", "language", language, "error", err)
		response.RespondInternalServerError(w, "Failed to generate summary")

		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

// Package handlers contains the HTTP handlers for the chatbot API.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mianwuxin/chatbot-backend/internal/api/response"
	"github.com/mianwuxin/chatbot-backend/internal/models"
)

// ChatService defines the chat operations the handler depends on.
type ChatService interface {
	HandleChat(ctx context.Context, sessionID, query, language string) (models.ChatResponse, error)
	ClearSession(ctx context.Context, sessionID string) error
}

// ChatHandler handles HTTP requests for chat and session management.
type ChatHandler struct {
	service ChatService
	logger  *slog.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(service ChatService, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ChatHandler{service: service, logger: logger}
}

// Chat handles POST /chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("chat: malformed request body", "error", err)
		response.RespondInternalServerError(w, "Invalid request body")

		return
	}

	resp, err := h.service.HandleChat(r.Context(), req.SessionID, req.Query, req.Language)
	if err != nil {
		h.logger.Error("chat: request failed", "session_id", req.SessionID, "error", err)
		response.RespondInternalServerError(w, "Failed to process chat request")

		return
	}

	response.RespondJSON(w, http.StatusOK, resp)
}

// ClearSession handles DELETE /sessions/{session_id}.
func (h *ChatHandler) ClearSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")
	if sessionID == "" {
		response.RespondBadRequest(w, "session_id is required")

		return
	}

	if err := h.service.ClearSession(r.Context(), sessionID); err != nil {
		h.logger.Error("chat: session clear failed", "session_id", sessionID, "error", err)
		response.RespondInternalServerError(w, "Failed to clear session")

		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Session history cleared",
	})
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mianwuxin/chatbot-backend/internal/api/response"
	"github.com/mianwuxin/chatbot-backend/internal/service"
)

// SyncService defines the resync operation the handler depends on.
type SyncService interface {
	Resync(ctx context.Context) (service.SyncReport, error)
}

// SyncHandler handles knowledge base rebuild requests.
type SyncHandler struct {
	service SyncService
	logger  *slog.Logger
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(service SyncService, logger *slog.Logger) *SyncHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &SyncHandler{service: service, logger: logger}
}

// SyncResponse is the body for POST /updatedb.
type SyncResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// UpdateDB handles POST /updatedb: wipes and rebuilds the vector index from
// the source tables.
func (h *SyncHandler) UpdateDB(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Resync(r.Context())
	if err != nil {
		h.logger.Error("sync: resync failed", "error", err)

		if errors.Is(err, service.ErrNoSourceData) {
			response.RespondJSON(w, http.StatusOK, SyncResponse{
				Status:  "error",
				Message: "No source data to sync",
			})

			return
		}

		response.RespondJSON(w, http.StatusInternalServerError, SyncResponse{
			Status:  "error",
			Message: "Failed to update database",
		})

		return
	}

	response.RespondJSON(w, http.StatusOK, SyncResponse{
		Status:  "success",
		Message: fmt.Sprintf("Database updated: %d chunks uploaded, %d skipped", report.ChunksUploaded, report.ChunksSkipped),
	})
}

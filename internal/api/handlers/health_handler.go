package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/mianwuxin/chatbot-backend/internal/api/response"
	"github.com/mianwuxin/chatbot-backend/internal/service"
)

// HealthService defines the probe the health handler depends on.
type HealthService interface {
	Check(ctx context.Context) service.HealthReport
}

// HealthHandler handles liveness and readiness requests.
type HealthHandler struct {
	service HealthService
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(service HealthService) *HealthHandler {
	return &HealthHandler{service: service}
}

// HealthResponse is the body for GET /health.
type HealthResponse struct {
	Status    string               `json:"status"`
	Timestamp string               `json:"timestamp"`
	Services  service.HealthReport `json:"services"`
}

// Health handles GET /health. Degraded collaborators are reported in the body;
// the endpoint itself always answers 200 so orchestrators can read the detail.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	report := h.service.Check(r.Context())

	status := "healthy"
	if !report.Healthy() {
		status = "degraded"
	}

	response.RespondJSON(w, http.StatusOK, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  report,
	})
}

// Root handles GET /. A bare liveness message.
func (h *HealthHandler) Root(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, map[string]string{
		"message": "Restaurant Chatbot API is running",
	})
}

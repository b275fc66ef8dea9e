package service

import (
	"context"
	"log/slog"

	"github.com/mianwuxin/chatbot-backend/internal/vectorindex"
)

// HealthReport holds per-collaborator reachability for the health endpoint.
type HealthReport struct {
	Database      bool `json:"database"`
	VectorIndex   bool `json:"vectorIndex"`   //nolint:tagliatelle // API contract
	LanguageModel bool `json:"languageModel"` //nolint:tagliatelle // API contract
}

// Healthy reports whether every collaborator responded.
func (r HealthReport) Healthy() bool {
	return r.Database && r.VectorIndex && r.LanguageModel
}

// HealthService probes the three external collaborators.
type HealthService struct {
	history   HistoryStore
	index     vectorindex.Index
	generator TextGenerator
	logger    *slog.Logger
}

// NewHealthService creates a HealthService.
func NewHealthService(history HistoryStore, index vectorindex.Index, generator TextGenerator, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &HealthService{history: history, index: index, generator: generator, logger: logger}
}

// Check probes each collaborator. The language model probe performs one tiny
// generation; a reachable-but-empty completion counts as unhealthy.
func (s *HealthService) Check(ctx context.Context) HealthReport {
	report := HealthReport{}

	if err := s.history.Ping(ctx); err != nil {
		s.logger.Warn("health: database unreachable", "error", err)
	} else {
		report.Database = true
	}

	if err := s.index.Ping(ctx); err != nil {
		s.logger.Warn("health: vector index unreachable", "error", err)
	} else {
		report.VectorIndex = true
	}

	text, err := s.generator.GenerateText(ctx, "Test connection")
	if err != nil {
		s.logger.Warn("health: language model unreachable", "error", err)
	} else {
		report.LanguageModel = text != ""
	}

	return report
}

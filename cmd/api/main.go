package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mianwuxin/chatbot-backend/internal/api/handlers"
	"github.com/mianwuxin/chatbot-backend/internal/api/middleware"
	"github.com/mianwuxin/chatbot-backend/internal/config"
	"github.com/mianwuxin/chatbot-backend/internal/googleai"
	"github.com/mianwuxin/chatbot-backend/internal/openai"
	"github.com/mianwuxin/chatbot-backend/internal/repository"
	"github.com/mianwuxin/chatbot-backend/internal/retrieval"
	"github.com/mianwuxin/chatbot-backend/internal/service"
	"github.com/mianwuxin/chatbot-backend/internal/vectorindex"
	"github.com/mianwuxin/chatbot-backend/pkg/database"
)

// aiClient is the provider-agnostic surface both the Gemini and OpenAI
// wrappers satisfy.
type aiClient interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
}

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Configure slog with the log level from config
	setupLogging(cfg.LogLevel)

	// Initialize database connection
	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize the AI provider (embeddings + generation)
	ai, err := newAIClient(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize AI provider", "provider", cfg.AIProvider, "error", err)
		os.Exit(1)
	}
	slog.Info("AI provider initialized", "provider", cfg.AIProvider, "dimensions", cfg.EmbeddingDimensions)

	// Initialize repositories and the vector index
	historyRepo := repository.NewChatHistoryRepository(db)
	restaurantRepo := repository.NewRestaurantRepository(db)
	index := vectorindex.NewPostgresIndex(db, cfg.EmbeddingDimensions)

	// Initialize the retrieval engine
	engine := retrieval.NewEngine(retrieval.Params{
		Embedder:  ai,
		Index:     index,
		Threshold: cfg.SimilarityThreshold,
		CacheSize: cfg.EmbeddingCacheSize,
		Logger:    slog.Default(),
	})

	// Initialize services
	chatService := service.NewChatService(service.ChatServiceParams{
		History:       historyRepo,
		Retriever:     engine,
		Generator:     ai,
		HistoryLimit:  cfg.HistoryLimit,
		ContextWindow: cfg.ContextWindow,
		TopK:          cfg.SearchTopK,
		Logger:        slog.Default(),
	})
	syncService := service.NewSyncService(service.SyncServiceParams{
		Source:     restaurantRepo,
		Embedder:   ai,
		Index:      index,
		ChunkSize:  cfg.ChunkSize,
		BatchSize:  cfg.UpsertBatchSize,
		Dimensions: cfg.EmbeddingDimensions,
		RateLimit:  cfg.EmbeddingRateLimit,
		Logger:     slog.Default(),
	})
	summaryService := service.NewSummaryService(restaurantRepo, ai, slog.Default())
	healthService := service.NewHealthService(historyRepo, index, ai, slog.Default())

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(chatService, slog.Default())
	syncHandler := handlers.NewSyncHandler(syncService, slog.Default())
	summaryHandler := handlers.NewSummaryHandler(summaryService, slog.Default())
	healthHandler := handlers.NewHealthHandler(healthService)

	// Set up routes
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", healthHandler.Root)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("POST /chat", chatHandler.Chat)
	mux.HandleFunc("DELETE /sessions/{session_id}", chatHandler.ClearSession)
	mux.HandleFunc("POST /updatedb", syncHandler.UpdateDB)
	mux.HandleFunc("GET /summary/{language}", summaryHandler.Summary)

	// Apply middleware: request id first, then CORS, then logging
	var handler http.Handler = mux
	handler = middleware.Logging(slog.Default())(handler)
	handler = middleware.CORS(handler)
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
}

// newAIClient builds the provider client selected by AI_PROVIDER.
func newAIClient(ctx context.Context, cfg *config.Config) (aiClient, error) {
	switch cfg.AIProvider {
	case config.ProviderGemini:
		client, err := googleai.NewClient(ctx, cfg.GeminiAPIKey,
			googleai.WithDimensions(cfg.EmbeddingDimensions),
			googleai.WithMaxInputChars(cfg.EmbeddingMaxChars),
		)
		if err != nil {
			return nil, err
		}

		return client, nil
	case config.ProviderOpenAI:
		return openai.NewClient(cfg.OpenAIAPIKey,
			openai.WithDimensions(cfg.EmbeddingDimensions),
			openai.WithMaxInputChars(cfg.EmbeddingMaxChars),
		), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider %q", cfg.AIProvider)
	}
}

// setupLogging configures slog with the specified log level
func setupLogging(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	slog.SetDefault(slog.New(handler))
}

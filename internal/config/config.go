// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Supported AI providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds all application configuration.
type Config struct {
	DatabaseURL string
	Port        string
	LogLevel    string

	// AIProvider selects the embedding + generation backend ("gemini" or "openai").
	AIProvider   string
	GeminiAPIKey string
	OpenAIAPIKey string

	// EmbeddingDimensions is the fixed output dimension of the embedding model.
	// Every stored knowledge chunk must match it; a mismatch is a per-record
	// ingestion error.
	EmbeddingDimensions int

	// EmbeddingMaxChars caps the text sent to the embedding API. Longer input is
	// truncated before the call.
	EmbeddingMaxChars int

	// SimilarityThreshold is the minimum similarity score a vector match must
	// exceed to be kept. Deliberately permissive; tune per embedding model.
	SimilarityThreshold float64

	// SearchTopK is the number of knowledge snippets returned per chat request.
	SearchTopK int

	// HistoryLimit is how many stored turns are fetched per request;
	// ContextWindow is how many of those end up in the prompt.
	HistoryLimit  int
	ContextWindow int

	// ChunkSize is the number of source rows flattened into one knowledge chunk
	// during resync. UpsertBatchSize bounds each vector index upsert call.
	ChunkSize       int
	UpsertBatchSize int

	// EmbeddingRateLimit caps embedding API calls per second during resync.
	EmbeddingRateLimit int

	// EmbeddingCacheSize is the LRU capacity for query-variation embeddings.
	EmbeddingCacheSize int
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat retrieves an environment variable as a float or returns a default value.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// Load reads configuration from environment variables and returns a Config struct.
// It automatically loads .env file if it exists. A missing DATABASE_URL or missing
// credentials for the selected AI provider are startup errors.
func Load() (*Config, error) {
	// Load .env file if it exists. Skip logging when absent (e.g. env from secrets/parameter store).
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required but not set")
	}

	provider := getEnv("AI_PROVIDER", ProviderGemini)
	if provider != ProviderGemini && provider != ProviderOpenAI {
		return nil, fmt.Errorf("AI_PROVIDER must be %q or %q, got %q", ProviderGemini, ProviderOpenAI, provider)
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	openAIKey := os.Getenv("OPENAI_API_KEY")

	if provider == ProviderGemini && geminiKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable is required when AI_PROVIDER=gemini")
	}

	if provider == ProviderOpenAI && openAIKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable is required when AI_PROVIDER=openai")
	}

	cfg := &Config{
		DatabaseURL: databaseURL,
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		AIProvider:   provider,
		GeminiAPIKey: geminiKey,
		OpenAIAPIKey: openAIKey,

		EmbeddingDimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 768),
		EmbeddingMaxChars:   getEnvAsInt("EMBEDDING_MAX_CHARS", 8000),
		SimilarityThreshold: getEnvAsFloat("SIMILARITY_THRESHOLD", 0.005),
		SearchTopK:          getEnvAsInt("SEARCH_TOP_K", 5),
		HistoryLimit:        getEnvAsInt("HISTORY_LIMIT", 10),
		ContextWindow:       getEnvAsInt("CONTEXT_WINDOW", 5),
		ChunkSize:           getEnvAsInt("SYNC_CHUNK_SIZE", 5),
		UpsertBatchSize:     getEnvAsInt("UPSERT_BATCH_SIZE", 100),
		EmbeddingRateLimit:  getEnvAsInt("EMBEDDING_RATE_LIMIT", 5),
		EmbeddingCacheSize:  getEnvAsInt("EMBEDDING_CACHE_SIZE", 256),
	}

	if cfg.EmbeddingDimensions <= 0 {
		return nil, errors.New("EMBEDDING_DIMENSIONS must be a positive integer")
	}

	if cfg.ChunkSize <= 0 {
		return nil, errors.New("SYNC_CHUNK_SIZE must be a positive integer")
	}

	return cfg, nil
}

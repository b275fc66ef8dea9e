// Package embeddings defines the embedding client contract shared by the AI providers.
package embeddings

import "context"

// Client generates embedding vectors for text.
// Implemented by provider-specific clients (e.g. Google Gemini, OpenAI).
type Client interface {
	// CreateEmbedding generates an embedding vector for the given text.
	// The returned slice has the provider's fixed output dimension.
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

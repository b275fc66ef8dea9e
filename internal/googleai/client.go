// Package googleai provides a thin wrapper around the Google Gen AI SDK (Gemini API)
// for embeddings and text generation.
package googleai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"google.golang.org/genai"
)

var (
	// ErrEmptyInput is returned when CreateEmbedding is called with empty input.
	ErrEmptyInput = errors.New("googleai: input text is empty")
	// ErrInvalidDims is returned when dimensions is not positive.
	ErrInvalidDims = errors.New("googleai: embedding dimensions must be positive")
	// ErrNoEmbeddingInResponse is returned when the API response contains no embedding data.
	ErrNoEmbeddingInResponse = errors.New("googleai: no embedding in response")
	// ErrDimensionMismatch is returned when the response embedding length does not match configured dimensions.
	ErrDimensionMismatch = errors.New("googleai: embedding dimension mismatch")
)

const (
	defaultDimension      = 768
	defaultMaxInputChars  = 8000
	defaultEmbeddingModel = "text-embedding-004"
	defaultGenerateModel  = "gemini-2.5-flash"

	// embeddingTaskType optimizes the vectors for document retrieval.
	embeddingTaskType = "RETRIEVAL_DOCUMENT"
)

// Client calls the Gemini embeddings and generation APIs via the Google Gen AI SDK.
type Client struct {
	client         *genai.Client
	embeddingModel string
	generateModel  string
	dimensions     int
	maxInputChars  int
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithDimensions sets the requested embedding dimension (must match the index column).
func WithDimensions(dim int) ClientOption {
	return func(c *Client) {
		c.dimensions = dim
	}
}

// WithEmbeddingModel sets the embedding model name. Empty uses default.
func WithEmbeddingModel(model string) ClientOption {
	return func(c *Client) {
		c.embeddingModel = model
	}
}

// WithGenerateModel sets the generation model name. Empty uses default.
func WithGenerateModel(model string) ClientOption {
	return func(c *Client) {
		c.generateModel = model
	}
}

// WithMaxInputChars sets the character budget applied before embedding calls.
func WithMaxInputChars(n int) ClientOption {
	return func(c *Client) {
		c.maxInputChars = n
	}
}

// NewClient creates a Gemini client.
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("googleai client: %w", err)
	}

	client := &Client{
		client:         genaiClient,
		embeddingModel: defaultEmbeddingModel,
		generateModel:  defaultGenerateModel,
		dimensions:     defaultDimension,
		maxInputChars:  defaultMaxInputChars,
	}
	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// CreateEmbedding returns the embedding vector for the given text using the configured model.
// Oversize input is truncated to the character budget before the call; empty input fails closed.
func (c *Client) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	if c.dimensions <= 0 || c.dimensions > math.MaxInt32 {
		return nil, ErrInvalidDims
	}

	if c.maxInputChars > 0 && len(input) > c.maxInputChars {
		input = input[:c.maxInputChars]
	}

	contents := []*genai.Content{genai.NewContentFromText(input, genai.RoleUser)}
	//nolint:gosec // G115: c.dimensions is bounded above by math.MaxInt32
	dimInt32 := int32(c.dimensions)

	resp, err := c.client.Models.EmbedContent(ctx, c.embeddingModel, contents, &genai.EmbedContentConfig{
		TaskType:             embeddingTaskType,
		OutputDimensionality: &dimInt32,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini embedding: %w", err)
	}

	if len(resp.Embeddings) == 0 {
		return nil, ErrNoEmbeddingInResponse
	}

	emb := resp.Embeddings[0].Values
	if len(emb) != c.dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(emb), c.dimensions)
	}

	out := make([]float32, len(emb))
	copy(out, emb)

	return out, nil
}

// GenerateText returns the model's text completion for the given prompt.
// An empty completion is not an error; callers decide how to substitute it.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.generateModel, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generation: %w", err)
	}

	return strings.TrimSpace(resp.Text()), nil
}

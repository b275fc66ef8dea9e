// Package openai provides a thin wrapper around the official OpenAI Go SDK
// for embeddings and text generation.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
)

var (
	// ErrEmptyInput is returned when CreateEmbedding is called with empty input.
	ErrEmptyInput = errors.New("openai: input text is empty")
	// ErrInvalidDims is returned when dimensions is not positive.
	ErrInvalidDims = errors.New("openai: embedding dimensions must be positive")
	// ErrNoEmbeddingInResponse is returned when the API response contains no embedding data.
	ErrNoEmbeddingInResponse = errors.New("openai: no embedding in response")
	// ErrDimensionMismatch is returned when the response embedding length does not match configured dimensions.
	ErrDimensionMismatch = errors.New("openai: embedding dimension mismatch")
	// ErrNoChoicesInResponse is returned when the completion response contains no choices.
	ErrNoChoicesInResponse = errors.New("openai: no choices in response")
)

const (
	defaultDimension     = 768
	defaultMaxInputChars = 8000
	defaultGenerateModel = openaisdk.ChatModelGPT4oMini
)

// Client calls the OpenAI embeddings and chat completion APIs via the official SDK.
type Client struct {
	sdk           openaisdk.Client
	generateModel string
	dimensions    int
	maxInputChars int
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithDimensions sets the requested embedding dimension (must match the index column).
func WithDimensions(dim int) ClientOption {
	return func(c *Client) {
		c.dimensions = dim
	}
}

// WithGenerateModel sets the chat completion model. Empty uses default.
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

// NewClient creates an OpenAI client using the official SDK.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	client := &Client{
		sdk:           openaisdk.NewClient(option.WithAPIKey(apiKey)),
		generateModel: defaultGenerateModel,
		dimensions:    defaultDimension,
		maxInputChars: defaultMaxInputChars,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// CreateEmbedding returns the embedding vector for the given text using text-embedding-3-small.
// Oversize input is truncated to the character budget before the call; empty input fails closed.
func (c *Client) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	if c.dimensions <= 0 {
		return nil, ErrInvalidDims
	}

	if c.maxInputChars > 0 && len(input) > c.maxInputChars {
		input = input[:c.maxInputChars]
	}

	resp, err := c.sdk.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfString: param.NewOpt(input),
		},
		Model:      openaisdk.EmbeddingModelTextEmbedding3Small,
		Dimensions: param.NewOpt(int64(c.dimensions)),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, ErrNoEmbeddingInResponse
	}

	emb := resp.Data[0].Embedding
	if len(emb) != c.dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(emb), c.dimensions)
	}

	out := make([]float32, len(emb))
	for i := range emb {
		out[i] = float32(emb[i])
	}

	return out, nil
}

// GenerateText returns the model's text completion for the given prompt.
// An empty completion is not an error; callers decide how to substitute it.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.sdk.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(prompt),
		},
		Model: c.generateModel,
	})
	if err != nil {
		return "", fmt.Errorf("openai generation: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoicesInResponse
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Package ai wraps the OpenAI API behind the two calls this system needs:
// embeddings (with the provider's token usage) and chat completions.
//
// The same embedding model serves ingestion and query answering; embeddings
// from different models live in incomparable vector spaces.
package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Default model identifiers.
const (
	DefaultEmbeddingModel = "text-embedding-ada-002"
	DefaultChatModel      = "gpt-3.5-turbo-16k"
)

// Config configures the provider client.
type Config struct {
	APIKey         string
	BaseURL        string // optional override, used by tests
	EmbeddingModel string
	ChatModel      string
}

// Embedding is the result of one embedding call: the vector and the token
// count the provider reported for the input.
type Embedding struct {
	Vector     []float32
	TokenCount int
}

// Client issues embedding and completion requests. It is a stateless
// request-issuing handle, safe for concurrent use; construct it once at
// startup and inject it where needed.
type Client struct {
	api            openai.Client
	embeddingModel string
	chatModel      string
	logger         *slog.Logger
}

// New creates a Client. logger may be nil.
func New(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbeddingModel
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultChatModel
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		api:            openai.NewClient(opts...),
		embeddingModel: cfg.EmbeddingModel,
		chatModel:      cfg.ChatModel,
		logger:         logger,
	}
}

// CreateEmbedding embeds input and returns the vector together with the
// provider's reported total token count.
func (c *Client) CreateEmbedding(ctx context.Context, input string) (Embedding, error) {
	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.embeddingModel),
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(input)},
	})
	if err != nil {
		return Embedding{}, fmt.Errorf("creating embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return Embedding{}, fmt.Errorf("embedding response contained no data")
	}

	raw := resp.Data[0].Embedding
	vector := make([]float32, len(raw))
	for i, v := range raw {
		vector[i] = float32(v)
	}

	return Embedding{
		Vector:     vector,
		TokenCount: int(resp.Usage.TotalTokens),
	}, nil
}

// Complete sends a two-message prompt (system + user) and returns the first
// choice's message text. Temperature 0, non-streaming.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.chatModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("creating chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	c.logger.Debug("chat completion", "model", c.chatModel,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)
	return resp.Choices[0].Message.Content, nil
}

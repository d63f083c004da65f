// Package answer implements retrieval-augmented query answering: embed the
// query, find the most similar documentation sections, and ground a chat
// completion on them.
package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tiktoken-go/tokenizer"

	"github.com/docpilot/docpilot/internal/ai"
	"github.com/docpilot/docpilot/internal/store"
)

// ErrNoResults reports that the similarity search returned zero qualifying
// sections. It is a user-presentable condition, distinct from provider or
// storage failures, so the boundary can answer with "no matching
// documentation" instead of a generic error.
var ErrNoResults = errors.New("no matching documentation found")

// Default search and context parameters.
const (
	DefaultMatchThreshold     = 0.78
	DefaultMatchCount         = 15
	DefaultMinContentLength   = 50
	DefaultContextTokenBudget = 2500
)

// Message is one prior chat exchange. History is accepted by Answer as an
// extension point for multi-turn conversations; it is currently unused.
type Message struct {
	Role    string
	Content string
}

// Embedder produces the query embedding. Must be backed by the same model
// used at ingestion time. ai.Client satisfies it.
type Embedder interface {
	CreateEmbedding(ctx context.Context, input string) (ai.Embedding, error)
}

// Searcher runs similarity search over stored sections. store.Store
// satisfies it.
type Searcher interface {
	MatchSections(ctx context.Context, embedding []float32, params store.MatchParams) ([]store.MatchedSection, error)
}

// Completer produces the grounded answer. ai.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Config tunes retrieval and context assembly. Zero values fall back to the
// package defaults.
type Config struct {
	MatchThreshold     float64
	MatchCount         int
	MinContentLength   int
	ContextTokenBudget int
}

// tokenCounter counts chat-model tokens in a string.
type tokenCounter interface {
	Count(text string) (int, error)
}

// codecCounter counts with a tiktoken codec matched to the chat model
// family.
type codecCounter struct {
	codec tokenizer.Codec
}

func (c codecCounter) Count(text string) (int, error) {
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Service answers documentation queries. Each call is stateless and
// independent; the vector store is only read.
type Service struct {
	embedder  Embedder
	searcher  Searcher
	completer Completer
	params    store.MatchParams
	budget    int
	counter   tokenCounter
	logger    *slog.Logger
}

// New creates a Service. logger may be nil.
func New(embedder Embedder, searcher Searcher, completer Completer, cfg Config, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MatchThreshold == 0 {
		cfg.MatchThreshold = DefaultMatchThreshold
	}
	if cfg.MatchCount == 0 {
		cfg.MatchCount = DefaultMatchCount
	}
	if cfg.MinContentLength == 0 {
		cfg.MinContentLength = DefaultMinContentLength
	}
	if cfg.ContextTokenBudget == 0 {
		cfg.ContextTokenBudget = DefaultContextTokenBudget
	}

	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return nil, fmt.Errorf("loading tokenizer: %w", err)
	}

	return &Service{
		embedder:  embedder,
		searcher:  searcher,
		completer: completer,
		params: store.MatchParams{
			Threshold:        cfg.MatchThreshold,
			Count:            cfg.MatchCount,
			MinContentLength: cfg.MinContentLength,
		},
		budget:  cfg.ContextTokenBudget,
		counter: codecCounter{codec: codec},
		logger:  logger,
	}, nil
}

// Answer returns a markdown answer grounded in the stored documentation.
// history is accepted for future multi-turn support and currently ignored.
// Returns ErrNoResults when no section qualifies.
func (s *Service) Answer(ctx context.Context, query string, history []Message) (string, error) {
	_ = history // extension point, intentionally unused

	query = strings.TrimSpace(query)
	if query == "" {
		return "", errors.New("empty query")
	}

	emb, err := s.embedder.CreateEmbedding(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embedding query: %w", err)
	}

	sections, err := s.searcher.MatchSections(ctx, emb.Vector, s.params)
	if err != nil {
		return "", fmt.Errorf("searching documentation: %w", err)
	}
	if len(sections) == 0 {
		return "", ErrNoResults
	}

	contextText, err := s.assembleContext(sections)
	if err != nil {
		return "", fmt.Errorf("assembling context: %w", err)
	}

	s.logger.Debug("answering query", "matches", len(sections), "context_bytes", len(contextText))

	reply, err := s.completer.Complete(ctx, systemPrompt, userPrompt(contextText, query))
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}
	return reply, nil
}

// assembleContext joins matched sections, in descending-similarity order,
// until the running token count reaches the budget. The section that first
// crosses the budget is excluded; sections already added stay.
func (s *Service) assembleContext(sections []store.MatchedSection) (string, error) {
	var b strings.Builder
	tokens := 0

	for _, sec := range sections {
		n, err := s.counter.Count(sec.Content)
		if err != nil {
			return "", err
		}
		tokens += n
		if tokens >= s.budget {
			break
		}
		b.WriteString(strings.TrimSpace(sec.Content))
		b.WriteString("\n---\n")
	}

	return b.String(), nil
}

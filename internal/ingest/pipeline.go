package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/docpilot/docpilot/internal/ai"
	"github.com/docpilot/docpilot/internal/markdown"
	"github.com/docpilot/docpilot/internal/store"
)

// PageType is the type tag written on every page this pipeline ingests.
// Markdown is the only source kind today; a second kind would become another
// concrete loader, not a hierarchy.
const PageType = "markdown"

// DefaultEmbedInterval spaces consecutive embedding calls to respect
// provider rate limits.
const DefaultEmbedInterval = 500 * time.Millisecond

// Store is the storage surface the pipeline needs, defined here by the
// consumer. store.Store satisfies it.
type Store interface {
	PageByPath(ctx context.Context, path string) (*store.Page, error)
	UpsertPage(ctx context.Context, path, source, pageType string) (int64, error)
	SetPageChecksum(ctx context.Context, pageID int64, checksum string) error
	DeletePageSections(ctx context.Context, pageID int64) error
	InsertSection(ctx context.Context, sec store.Section) error
}

// Embedder produces embedding vectors with provider token usage.
// ai.Client satisfies it.
type Embedder interface {
	CreateEmbedding(ctx context.Context, input string) (ai.Embedding, error)
}

// Config tunes the pipeline.
type Config struct {
	// SourceLabel is recorded on every page (e.g. "guide").
	SourceLabel string

	// EmbedInterval is the minimum spacing between embedding calls.
	// Zero means DefaultEmbedInterval; negative disables throttling.
	EmbedInterval time.Duration
}

// Result summarizes one pipeline run.
type Result struct {
	Pages    int // documents fully (re)generated
	Skipped  int // documents whose checksum matched
	Failed   int // documents left incomplete (NULL checksum)
	Sections int // sections embedded and stored
}

// Pipeline ingests markdown documentation into the vector store. Documents
// are processed strictly sequentially, one embedding call at a time.
type Pipeline struct {
	store    Store
	embedder Embedder
	limiter  *rate.Limiter
	source   string
	logger   *slog.Logger
}

// New creates a Pipeline. logger may be nil.
func New(st Store, embedder Embedder, cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	interval := cfg.EmbedInterval
	if interval == 0 {
		interval = DefaultEmbedInterval
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}

	return &Pipeline{
		store:    st,
		embedder: embedder,
		limiter:  rate.NewLimiter(limit, 1),
		source:   cfg.SourceLabel,
		logger:   logger,
	}
}

// Run discovers markdown files under root and ingests each one. A failure
// in one document never blocks the others: the document is logged, left
// with a NULL checksum so the next run regenerates it, and the pipeline
// moves on. Re-running over unchanged content is a no-op per document.
func (p *Pipeline) Run(ctx context.Context, root string) (*Result, error) {
	sources, err := DiscoverMarkdown(root)
	if err != nil {
		return nil, err
	}

	p.logger.Info("discovered documentation pages", "count", len(sources), "root", root)

	result := &Result{}
	for _, src := range sources {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		skipped, sections, err := p.processDocument(ctx, src)
		switch {
		case err != nil:
			result.Failed++
			p.logger.Error("page failed to store; marked for regeneration",
				"path", src.Path, "error", err)
		case skipped:
			result.Skipped++
		default:
			result.Pages++
			result.Sections += sections
			p.logger.Info("page ingested", "path", src.Path, "sections", sections)
		}
	}

	p.logger.Info("embedding generation complete",
		"pages", result.Pages, "skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}

// processDocument ingests a single document. It returns skipped=true when
// the stored checksum already matches the file content.
func (p *Pipeline) processDocument(ctx context.Context, src Source) (skipped bool, sections int, err error) {
	content, err := os.ReadFile(src.FilePath)
	if err != nil {
		return false, 0, fmt.Errorf("reading %q: %w", src.FilePath, err)
	}
	checksum := Checksum(content)

	page, err := p.store.PageByPath(ctx, src.Path)
	if err != nil {
		return false, 0, err
	}

	// The incremental core: an unchanged, completed page is a no-op.
	if page != nil && page.Checksum != nil && *page.Checksum == checksum {
		return true, 0, nil
	}

	// Remove stale sections before regenerating so a new run never leaves
	// orphaned or duplicate sections behind.
	if page != nil {
		if err := p.store.DeletePageSections(ctx, page.ID); err != nil {
			return false, 0, err
		}
	}

	// Upsert with a cleared checksum: until every section is stored, the
	// page is known-incomplete and will be regenerated by the next run.
	pageID, err := p.store.UpsertPage(ctx, src.Path, p.source, PageType)
	if err != nil {
		return false, 0, err
	}

	for _, sec := range markdown.Segment(content) {
		if err := p.embedSection(ctx, pageID, sec); err != nil {
			return false, sections, err
		}
		sections++
	}

	// Only now is the page marked complete.
	if err := p.store.SetPageChecksum(ctx, pageID, checksum); err != nil {
		return false, sections, err
	}
	return false, sections, nil
}

func (p *Pipeline) embedSection(ctx context.Context, pageID int64, sec markdown.Section) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	// Embedding models perform better on single-line input.
	input := strings.ReplaceAll(sec.Content, "\n", " ")

	emb, err := p.embedder.CreateEmbedding(ctx, input)
	if err != nil {
		return fmt.Errorf("embedding section starting with %.40q: %w", input, err)
	}

	return p.store.InsertSection(ctx, store.Section{
		PageID:     pageID,
		Heading:    sec.Heading,
		Slug:       sec.Slug,
		Content:    sec.Content,
		TokenCount: emb.TokenCount,
		Embedding:  emb.Vector,
	})
}

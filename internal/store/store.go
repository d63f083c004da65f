// Package store persists documentation pages and their embedded sections in
// PostgreSQL with pgvector, and exposes similarity search over sections.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// VectorDim is the embedding dimension of the page_sections.embedding
// column. text-embedding-ada-002 produces 1536-dimensional vectors; the
// migration schema must match.
const VectorDim = 1536

// Page is a stored documentation page. Checksum is nil while the page's
// sections are being (re)generated; only a fully ingested page carries its
// content checksum.
type Page struct {
	ID       int64
	Path     string
	Checksum *string
	Source   string
	Type     string
}

// Section is a page section to persist, embedding included.
type Section struct {
	PageID     int64
	Heading    *string
	Slug       *string
	Content    string
	TokenCount int
	Embedding  []float32
}

// MatchedSection is a similarity search hit, ranked by descending
// similarity.
type MatchedSection struct {
	ID         int64
	PageID     int64
	Heading    *string
	Slug       *string
	Content    string
	Similarity float64
}

// MatchParams tune the similarity search.
type MatchParams struct {
	// Threshold is the minimum similarity for a section to qualify.
	Threshold float64

	// Count caps the number of returned sections.
	Count int

	// MinContentLength excludes sections shorter than this many characters.
	MinContentLength int
}

// Store runs page and section queries against a pgx pool.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New creates a Store. logger may be nil.
func New(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// PageByPath looks up a page by its exact path. Returns (nil, nil) when no
// page exists at that path.
func (s *Store) PageByPath(ctx context.Context, path string) (*Page, error) {
	var p Page
	err := s.pool.QueryRow(ctx,
		`SELECT id, path, checksum, source, type FROM pages WHERE path = $1`,
		path,
	).Scan(&p.ID, &p.Path, &p.Checksum, &p.Source, &p.Type)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching page %q: %w", path, err)
	}
	return &p, nil
}

// UpsertPage creates or updates the page keyed by path and returns its id.
// The stored checksum is explicitly cleared: a NULL checksum marks the page
// incomplete until SetPageChecksum is called after all sections are written.
func (s *Store) UpsertPage(ctx context.Context, path, source, pageType string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO pages (path, checksum, source, type)
		 VALUES ($1, NULL, $2, $3)
		 ON CONFLICT (path)
		 DO UPDATE SET checksum = NULL, source = EXCLUDED.source, type = EXCLUDED.type
		 RETURNING id`,
		path, source, pageType,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting page %q: %w", path, err)
	}
	return id, nil
}

// SetPageChecksum writes the final checksum, marking the page complete.
func (s *Store) SetPageChecksum(ctx context.Context, pageID int64, checksum string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE pages SET checksum = $2 WHERE id = $1`, pageID, checksum)
	if err != nil {
		return fmt.Errorf("setting checksum for page %d: %w", pageID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("setting checksum for page %d: page not found", pageID)
	}
	return nil
}

// DeletePageSections removes all sections belonging to a page.
func (s *Store) DeletePageSections(ctx context.Context, pageID int64) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM page_sections WHERE page_id = $1`, pageID); err != nil {
		return fmt.Errorf("deleting sections of page %d: %w", pageID, err)
	}
	return nil
}

// InsertSection persists one section with its embedding.
func (s *Store) InsertSection(ctx context.Context, sec Section) error {
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO page_sections (page_id, heading, slug, content, token_count, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		sec.PageID, sec.Heading, sec.Slug, sec.Content, sec.TokenCount,
		pgvector.NewVector(sec.Embedding),
	); err != nil {
		return fmt.Errorf("inserting section for page %d: %w", sec.PageID, err)
	}
	return nil
}

// MatchSections runs the match_page_sections similarity search and returns
// qualifying sections ranked by descending similarity.
func (s *Store) MatchSections(ctx context.Context, embedding []float32, params MatchParams) ([]MatchedSection, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, page_id, heading, slug, content, similarity
		 FROM match_page_sections($1, $2, $3, $4)`,
		pgvector.NewVector(embedding),
		params.Threshold, params.Count, params.MinContentLength,
	)
	if err != nil {
		return nil, fmt.Errorf("matching page sections: %w", err)
	}
	defer rows.Close()

	var matches []MatchedSection
	for rows.Next() {
		var m MatchedSection
		if err := rows.Scan(&m.ID, &m.PageID, &m.Heading, &m.Slug, &m.Content, &m.Similarity); err != nil {
			return nil, fmt.Errorf("scanning matched section: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading matched sections: %w", err)
	}

	s.logger.Debug("similarity search", "matches", len(matches))
	return matches, nil
}

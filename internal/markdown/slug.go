package markdown

import (
	"strconv"
	"strings"
	"unicode"
)

// Slugger derives GitHub-style anchor slugs from headings and keeps a
// per-document registry so repeated headings get unique slugs
// ("intro", "intro-1", "intro-2", ...). It is an explicit per-document
// value: create one Slugger per segmented document.
type Slugger struct {
	seen map[string]int
}

// NewSlugger creates an empty slug registry.
func NewSlugger() *Slugger {
	return &Slugger{seen: make(map[string]int)}
}

// Slug returns the slug for heading, disambiguated against every slug this
// Slugger has produced before.
func (s *Slugger) Slug(heading string) string {
	base := slugify(heading)

	n := s.seen[base]
	s.seen[base] = n + 1
	if n == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

// slugify lowercases, strips punctuation and replaces spaces with hyphens,
// matching GitHub's anchor generation closely enough for stable links.
func slugify(heading string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(heading)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('-')
		}
	}
	return b.String()
}

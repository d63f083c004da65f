// Package markdown splits markdown documents into heading-delimited
// sections, the unit of embedding and retrieval.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"
)

// Section is a contiguous markdown fragment bounded by headings.
// Heading and Slug are nil for content that precedes the first heading.
type Section struct {
	Heading *string
	Slug    *string
	Content string
}

// Segment splits a markdown document into sections. A new section starts at
// every top-level heading; content before the first heading forms an initial
// headingless section. Section content is the verbatim source span, so
// re-segmenting a section's content is idempotent. A document with no
// headings yields exactly one section; an empty document yields none.
func Segment(source []byte) []Section {
	md := goldmark.New()
	doc := md.Parser().Parse(gtext.NewReader(source))

	if doc.FirstChild() == nil {
		return nil
	}

	type boundary struct {
		start   int
		heading ast.Node
	}

	var bounds []boundary
	prevEnd := 0

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if n.Kind() == ast.KindHeading {
			bounds = append(bounds, boundary{
				start:   headingStart(source, n, prevEnd),
				heading: n,
			})
		} else if len(bounds) == 0 {
			bounds = append(bounds, boundary{start: 0})
		}
		if lines := n.Lines(); lines.Len() > 0 {
			prevEnd = lines.At(lines.Len() - 1).Stop
		}
	}

	slugger := NewSlugger()
	sections := make([]Section, 0, len(bounds))

	for i, b := range bounds {
		end := len(source)
		if i+1 < len(bounds) {
			end = bounds[i+1].start
		}

		sec := Section{Content: string(source[b.start:end])}
		if b.heading != nil {
			if heading := nodeText(source, b.heading); heading != "" {
				slug := slugger.Slug(heading)
				sec.Heading = &heading
				sec.Slug = &slug
			}
		}
		sections = append(sections, sec)
	}

	return sections
}

// headingStart returns the byte offset of the line on which the heading
// begins. Headings without line segments (e.g. a bare "#") fall back to the
// first hash at a line start after the previous node.
func headingStart(source []byte, h ast.Node, prevEnd int) int {
	if lines := h.Lines(); lines.Len() > 0 {
		i := bytes.LastIndexByte(source[:lines.At(0).Start], '\n')
		return i + 1
	}
	for i := prevEnd; i < len(source); i++ {
		if source[i] == '#' && (i == 0 || source[i-1] == '\n') {
			return i
		}
	}
	return prevEnd
}

// nodeText extracts the plain text of a node, descending through inline
// children (emphasis, links, code spans).
func nodeText(source []byte, n ast.Node) string {
	var buf bytes.Buffer
	collectText(source, n, &buf)
	return buf.String()
}

func collectText(source []byte, n ast.Node, buf *bytes.Buffer) {
	switch t := n.(type) {
	case *ast.Text:
		buf.Write(t.Segment.Value(source))
	case *ast.String:
		buf.Write(t.Value)
	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			collectText(source, c, buf)
		}
	}
}

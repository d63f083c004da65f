package markdown

import (
	"reflect"
	"strings"
	"testing"
)

func TestSegment_HeadingBoundaries(t *testing.T) {
	source := []byte(`# Getting Started

Welcome to the guide.

## Installation

Run the installer.

## Usage

Call the API.
`)

	sections := Segment(source)

	if len(sections) != 3 {
		t.Fatalf("got %d sections, want 3", len(sections))
	}

	wantHeadings := []string{"Getting Started", "Installation", "Usage"}
	for i, want := range wantHeadings {
		if sections[i].Heading == nil || *sections[i].Heading != want {
			t.Errorf("section %d heading = %v, want %q", i, sections[i].Heading, want)
		}
	}

	// Sections cover the source exactly, in order.
	var joined strings.Builder
	for _, s := range sections {
		joined.WriteString(s.Content)
	}
	if joined.String() != string(source) {
		t.Errorf("concatenated sections differ from source:\n%q", joined.String())
	}

	if !strings.Contains(sections[1].Content, "Run the installer.") {
		t.Errorf("section 1 missing body: %q", sections[1].Content)
	}
	if strings.Contains(sections[1].Content, "Call the API.") {
		t.Errorf("section 1 leaked next section's body: %q", sections[1].Content)
	}
}

func TestSegment_LeadingContentBeforeFirstHeading(t *testing.T) {
	source := []byte(`Some intro paragraph.

# First

body
`)

	sections := Segment(source)

	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(sections))
	}
	if sections[0].Heading != nil || sections[0].Slug != nil {
		t.Errorf("leading section should have no heading/slug, got %v/%v",
			sections[0].Heading, sections[0].Slug)
	}
	if !strings.HasPrefix(sections[0].Content, "Some intro paragraph.") {
		t.Errorf("leading section content = %q", sections[0].Content)
	}
	if !strings.HasPrefix(sections[1].Content, "# First") {
		t.Errorf("heading section should start at its heading line, got %q", sections[1].Content)
	}
}

func TestSegment_NoHeadings(t *testing.T) {
	source := []byte("just a paragraph\n\nand another one\n")

	sections := Segment(source)

	if len(sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(sections))
	}
	if sections[0].Heading != nil {
		t.Errorf("expected headingless section, got %q", *sections[0].Heading)
	}
	if sections[0].Content != string(source) {
		t.Errorf("content = %q, want whole document", sections[0].Content)
	}
}

func TestSegment_EmptyDocument(t *testing.T) {
	if sections := Segment(nil); len(sections) != 0 {
		t.Errorf("empty document yielded %d sections", len(sections))
	}
	if sections := Segment([]byte("\n\n")); len(sections) != 0 {
		t.Errorf("blank document yielded %d sections", len(sections))
	}
}

func TestSegment_DuplicateHeadingSlugs(t *testing.T) {
	source := []byte("# Intro\n\na\n\n# Intro\n\nb\n\n# Intro\n\nc\n")

	sections := Segment(source)

	if len(sections) != 3 {
		t.Fatalf("got %d sections, want 3", len(sections))
	}
	wantSlugs := []string{"intro", "intro-1", "intro-2"}
	for i, want := range wantSlugs {
		if sections[i].Slug == nil || *sections[i].Slug != want {
			t.Errorf("section %d slug = %v, want %q", i, sections[i].Slug, want)
		}
	}
}

func TestSegment_InlineFormattingInHeading(t *testing.T) {
	sections := Segment([]byte("## Using `context.Context` *properly*\n\nbody\n"))

	if len(sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(sections))
	}
	if got := *sections[0].Heading; got != "Using context.Context properly" {
		t.Errorf("heading = %q", got)
	}
}

func TestSegment_Deterministic(t *testing.T) {
	source := []byte("pre\n\n# A\n\none\n\n## B\n\ntwo\n")

	first := Segment(source)
	second := Segment(source)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("segmentation is not deterministic:\n%v\n%v", first, second)
	}
}

func TestSegment_ResegmentIdempotent(t *testing.T) {
	source := []byte("intro text\n\n# One\n\nalpha\n\n# Two\n\nbeta\n")

	for _, sec := range Segment(source) {
		again := Segment([]byte(sec.Content))
		if len(again) != 1 {
			t.Fatalf("re-segmenting %q gave %d sections, want 1", sec.Content, len(again))
		}
		if again[0].Content != sec.Content {
			t.Errorf("re-segmented content differs:\n%q\n%q", again[0].Content, sec.Content)
		}
	}
}

func TestSlugger(t *testing.T) {
	tests := []struct {
		name     string
		headings []string
		want     []string
	}{
		{
			name:     "basic lowering and hyphenation",
			headings: []string{"Getting Started"},
			want:     []string{"getting-started"},
		},
		{
			name:     "punctuation stripped",
			headings: []string{"What's New? (v2)"},
			want:     []string{"whats-new-v2"},
		},
		{
			name:     "duplicates disambiguated",
			headings: []string{"Intro", "Intro", "Intro"},
			want:     []string{"intro", "intro-1", "intro-2"},
		},
		{
			name:     "underscores kept",
			headings: []string{"snake_case_name"},
			want:     []string{"snake_case_name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSlugger()
			for i, h := range tt.headings {
				if got := s.Slug(h); got != tt.want[i] {
					t.Errorf("Slug(%q) = %q, want %q", h, got, tt.want[i])
				}
			}
		})
	}
}

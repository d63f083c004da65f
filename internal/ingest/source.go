package ingest

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// markdownExtensions are the file types the markdown loader picks up.
var markdownExtensions = map[string]bool{
	".md":       true,
	".mdx":      true,
	".markdown": true,
}

// Source is one discovered documentation file. Path is the stable page
// identifier: the root-relative path with the extension removed and a
// leading slash (e.g. "docs/guide/intro.md" under root "docs" becomes
// "/guide/intro").
type Source struct {
	Path     string
	FilePath string
}

// DiscoverMarkdown recursively collects markdown files under root, in
// deterministic walk order.
func DiscoverMarkdown(root string) ([]Source, error) {
	var sources []Source

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !markdownExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		sources = append(sources, Source{
			Path:     pagePath(rel),
			FilePath: path,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking docs root %q: %w", root, err)
	}

	return sources, nil
}

// pagePath normalizes a root-relative file path into a page path.
func pagePath(rel string) string {
	p := filepath.ToSlash(rel)
	p = strings.TrimSuffix(p, filepath.Ext(p))
	return "/" + p
}

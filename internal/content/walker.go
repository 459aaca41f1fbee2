package content

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultMaxFileSize is the largest content file that will be indexed (1 MB).
const DefaultMaxFileSize int64 = 1 << 20

// Source enumerates content documents from a directory tree.
type Source struct {
	Root        string   // Content root directory.
	Include     []string // Glob patterns; only matching files are included.
	Exclude     []string // Glob patterns; matching files are excluded.
	MaxFileSize int64    // Files larger than this are skipped (0 = default).
}

// Documents walks the content root and returns every markdown document that
// passes filtering, sorted by site path for deterministic traversal order.
// A missing or unreadable root is an error; a single unreadable file is
// logged and skipped.
func (s *Source) Documents() ([]Document, error) {
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return nil, fmt.Errorf("content: resolve root: %w", err)
	}
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("content: content root: %w", err)
	}

	maxSize := s.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	var docs []Document
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			log.Printf("content: skipping %s: %v", path, walkErr)
			return nil
		}

		if d.IsDir() {
			if path != root && shouldExcludeDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !isMarkdown(d.Name()) {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if !matchesInclude(relPath, s.Include) || matchesExclude(relPath, s.Exclude) {
			return nil
		}

		info, err := d.Info()
		if err != nil || info.Size() > maxSize {
			return nil
		}

		doc, err := loadDocument(path, relPath)
		if err != nil {
			log.Printf("content: skipping %s: %v", relPath, err)
			return nil
		}
		if doc.Text == "" {
			return nil
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("content: traversal: %w", err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

func isMarkdown(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".mdx")
}

func loadDocument(path, relPath string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}

	fm, title, plain, err := parseMarkdown(raw)
	if err != nil {
		return Document{}, fmt.Errorf("parse markdown: %w", err)
	}

	sitePath := sitePathFor(relPath)
	if title == "" {
		title = filepath.Base(sitePath)
	}

	section := fm.Section
	if section == "" {
		section = sectionFor(relPath)
	}

	sum := sha256.Sum256(raw)

	return Document{
		Path:        sitePath,
		Title:       title,
		Section:     section,
		Text:        plain,
		Priority:    fm.Priority,
		FilePath:    path,
		ContentHash: hex.EncodeToString(sum[:]),
	}, nil
}

// sitePathFor converts a relative file path to a site route:
// "guides/setup.md" -> "/guides/setup", "guides/index.md" -> "/guides".
func sitePathFor(relPath string) string {
	p := filepath.ToSlash(relPath)
	for _, ext := range []string{".mdx", ".md"} {
		if strings.HasSuffix(strings.ToLower(p), ext) {
			p = p[:len(p)-len(ext)]
			break
		}
	}
	p = strings.TrimSuffix(p, "/index")
	if p == "index" || p == "" {
		return "/"
	}
	return "/" + p
}

// sectionFor derives the section from the top-level directory of relPath.
func sectionFor(relPath string) string {
	p := filepath.ToSlash(relPath)
	if i := strings.Index(p, "/"); i > 0 {
		return p[:i]
	}
	return ""
}

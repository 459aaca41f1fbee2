// Package content enumerates the site content documents that feed the
// indexing pipeline. Documents are markdown files under a content root; the
// site route, title, section, and plain text are derived from each file.
package content

// Document is one content page ready for chunking.
type Document struct {
	Path        string  // Site route, e.g. "/guides/getting-started".
	Title       string  // First H1 heading, or front-matter title override.
	Section     string  // Front-matter section, or the top-level directory.
	Text        string  // Markdown body reduced to plain text.
	Priority    float64 // Author-assigned boost weight from front matter.
	FilePath    string  // Absolute path of the source file.
	ContentHash string  // SHA-256 hex digest of the raw file content.
}

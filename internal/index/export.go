package index

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// exportFile is the on-disk JSON shape for an exported snapshot.
type exportFile struct {
	Generation  string         `json:"generation"`
	Dimensions  int            `json:"dimensions"`
	LastIndexed time.Time      `json:"last_indexed"`
	Chunks      []ContentChunk `json:"chunks"`
}

// Export writes the current generation as JSON. The index is in-memory only;
// exporting is the explicit way to carry it across process restarts.
func (s *Store) Export(w io.Writer) error {
	snap := s.current.Load()
	if snap.LastIndexed.IsZero() {
		return fmt.Errorf("index: nothing to export, no rebuild has run")
	}
	enc := json.NewEncoder(w)
	return enc.Encode(exportFile{
		Generation:  snap.Generation,
		Dimensions:  snap.Dimensions,
		LastIndexed: snap.LastIndexed,
		Chunks:      snap.Chunks,
	})
}

// Import replaces the current generation with a previously exported snapshot.
// A snapshot whose chunks carry mixed embedding dimensionality is rejected.
func (s *Store) Import(r io.Reader) error {
	var f exportFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return fmt.Errorf("index: decode snapshot: %w", err)
	}
	// Every embedded chunk must agree on one dimensionality. The header value
	// is authoritative when set; otherwise the first embedded chunk fixes it.
	dims := f.Dimensions
	for _, c := range f.Chunks {
		if c.Text == "" {
			return fmt.Errorf("index: snapshot chunk %s has empty text", c.ID)
		}
		if len(c.Embedding) == 0 {
			continue
		}
		if dims == 0 {
			dims = len(c.Embedding)
		}
		if len(c.Embedding) != dims {
			return fmt.Errorf("index: snapshot chunk %s has %d dims, expected %d",
				c.ID, len(c.Embedding), dims)
		}
	}
	snap := buildSnapshot(f.Chunks)
	snap.LastIndexed = f.LastIndexed
	snap.Generation = f.Generation
	if snap.LastIndexed.IsZero() {
		snap.LastIndexed = time.Now()
	}
	s.current.Store(snap)
	return nil
}

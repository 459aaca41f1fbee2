package index

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Snapshot is one complete index generation. Snapshots are immutable once
// published; readers must not modify the returned chunks.
type Snapshot struct {
	Chunks      []ContentChunk
	Dimensions  int // embedding dimensionality of this generation, 0 if none
	LastIndexed time.Time
	Generation  string
	pages       int
	vectors     int
	byID        map[string]int
}

// Store holds the current index generation behind an atomic pointer.
// Rebuild swaps the whole generation at once, so concurrent readers always
// observe either the old or the new index, never a mix.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates an empty Store. Searches against it return no results
// until Rebuild has run.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(&Snapshot{byID: map[string]int{}})
	return s
}

// Rebuild replaces the stored generation with the given chunks. Chunk order
// is preserved (it is the tie-break order for search results). The page count
// is derived from distinct chunk paths.
func (s *Store) Rebuild(chunks []ContentChunk) *Snapshot {
	snap := buildSnapshot(chunks)
	snap.LastIndexed = time.Now()
	snap.Generation = uuid.NewString()
	s.current.Store(snap)
	return snap
}

// Snapshot returns the current generation.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Ready reports whether at least one rebuild has completed.
func (s *Store) Ready() bool {
	return !s.current.Load().LastIndexed.IsZero()
}

// Stats returns derived counts for the current generation.
func (s *Store) Stats() Stats {
	snap := s.current.Load()
	st := Stats{
		PagesIndexed:  snap.pages,
		ChunksCreated: len(snap.Chunks),
		VectorsStored: snap.vectors,
		Generation:    snap.Generation,
	}
	if !snap.LastIndexed.IsZero() {
		t := snap.LastIndexed
		st.LastIndexed = &t
	}
	return st
}

// ChunkByID returns the chunk with the given id from the current generation.
func (s *Store) ChunkByID(id string) (ContentChunk, bool) {
	snap := s.current.Load()
	i, ok := snap.byID[id]
	if !ok {
		return ContentChunk{}, false
	}
	return snap.Chunks[i], true
}

func buildSnapshot(chunks []ContentChunk) *Snapshot {
	snap := &Snapshot{
		Chunks: chunks,
		byID:   make(map[string]int, len(chunks)),
	}
	paths := make(map[string]struct{})
	for i, c := range chunks {
		snap.byID[c.ID] = i
		paths[c.Path] = struct{}{}
		if c.HasEmbedding() {
			snap.vectors++
			if snap.Dimensions == 0 {
				snap.Dimensions = len(c.Embedding)
			}
		}
	}
	snap.pages = len(paths)
	return snap
}

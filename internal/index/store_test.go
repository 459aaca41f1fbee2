package index

import (
	"sync"
	"testing"
)

func testChunks() []ContentChunk {
	return []ContentChunk{
		{ID: "c1", Path: "/a", Title: "A", Text: "first chunk", Embedding: []float32{1, 0, 0}},
		{ID: "c2", Path: "/a", Title: "A", Text: "second chunk", Embedding: []float32{0, 1, 0}},
		{ID: "c3", Path: "/b", Title: "B", Text: "third chunk"},
	}
}

func TestStore_EmptyBeforeRebuild(t *testing.T) {
	s := NewStore()

	if s.Ready() {
		t.Error("new store reports ready")
	}
	st := s.Stats()
	if st.PagesIndexed != 0 || st.ChunksCreated != 0 || st.VectorsStored != 0 {
		t.Errorf("empty store stats = %+v", st)
	}
	if st.LastIndexed != nil {
		t.Error("empty store has LastIndexed set")
	}
	if _, ok := s.ChunkByID("c1"); ok {
		t.Error("empty store resolved a chunk id")
	}
}

func TestStore_RebuildStats(t *testing.T) {
	s := NewStore()
	s.Rebuild(testChunks())

	if !s.Ready() {
		t.Fatal("store not ready after rebuild")
	}
	st := s.Stats()
	if st.PagesIndexed != 2 {
		t.Errorf("PagesIndexed = %d, want 2", st.PagesIndexed)
	}
	if st.ChunksCreated != 3 {
		t.Errorf("ChunksCreated = %d, want 3", st.ChunksCreated)
	}
	if st.VectorsStored != 2 {
		t.Errorf("VectorsStored = %d, want 2", st.VectorsStored)
	}
	if st.LastIndexed == nil {
		t.Error("LastIndexed not set")
	}
	if st.Generation == "" {
		t.Error("Generation not set")
	}
	if s.Snapshot().Dimensions != 3 {
		t.Errorf("Dimensions = %d, want 3", s.Snapshot().Dimensions)
	}
}

func TestStore_RebuildReplacesGeneration(t *testing.T) {
	s := NewStore()
	first := s.Rebuild(testChunks())
	second := s.Rebuild([]ContentChunk{
		{ID: "d1", Path: "/c", Text: "replacement"},
	})

	if first.Generation == second.Generation {
		t.Error("generation id did not change across rebuilds")
	}
	if st := s.Stats(); st.ChunksCreated != 1 || st.PagesIndexed != 1 {
		t.Errorf("stats after replace = %+v", st)
	}
	if _, ok := s.ChunkByID("c1"); ok {
		t.Error("old generation chunk still resolvable")
	}
	if _, ok := s.ChunkByID("d1"); !ok {
		t.Error("new generation chunk not resolvable")
	}
}

func TestStore_ChunkByID(t *testing.T) {
	s := NewStore()
	s.Rebuild(testChunks())

	c, ok := s.ChunkByID("c2")
	if !ok {
		t.Fatal("c2 not found")
	}
	if c.Text != "second chunk" {
		t.Errorf("c2 text = %q", c.Text)
	}
}

// Concurrent readers must always see a complete generation, never a mix of
// two rebuilds. Run with -race.
func TestStore_ConcurrentRebuildAndRead(t *testing.T) {
	s := NewStore()
	s.Rebuild(testChunks())

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.Rebuild(testChunks())
		}
		close(stop)
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := s.Snapshot()
				if len(snap.Chunks) != 3 {
					t.Errorf("partial snapshot observed: %d chunks", len(snap.Chunks))
					return
				}
				st := s.Stats()
				if st.ChunksCreated != 3 || st.PagesIndexed != 2 {
					t.Errorf("inconsistent stats observed: %+v", st)
					return
				}
			}
		}()
	}
	wg.Wait()
}

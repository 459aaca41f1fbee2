package embeddings

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS embedding_cache (
    model      TEXT NOT NULL,
    text_hash  TEXT NOT NULL,
    dims       INTEGER NOT NULL,
    vector     BLOB NOT NULL,
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    PRIMARY KEY (model, text_hash)
);
`

// CachedEmbedder wraps an Embedder with a SQLite-backed cache keyed by model
// name and text digest. Full rebuilds stay cheap because unchanged chunks hit
// the cache instead of the provider, without changing rebuild semantics.
// Cache read/write failures are logged and ignored; the wrapped embedder is
// the source of truth.
type CachedEmbedder struct {
	inner Embedder
	db    *sql.DB
}

// WithCache wraps the given embedder with a cache stored at path. The parent
// directory is created if needed.
func WithCache(inner Embedder, path string) (*CachedEmbedder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening embedding cache: %w", err)
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating embedding cache: %w", err)
	}

	return &CachedEmbedder{inner: inner, db: db}, nil
}

func (c *CachedEmbedder) Name() string    { return c.inner.Name() }
func (c *CachedEmbedder) Dimensions() int { return c.inner.Dimensions() }

// Close releases the underlying database handle.
func (c *CachedEmbedder) Close() error {
	return c.db.Close()
}

func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int

	for i, text := range texts {
		if vec := c.lookup(ctx, text); vec != nil {
			vectors[i] = vec
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return vectors, nil
	}

	fresh, err := c.inner.Embed(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missing) {
		return nil, fmt.Errorf("%s returned %d embeddings, expected %d", c.inner.Name(), len(fresh), len(missing))
	}

	for j, vec := range fresh {
		vectors[missingIdx[j]] = vec
		c.store(ctx, missing[j], vec)
	}

	return vectors, nil
}

func (c *CachedEmbedder) lookup(ctx context.Context, text string) []float32 {
	var dims int
	var blob []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT dims, vector FROM embedding_cache WHERE model = ? AND text_hash = ?`,
		c.inner.Name(), textHash(text)).Scan(&dims, &blob)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("embeddings: cache read: %v", err)
		}
		return nil
	}
	if dims != c.inner.Dimensions() || len(blob) != dims*4 {
		return nil
	}
	return decodeVector(blob, dims)
}

func (c *CachedEmbedder) store(ctx context.Context, text string, vec []float32) {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO embedding_cache (model, text_hash, dims, vector) VALUES (?, ?, ?, ?)`,
		c.inner.Name(), textHash(text), len(vec), encodeVector(vec))
	if err != nil {
		log.Printf("embeddings: cache write: %v", err)
	}
}

func textHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(buf []byte, dims int) []float32 {
	vec := make([]float32, dims)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}

// Package cached decorates an Embedder with a ristretto cache so repeated
// contexts are embedded once per process. Long-term retrieval re-embeds
// the active context on every recommendation round; the cache makes that
// a lookup.
package cached

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"

	"github.com/atelierlabs/stylist-go-sdk/memory"
)

// Embedder wraps another Embedder with a text -> vector cache.
type Embedder struct {
	inner memory.Embedder
	cache *ristretto.Cache
}

// New creates a caching decorator around inner. maxBytes bounds the total
// cached vector payload; 0 uses a 16 MiB default.
func New(inner memory.Embedder, maxBytes int64) (*Embedder, error) {
	if maxBytes <= 0 {
		maxBytes = 16 << 20
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Embedder{inner: inner, cache: cache}, nil
}

// Embed returns the cached vector for text, embedding on miss.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.cache.Get(text); ok {
		return v.([]float32), nil
	}

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	e.cache.Set(text, vec, int64(4*len(vec)))
	return vec, nil
}

// Dimensions returns the inner embedder's vector size.
func (e *Embedder) Dimensions() int {
	return e.inner.Dimensions()
}

// Wait blocks until pending cache writes are applied. Tests use it to make
// hits deterministic.
func (e *Embedder) Wait() {
	e.cache.Wait()
}

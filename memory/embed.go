package memory

import (
	"context"
	"fmt"
	"math"

	"github.com/atelierlabs/stylist-go-sdk/core"
)

// NormTolerance is the allowed deviation of an embedding's L2 norm from 1.
const NormTolerance = 1e-3

// ContextEmbedder turns a structured Context into a fixed-length unit-norm
// vector via an Embedder. It owns the sentence rendering and enforces the
// normalization postcondition.
type ContextEmbedder struct {
	embedder Embedder
}

// NewContextEmbedder creates a ContextEmbedder on top of the given Embedder.
func NewContextEmbedder(embedder Embedder) *ContextEmbedder {
	return &ContextEmbedder{embedder: embedder}
}

// EmbedContext embeds the canonical sentence for a context.
// The returned vector's L2 norm is within NormTolerance of 1; a violation
// surfaces as ErrNotNormalized and must abort the session.
func (c *ContextEmbedder) EmbedContext(ctx context.Context, cc core.Context) ([]float32, error) {
	vec, err := c.embedder.Embed(ctx, RenderContext(cc))
	if err != nil {
		return nil, fmt.Errorf("embed context: %w", err)
	}
	if err := CheckNorm(vec); err != nil {
		return nil, err
	}
	return vec, nil
}

// Dimensions returns the underlying embedder's vector size.
func (c *ContextEmbedder) Dimensions() int {
	return c.embedder.Dimensions()
}

// RenderContext renders a context into the sentence handed to the
// embedding model.
func RenderContext(c core.Context) string {
	return fmt.Sprintf("The occasion is %s, the weather is %s, the preferred style is %s",
		c.Occasion, c.Weather, c.Style)
}

// CheckNorm verifies the unit-norm invariant.
func CheckNorm(vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("%w: empty vector", ErrNotNormalized)
	}
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if math.Abs(norm-1) > NormTolerance {
		return fmt.Errorf("%w: norm=%.6f", ErrNotNormalized, norm)
	}
	return nil
}

// Dot computes the dot product of two vectors. For unit-norm vectors this
// equals their cosine similarity.
func Dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

package chromem

import (
	"context"
	"math"
	"testing"
)

func TestSimilaritiesEmptyIndex(t *testing.T) {
	x := New()
	sims, err := x.Similarities(context.Background(), "John", []float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("Similarities: %v", err)
	}
	if len(sims) != 0 {
		t.Errorf("sims = %v, want empty", sims)
	}
}

func TestAddAndQuery(t *testing.T) {
	x := New()
	ctx := context.Background()

	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
	}
	for i, vec := range vectors {
		if err := x.Add(ctx, "John", i, vec); err != nil {
			t.Fatalf("Add(%d): %v", i, err)
		}
	}

	sims, err := x.Similarities(ctx, "John", []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("Similarities: %v", err)
	}
	if len(sims) != 2 {
		t.Fatalf("got %d results, want 2", len(sims))
	}
	if math.Abs(float64(sims[0])-1) > 1e-4 {
		t.Errorf("sims[0] = %v, want ~1", sims[0])
	}
	if float64(sims[1]) > 0.5 {
		t.Errorf("sims[1] = %v, want near 0 for an orthogonal vector", sims[1])
	}
}

func TestUsersAreIsolated(t *testing.T) {
	x := New()
	ctx := context.Background()

	if err := x.Add(ctx, "John", 0, []float32{1, 0}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	sims, err := x.Similarities(ctx, "Clara", []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Similarities: %v", err)
	}
	if len(sims) != 0 {
		t.Errorf("Clara sees John's conversations: %v", sims)
	}
}

func TestLimitClampedToCollectionSize(t *testing.T) {
	x := New()
	ctx := context.Background()
	if err := x.Add(ctx, "John", 0, []float32{0, 1}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// limit far above the collection size must not error.
	sims, err := x.Similarities(ctx, "John", []float32{0, 1}, 100)
	if err != nil {
		t.Fatalf("Similarities: %v", err)
	}
	if len(sims) != 1 {
		t.Errorf("got %d results, want 1", len(sims))
	}
}

// Package chromem backs the retrieval engine's ContextIndex with
// chromem-go, a pure Go embedded vector database.
package chromem

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	chromem "github.com/philippgille/chromem-go"
)

// Index stores one context embedding per conversation, namespaced by user.
type Index struct {
	db          *chromem.DB
	collections map[string]*chromem.Collection // per-user collections
	mu          sync.RWMutex
}

// New creates an in-memory chromem index.
func New() *Index {
	return &Index{
		db:          chromem.NewDB(),
		collections: make(map[string]*chromem.Collection),
	}
}

// getOrCreateCollection returns the collection for a user.
// Each user gets their own collection for namespace isolation.
func (x *Index) getOrCreateCollection(user string) (*chromem.Collection, error) {
	x.mu.RLock()
	col, exists := x.collections[user]
	x.mu.RUnlock()

	if exists {
		return col, nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	// Double-check after acquiring write lock
	if col, exists := x.collections[user]; exists {
		return col, nil
	}

	col, err := x.db.CreateCollection(
		fmt.Sprintf("user_%s", user),
		nil, // No collection metadata
		nil, // No embedding func (we provide embeddings)
	)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	x.collections[user] = col
	return col, nil
}

// Add stores the context embedding for one conversation.
func (x *Index) Add(ctx context.Context, user string, conversationIndex int, embedding []float32) error {
	col, err := x.getOrCreateCollection(user)
	if err != nil {
		return err
	}

	doc := chromem.Document{
		ID:        strconv.Itoa(conversationIndex),
		Embedding: embedding,
		Metadata: map[string]string{
			"conversation_index": strconv.Itoa(conversationIndex),
		},
		// chromem requires non-empty content; the index never reads it back.
		Content: "conversation " + strconv.Itoa(conversationIndex),
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

// Similarities returns conversation index -> cosine similarity for up to
// limit stored conversations.
func (x *Index) Similarities(ctx context.Context, user string, query []float32, limit int) (map[int]float32, error) {
	col, err := x.getOrCreateCollection(user)
	if err != nil {
		return nil, err
	}

	// chromem rejects nResults larger than the collection.
	count := col.Count()
	if count == 0 {
		return map[int]float32{}, nil
	}
	if limit > count {
		limit = count
	}

	results, err := col.QueryEmbedding(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	sims := make(map[int]float32, len(results))
	for _, res := range results {
		idx, err := strconv.Atoi(res.Metadata["conversation_index"])
		if err != nil {
			return nil, fmt.Errorf("malformed conversation_index %q: %w",
				res.Metadata["conversation_index"], err)
		}
		sims[idx] = res.Similarity
	}
	return sims, nil
}

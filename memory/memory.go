package memory

import (
	"context"
	"errors"

	"github.com/atelierlabs/stylist-go-sdk/core"
)

// Sentinel errors for store and embedding contract violations.
var (
	// ErrUnknownUser is returned when an operation names a user that was
	// never created.
	ErrUnknownUser = errors.New("memory: unknown user")

	// ErrUserExists is returned by CreateUser for a duplicate name.
	// User attributes are immutable after creation.
	ErrUserExists = errors.New("memory: user already exists")

	// ErrConversationIndex is returned when a conversation index is out of
	// range. The controller only ever passes indices it obtained from
	// CreateConversation, so hitting this indicates a programming error in
	// the caller, not a recoverable condition.
	ErrConversationIndex = errors.New("memory: conversation index out of range")

	// ErrNotNormalized is returned when an embedding's L2 norm deviates
	// from 1 beyond tolerance. This signals a broken embedding model or a
	// changed provider contract and is fatal, not per-call recoverable.
	ErrNotNormalized = errors.New("memory: embedding is not normalized")
)

// Embedder converts text to vector embeddings.
// Implementations: ollama.Client (HTTP provider), onnx.Embedder (local
// model, build tag onnx), mock.Embedder (testing), cached.Embedder
// (ristretto decorator around any of the above).
type Embedder interface {
	// Embed converts a single text to an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}

// ContextIndex answers cosine similarities between a query vector and the
// stored conversation-context vectors of one user. Implementations:
// chromem.Index (embedded vector database).
type ContextIndex interface {
	// Add stores the context embedding for one conversation of a user.
	// Conversation indices are unique per user and never re-added.
	Add(ctx context.Context, user string, conversationIndex int, embedding []float32) error

	// Similarities returns conversationIndex -> cosine similarity for up
	// to limit stored conversations of the user, the best-matching ones
	// when more than limit are stored.
	Similarities(ctx context.Context, user string, query []float32, limit int) (map[int]float32, error)
}

// Retriever selects the preferences most relevant to the active
// conversation. The Store delegates ranking here and owns only the
// formatting of the selected records.
type Retriever interface {
	Retrieve(ctx context.Context, user string, conversations []core.Conversation, activeIndex int) ([]core.Preference, error)
}

// Backend is the durable persistence layer behind a Store. Any key-value
// representation that preserves user insertion order is conformant; the SDK
// ships a BadgerDB implementation in store/badger.
type Backend interface {
	// SaveUser writes the full user record at its insertion position.
	SaveUser(position int, user *core.User) error

	// LoadUsers returns all stored users in insertion order.
	LoadUsers() ([]*core.User, error)

	// Close releases resources.
	Close() error
}

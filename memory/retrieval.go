package memory

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/atelierlabs/stylist-go-sdk/core"
)

// Mode selects the retrieval strategy.
type Mode int

const (
	// LongTerm ranks preferences across all of the user's conversations by
	// context similarity. This is the default.
	LongTerm Mode = iota

	// ShortTerm returns the most recent preferences of the active
	// conversation only. No embedding is involved.
	ShortTerm
)

func (m Mode) String() string {
	switch m {
	case LongTerm:
		return "long-term"
	case ShortTerm:
		return "short-term"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// DefaultTopK is the default number of preferences returned per retrieval.
const DefaultTopK = 5

// Engine implements Retriever. In long-term mode it embeds the active
// conversation's context, scores every conversation of the user by cosine
// similarity against the index, and lets each preference inherit its
// parent conversation's score. Preferences within one conversation are not
// re-ranked by content.
//
// The active conversation's own similarity is forced to 1.0 rather than
// recomputed, so the active context never loses to a coincidentally
// duplicated historic context. This is a deliberate policy choice.
type Engine struct {
	embedder *ContextEmbedder
	index    ContextIndex
	mode     Mode
	topK     int

	// indexed tracks, per user, how many conversations have been added to
	// the index. Conversation indices are append-only, so a count suffices.
	// indexedMu serializes maintenance so concurrent sessions never index
	// the same conversation twice.
	indexedMu sync.Mutex
	indexed   map[string]int
}

// EngineOption configures the retrieval engine.
type EngineOption func(*Engine)

// WithMode sets the retrieval mode.
func WithMode(m Mode) EngineOption {
	return func(e *Engine) {
		e.mode = m
	}
}

// WithTopK caps the number of preferences returned per retrieval.
func WithTopK(k int) EngineOption {
	return func(e *Engine) {
		e.topK = k
	}
}

// NewEngine creates a retrieval engine.
func NewEngine(embedder *ContextEmbedder, index ContextIndex, opts ...EngineOption) *Engine {
	e := &Engine{
		embedder: embedder,
		index:    index,
		mode:     LongTerm,
		topK:     DefaultTopK,
		indexed:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Retrieve selects up to topK preferences relevant to the active
// conversation. A user with no prior preferences yields an empty result;
// the generator must handle an empty preference list.
func (e *Engine) Retrieve(ctx context.Context, user string, conversations []core.Conversation, activeIndex int) ([]core.Preference, error) {
	if activeIndex < 0 || activeIndex >= len(conversations) {
		return nil, fmt.Errorf("%w: %d of %d", ErrConversationIndex, activeIndex, len(conversations))
	}

	if e.mode == ShortTerm {
		return shortTerm(conversations[activeIndex], e.topK), nil
	}
	return e.longTerm(ctx, user, conversations, activeIndex)
}

// shortTerm returns up to topK preferences of the active conversation,
// most-recently-added first.
func shortTerm(active core.Conversation, topK int) []core.Preference {
	n := len(active.Preferences)
	if n > topK {
		n = topK
	}
	out := make([]core.Preference, 0, n)
	for i := len(active.Preferences) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, active.Preferences[i])
	}
	return out
}

func (e *Engine) longTerm(ctx context.Context, user string, conversations []core.Conversation, activeIndex int) ([]core.Preference, error) {
	query, err := e.embedder.EmbedContext(ctx, conversations[activeIndex].Context)
	if err != nil {
		return nil, err
	}

	if err := e.ensureIndexed(ctx, user, conversations); err != nil {
		return nil, err
	}

	sims, err := e.index.Similarities(ctx, user, query, len(conversations))
	if err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}

	// Forced self-similarity, see the type comment.
	sims[activeIndex] = 1.0

	type scored struct {
		pref core.Preference
		sim  float32
	}
	var all []scored
	for i, conv := range conversations {
		sim, ok := sims[i]
		if !ok {
			log.Printf("[RETRIEVAL] Conversation %d of user %q missing from index, skipped", i, user)
			continue
		}
		for _, p := range conv.Preferences {
			all = append(all, scored{pref: p, sim: sim})
		}
	}

	// Stable: equal similarity keeps insertion order, so the earlier
	// conversation and the earlier preference win.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].sim > all[j].sim
	})

	if len(all) > e.topK {
		all = all[:e.topK]
	}
	out := make([]core.Preference, len(all))
	for i, s := range all {
		out[i] = s.pref
	}
	log.Printf("[RETRIEVAL] Selected %d of %d candidate preference(s) for user %q (%s)",
		len(out), countPreferences(conversations), user, e.mode)
	return out, nil
}

// ensureIndexed embeds and indexes any conversations added since the last
// retrieval, including conversations loaded from a persistence backend.
func (e *Engine) ensureIndexed(ctx context.Context, user string, conversations []core.Conversation) error {
	e.indexedMu.Lock()
	defer e.indexedMu.Unlock()

	for i := e.indexed[user]; i < len(conversations); i++ {
		vec, err := e.embedder.EmbedContext(ctx, conversations[i].Context)
		if err != nil {
			return err
		}
		if err := e.index.Add(ctx, user, i, vec); err != nil {
			return fmt.Errorf("index conversation %d: %w", i, err)
		}
		e.indexed[user] = i + 1
	}
	return nil
}

func countPreferences(conversations []core.Conversation) int {
	n := 0
	for _, c := range conversations {
		n += len(c.Preferences)
	}
	return n
}

package conversation

import (
	"context"

	"github.com/atelierlabs/stylist-go-sdk/core"
)

// Generator produces an outfit recommendation from the current situation
// and the user's retrieved preference history. Implementations call a
// hosted model; see generator/anthropic.
type Generator interface {
	Generate(ctx context.Context, req *Request) (*Recommendation, error)
}

// Request carries everything the generator may condition on. Preferences
// and PreviousSuggestions may be empty; a cold-start user has neither.
type Request struct {
	// Context is the active conversation's situational descriptor.
	Context core.Context

	// Profile holds the user's stated attributes.
	Profile core.Profile

	// Preferences are the retrieved preference sentences, most relevant
	// first.
	Preferences []string

	// PreviousSuggestions are the outfits already shown this session, in
	// order, so the generator does not repeat itself.
	PreviousSuggestions []string
}

// Recommendation is one generated outfit.
type Recommendation struct {
	// Text is the outfit description.
	Text string

	// Image is an optional illustrative artifact (encoded image bytes).
	// Nil when artifact generation failed or is disabled; the conversation
	// continues with text only.
	Image []byte
}

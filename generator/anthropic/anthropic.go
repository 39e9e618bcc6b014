// Package anthropic generates outfit recommendations through the Messages
// API and fetches an illustrative image for each one. Artifact failures
// degrade to text-only output; they never fail a recommendation.
package anthropic

import (
	"context"
	"fmt"
	"log"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/atelierlabs/stylist-go-sdk/conversation"
	"github.com/atelierlabs/stylist-go-sdk/memory"
)

// DefaultModel is the generation model.
const DefaultModel = "claude-sonnet-4-20250514"

const systemPrompt = `You are a fashion outfit generator. Based on the provided CONTEXT (occasion), the USER (their stated attributes), your PREVIOUS SUGGESTIONS (so that you know what was suggested in the conversation) and PREFERENCES (the preferences of the person regarding clothing), create an outfit with this structure:
1. Top: Upper garments (color, material, style)
2. Bottom: Lower garments (color, material, style)
3. Footwear: Shoes/boots description
4. Accessories: Essential add-ons
5. Suggestions: 1 styling tip

Be specific with colors and materials for image generation.`

// Generator implements conversation.Generator.
type Generator struct {
	client    *sdk.Client
	images    *ImageFetcher // nil = text only
	model     string
	maxTokens int64
}

// Option configures the generator.
type Option func(*Generator)

// WithModel overrides the generation model.
func WithModel(model string) Option {
	return func(g *Generator) {
		g.model = model
	}
}

// WithMaxTokens overrides the response token cap.
func WithMaxTokens(n int64) Option {
	return func(g *Generator) {
		g.maxTokens = n
	}
}

// WithImages attaches an artifact fetcher.
func WithImages(f *ImageFetcher) Option {
	return func(g *Generator) {
		g.images = f
	}
}

// New creates a generator on an existing Anthropic client.
func New(client *sdk.Client, opts ...Option) *Generator {
	g := &Generator{
		client:    client,
		model:     DefaultModel,
		maxTokens: 1024,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces the outfit text and, when an image fetcher is
// attached, the illustrative artifact.
func (g *Generator) Generate(ctx context.Context, req *conversation.Request) (*conversation.Recommendation, error) {
	text, err := g.generateText(ctx, req)
	if err != nil {
		return nil, err
	}

	rec := &conversation.Recommendation{Text: text}
	if g.images != nil {
		image, err := g.images.Fetch(ctx, text)
		if err != nil {
			// Degradable: the recommendation stands without its artifact.
			log.Printf("[GENERATOR] Artifact fetch failed: %v", err)
		} else {
			rec.Image = image
		}
	}
	return rec, nil
}

func (g *Generator) generateText(ctx context.Context, req *conversation.Request) (string, error) {
	resp, err := g.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(g.model),
		MaxTokens: g.maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(buildPrompt(req))),
		},
		System: []sdk.TextBlockParam{
			{Text: systemPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("generate recommendation: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("generator returned no text")
	}
	return text, nil
}

// buildPrompt lays out the request sections. Empty sections are omitted;
// a cold-start user yields only CONTEXT and USER.
func buildPrompt(req *conversation.Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "CONTEXT: %s\n\n", memory.RenderContext(req.Context))
	fmt.Fprintf(&b, "USER: gender %s, height %s, body type %s\n\n",
		req.Profile.Gender, req.Profile.Height, req.Profile.BodyType)

	if len(req.Preferences) > 0 {
		b.WriteString("PREFERENCES:\n")
		for i, p := range req.Preferences {
			fmt.Fprintf(&b, "%d. %s\n", i+1, p)
		}
		b.WriteString("\n")
	}
	if len(req.PreviousSuggestions) > 0 {
		b.WriteString("PREVIOUS SUGGESTIONS:\n")
		for i, s := range req.PreviousSuggestions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, s)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

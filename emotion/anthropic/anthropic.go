// Package anthropic classifies the emotion of an utterance with a single
// Messages API call. It stands in for a local emotion classifier when one
// is not available.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
)

// DefaultModel is the classification model. Labels follow the seven-class
// scheme the assistant's memory records use.
const DefaultModel = "claude-3-5-haiku-latest"

const systemPrompt = `You classify the emotion of a short utterance.
Reply with exactly one word from: anger, disgust, fear, joy, neutral, sadness, surprise.
If the utterance carries no discernible emotion, reply: neutral.`

// Recognizer implements emotion.TextRecognizer on the Anthropic API.
type Recognizer struct {
	client *sdk.Client
	model  string
}

// Option configures the recognizer.
type Option func(*Recognizer)

// WithModel overrides the classification model.
func WithModel(model string) Option {
	return func(r *Recognizer) {
		r.model = model
	}
}

// New creates a recognizer on an existing Anthropic client.
func New(client *sdk.Client, opts ...Option) *Recognizer {
	r := &Recognizer{
		client: client,
		model:  DefaultModel,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LabelText returns a single lower-case emotion word for the utterance.
func (r *Recognizer) LabelText(ctx context.Context, text string) (string, error) {
	resp, err := r.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(r.model),
		MaxTokens: 8,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(text)),
		},
		System: []sdk.TextBlockParam{
			{Text: systemPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("classify emotion: %w", err)
	}

	var label string
	for _, block := range resp.Content {
		if block.Type == "text" {
			label += block.Text
		}
	}
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return "", fmt.Errorf("classifier returned no label")
	}
	// Keep only the first word in case the model elaborates.
	if i := strings.IndexAny(label, " \n\t.,"); i > 0 {
		label = label[:i]
	}
	return label, nil
}

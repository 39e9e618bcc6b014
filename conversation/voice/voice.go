// Package voice glues audio capture, transcription and affect labelling
// into a conversation Listener. Pair it with a speech.Queue on the
// speaker side for a full voice session.
package voice

import (
	"context"
	"fmt"
	"log"

	"github.com/atelierlabs/stylist-go-sdk/emotion"
	"github.com/atelierlabs/stylist-go-sdk/speech"
)

// Listener records one utterance per turn, transcribes it, and labels the
// transcript for emotion. An empty transcript is returned as-is; the
// controller re-prompts on its own terms.
type Listener struct {
	recorder    speech.Recorder
	transcriber speech.Transcriber
	emotions    *emotion.System // optional
}

// Option configures the listener.
type Option func(*Listener)

// WithEmotionSystem attaches an emotion system to label transcripts.
func WithEmotionSystem(s *emotion.System) Option {
	return func(l *Listener) {
		l.emotions = s
	}
}

// NewListener creates a voice listener.
func NewListener(recorder speech.Recorder, transcriber speech.Transcriber, opts ...Option) *Listener {
	l := &Listener{
		recorder:    recorder,
		transcriber: transcriber,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Listen captures and transcribes one utterance.
func (l *Listener) Listen(ctx context.Context) (string, string, error) {
	audio, err := l.recorder.Record(ctx)
	if err != nil {
		return "", "", fmt.Errorf("recording utterance: %w", err)
	}
	text, err := l.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return "", "", fmt.Errorf("transcribing utterance: %w", err)
	}
	log.Printf("[SPEECH] transcript: %q", text)

	label := emotion.Unknown
	if l.emotions != nil && text != "" {
		label = l.emotions.Label(ctx, text, nil)
	}
	return text, label, nil
}

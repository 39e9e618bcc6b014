// Package emotion infers a single emotion label from what the user said
// and how they looked while saying it. Inference quality is out of scope;
// the package defines the collaborator contract and the signal combiner.
//
// Inference failures never abort a conversation turn: every error path
// degrades to the Unknown sentinel.
package emotion

import (
	"context"
	"log"
)

// Sentinel labels.
const (
	// Unknown is substituted whenever a recognizer fails or has no signal.
	Unknown = "Unknown"

	// Neutral is the label sources report when they carry no affect
	// channel at all (e.g., typed input).
	Neutral = "neutral"

	// Mixed is reported when the linguistic and visual signals disagree.
	Mixed = "Mixed"
)

// TextRecognizer labels the emotion of an utterance from its words.
type TextRecognizer interface {
	LabelText(ctx context.Context, text string) (string, error)
}

// VisionRecognizer labels the emotion of a face capture.
type VisionRecognizer interface {
	LabelImage(ctx context.Context, image []byte) (string, error)
}

// System combines a linguistic and a visual signal into one label. Either
// recognizer may be nil; a System with neither always reports Unknown.
type System struct {
	text   TextRecognizer
	vision VisionRecognizer
}

// NewSystem creates a combiner over the given recognizers.
func NewSystem(text TextRecognizer, vision VisionRecognizer) *System {
	return &System{text: text, vision: vision}
}

// Label infers one label for an utterance and an optional face capture.
// It never returns an error: failed or missing signals become Unknown.
func (s *System) Label(ctx context.Context, text string, image []byte) string {
	linguistic := s.labelText(ctx, text)
	visual := s.labelImage(ctx, image)
	return Combine(linguistic, visual)
}

func (s *System) labelText(ctx context.Context, text string) string {
	if s.text == nil || text == "" {
		return Unknown
	}
	label, err := s.text.LabelText(ctx, text)
	if err != nil {
		log.Printf("[EMOTION] Text recognizer failed: %v", err)
		return Unknown
	}
	if label == "" {
		return Unknown
	}
	return label
}

func (s *System) labelImage(ctx context.Context, image []byte) string {
	if s.vision == nil || len(image) == 0 {
		return Unknown
	}
	label, err := s.vision.LabelImage(ctx, image)
	if err != nil {
		log.Printf("[EMOTION] Vision recognizer failed: %v", err)
		return Unknown
	}
	if label == "" {
		return Unknown
	}
	return label
}

// Combine merges the two signals: agreement wins, a lone signal wins over
// Unknown, disagreement is Mixed.
func Combine(linguistic, visual string) string {
	switch {
	case linguistic == visual:
		return linguistic
	case linguistic == Unknown:
		return visual
	case visual == Unknown:
		return linguistic
	default:
		return Mixed
	}
}

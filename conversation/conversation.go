// Package conversation drives the dialogue state machine: it interviews
// the user, gathers a situational context, and loops recommendation rounds
// until the user is satisfied.
//
// All user-visible output goes through a single Speaker and all input
// through a single Listener. Both are strategy interfaces chosen once at
// construction, so the same controller runs against a terminal, a
// websocket front end, or a scripted fixture.
package conversation

import (
	"context"
	"fmt"
)

// Phase is one state of the dialogue state machine.
type Phase int

const (
	// PhaseAskName collects identity and profile, or greets a returning
	// user. This is the initial phase.
	PhaseAskName Phase = iota

	// PhaseAskContext collects occasion, weather and style and opens a new
	// conversation in the store.
	PhaseAskContext

	// PhaseRecommending loops recommendation rounds, recording one
	// preference per round.
	PhaseRecommending

	// PhaseEnd is terminal.
	PhaseEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseAskName:
		return "ask_name"
	case PhaseAskContext:
		return "ask_context"
	case PhaseRecommending:
		return "recommending"
	case PhaseEnd:
		return "end"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Speaker is the sink for every user-visible utterance.
type Speaker interface {
	Speak(ctx context.Context, message string) error
}

// Listener is the blocking source for user input. The source may be voice,
// typed text, or a scripted fixture; emotion is a single label or a
// sentinel and may be empty when the source cannot infer one.
type Listener interface {
	Listen(ctx context.Context) (text string, emotion string, err error)
}

// ImageSink displays an illustrative artifact. Optional; a controller
// without one simply skips artifacts.
type ImageSink interface {
	ShowImage(ctx context.Context, image []byte) error
}

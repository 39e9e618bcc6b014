// Package speech defines the spoken-audio collaborator contracts and the
// asynchronous playback queue that keeps overlapping utterances sequential.
package speech

import "context"

// Transcriber converts a recorded audio clip to text.
// Implementations: google.STT; scripted fixtures in tests.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Synthesizer converts text to an audio clip.
// Implementations: google.TTS.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Player plays one audio clip to completion.
type Player interface {
	Play(ctx context.Context, audio []byte) error
}

// Recorder captures one audio clip from the user. Capture semantics
// (device, duration, format) are out of scope; the controller only needs
// the bytes.
type Recorder interface {
	Record(ctx context.Context) ([]byte, error)
}

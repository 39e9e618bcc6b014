// Package google adapts Google Cloud Speech-to-Text and Text-to-Speech to
// the speech collaborator contracts. Both adapters work on whole clips;
// conversational turns are short enough that streaming buys nothing here.
package google

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"
)

// Config configures both adapters.
type Config struct {
	// CredentialsFile is the service-account JSON path. Empty uses
	// application default credentials.
	CredentialsFile string

	// LanguageCode for recognition and synthesis. Default "en-US".
	LanguageCode string

	// Voice is the synthesis voice name. Default "en-US-Wavenet-F".
	Voice string

	// SampleRateHertz for LINEAR16 audio. Default 16000.
	SampleRateHertz int32
}

func (c *Config) defaults() {
	if c.LanguageCode == "" {
		c.LanguageCode = "en-US"
	}
	if c.Voice == "" {
		c.Voice = "en-US-Wavenet-F"
	}
	if c.SampleRateHertz == 0 {
		c.SampleRateHertz = 16000
	}
}

func (c Config) clientOptions() []option.ClientOption {
	if c.CredentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(c.CredentialsFile)}
}

// STT implements speech.Transcriber on Cloud Speech-to-Text.
type STT struct {
	client *speech.Client
	cfg    Config
}

// NewSTT creates the transcription adapter.
func NewSTT(ctx context.Context, cfg Config) (*STT, error) {
	cfg.defaults()
	client, err := speech.NewClient(ctx, cfg.clientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	return &STT{client: client, cfg: cfg}, nil
}

// Transcribe recognizes one LINEAR16 clip and returns the joined
// transcript. No speech in the clip yields an empty string, not an error.
func (s *STT) Transcribe(ctx context.Context, audio []byte) (string, error) {
	resp, err := s.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:          speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:   s.cfg.SampleRateHertz,
			AudioChannelCount: 1,
			LanguageCode:      s.cfg.LanguageCode,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}

	var parts []string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			parts = append(parts, result.Alternatives[0].Transcript)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " ")), nil
}

// Close releases the client.
func (s *STT) Close() error {
	return s.client.Close()
}

// TTS implements speech.Synthesizer on Cloud Text-to-Speech.
type TTS struct {
	client *texttospeech.Client
	cfg    Config
}

// NewTTS creates the synthesis adapter.
func NewTTS(ctx context.Context, cfg Config) (*TTS, error) {
	cfg.defaults()
	client, err := texttospeech.NewClient(ctx, cfg.clientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("create texttospeech client: %w", err)
	}
	return &TTS{client: client, cfg: cfg}, nil
}

// Synthesize renders text as a LINEAR16 clip.
func (t *TTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := t.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: t.cfg.LanguageCode,
			Name:         t.cfg.Voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding:   texttospeechpb.AudioEncoding_LINEAR16,
			SampleRateHertz: t.cfg.SampleRateHertz,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	return resp.AudioContent, nil
}

// Close releases the client.
func (t *TTS) Close() error {
	return t.client.Close()
}

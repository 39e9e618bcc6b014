// Package console provides terminal-backed conversation ports for
// headless runs and local development.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/atelierlabs/stylist-go-sdk/emotion"
)

// Port speaks to an io.Writer and listens on an io.Reader, one line per
// turn. Typed input has no affect channel, so the emotion label defaults
// to neutral unless an emotion system is attached to read it off the text.
type Port struct {
	out      io.Writer
	in       *bufio.Scanner
	emotions *emotion.System // optional
}

// Option configures the port.
type Option func(*Port)

// WithEmotionSystem labels typed input through an emotion system instead
// of reporting neutral.
func WithEmotionSystem(s *emotion.System) Option {
	return func(p *Port) {
		p.emotions = s
	}
}

// New creates a port on the given streams.
func New(out io.Writer, in io.Reader, opts ...Option) *Port {
	p := &Port{
		out: out,
		in:  bufio.NewScanner(in),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewStdio creates a port on stdout/stdin.
func NewStdio(opts ...Option) *Port {
	return New(os.Stdout, os.Stdin, opts...)
}

// Speak prints one assistant line.
func (p *Port) Speak(ctx context.Context, message string) error {
	_, err := fmt.Fprintf(p.out, "AI says: %s\n", message)
	return err
}

// Listen blocks for one input line. EOF is reported as io.EOF so drivers
// can end the session cleanly.
func (p *Port) Listen(ctx context.Context) (string, string, error) {
	fmt.Fprint(p.out, "> ")
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", "", err
		}
		return "", "", io.EOF
	}
	text := p.in.Text()

	label := emotion.Neutral
	if p.emotions != nil {
		label = p.emotions.Label(ctx, text, nil)
	}
	return text, label, nil
}

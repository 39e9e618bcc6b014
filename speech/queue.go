package speech

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"unicode"
)

// Queue turns a Synthesizer and a Player into a fire-and-forget speaker.
// Speak returns as soon as the text is queued; a single worker goroutine
// synthesizes and plays entries in submission order, so overlapping calls
// never talk over each other.
type Queue struct {
	synth  Synthesizer
	player Player

	entries chan string
	done    chan struct{}
	once    sync.Once

	mu     sync.Mutex
	closed bool
}

// NewQueue creates the queue and starts its worker.
func NewQueue(synth Synthesizer, player Player) *Queue {
	q := &Queue{
		synth:   synth,
		player:  player,
		entries: make(chan string, 16),
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

// Speak queues text for playback. It blocks only when the queue buffer is
// full and never reports synthesis or playback failures; those are logged
// and dropped so the conversation keeps moving. Speaking into a closed
// queue returns an error instead of panicking.
func (q *Queue) Speak(ctx context.Context, text string) error {
	// The mutex pairs with Close so the send never hits a closed channel.
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return fmt.Errorf("speech queue is closed")
	}

	select {
	case q.entries <- Sanitize(text):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting entries, drains what was already queued, and waits
// for the worker to finish.
func (q *Queue) Close() error {
	q.once.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		close(q.entries)
	})
	<-q.done
	return nil
}

func (q *Queue) run() {
	defer close(q.done)
	for text := range q.entries {
		if err := q.play(text); err != nil {
			log.Printf("[SPEECH] Playback failed: %v", err)
		}
	}
}

func (q *Queue) play(text string) error {
	ctx := context.Background()
	audio, err := q.synth.Synthesize(ctx, text)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}
	if err := q.player.Play(ctx, audio); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	return nil
}

// Sanitize prepares generated text for speech: when a "Summary:" section
// exists only its tail is spoken, and markdown list markers are stripped
// so the voice does not read out "one dot".
func Sanitize(text string) string {
	original := text
	if _, tail, ok := strings.Cut(text, "Summary:"); ok {
		text = strings.TrimSpace(tail)
	}
	if text == "" {
		text = original
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = stripListMarker(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, " ")
}

// stripListMarker removes a leading "1. ", "- " or "* " from a line.
func stripListMarker(line string) string {
	if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") {
		return line[2:]
	}
	i := 0
	for i < len(line) && unicode.IsDigit(rune(line[i])) {
		i++
	}
	if i > 0 && strings.HasPrefix(line[i:], ". ") {
		return line[i+2:]
	}
	return line
}

// Package ws exposes conversation ports over a websocket connection so a
// browser client can drive a session. Every frame is a small JSON
// envelope; images travel base64-encoded inside the envelope.
package ws

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/atelierlabs/stylist-go-sdk/emotion"
)

// Frame types exchanged with the client.
const (
	FrameSay   = "say"   // assistant or user utterance
	FrameImage = "image" // rendered recommendation image
)

// Frame is the wire envelope. Text carries utterances, Emotion carries the
// client-reported affect label on user frames, Image carries PNG/JPEG bytes
// on image frames.
type Frame struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Emotion string `json:"emotion,omitempty"`
	Image   []byte `json:"image,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Port adapts one websocket connection into Speaker, Listener and
// ImageSink. A connection serves exactly one session at a time.
type Port struct {
	id   string
	conn *websocket.Conn

	mu sync.Mutex // serializes writes
}

// Upgrade promotes an HTTP request to a websocket port.
func Upgrade(w http.ResponseWriter, r *http.Request) (*Port, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("upgrading connection: %w", err)
	}
	p := &Port{
		id:   uuid.NewString(),
		conn: conn,
	}
	log.Printf("[WS] connection %s opened from %s", p.id, r.RemoteAddr)
	return p, nil
}

// ID returns the connection identifier.
func (p *Port) ID() string {
	return p.id
}

// Speak sends one assistant utterance frame.
func (p *Port) Speak(ctx context.Context, message string) error {
	return p.write(Frame{Type: FrameSay, Text: message})
}

// ShowImage sends the recommendation image to the client.
func (p *Port) ShowImage(ctx context.Context, image []byte) error {
	return p.write(Frame{Type: FrameImage, Image: image})
}

// Listen blocks for the next user utterance frame. Frames of other types
// are discarded. A missing emotion label is normalized to Unknown.
func (p *Port) Listen(ctx context.Context) (string, string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			return "", "", fmt.Errorf("reading frame: %w", err)
		}
		var f Frame
		if err := json.Unmarshal(data, &f); err != nil {
			log.Printf("[WS] connection %s: dropping malformed frame: %v", p.id, err)
			continue
		}
		if f.Type != FrameSay {
			continue
		}
		label := f.Emotion
		if label == "" {
			label = emotion.Unknown
		}
		return f.Text, label, nil
	}
}

// Close shuts the connection down.
func (p *Port) Close() error {
	log.Printf("[WS] connection %s closed", p.id)
	return p.conn.Close()
}

func (p *Port) write(f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

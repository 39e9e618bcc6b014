package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// startPort upgrades one connection and hands the server-side port to fn.
func startPort(t *testing.T, fn func(*Port)) *websocket.Conn {
	t.Helper()
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := Upgrade(w, r)
		if err != nil {
			t.Errorf("Upgrade: %v", err)
			return
		}
		defer p.Close()
		fn(p)
		<-done
	}))
	t.Cleanup(func() {
		close(done)
		srv.Close()
	})

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	return f
}

func TestSpeakAndShowImageFrames(t *testing.T) {
	conn := startPort(t, func(p *Port) {
		ctx := context.Background()
		if err := p.Speak(ctx, "Hi! What's your name?"); err != nil {
			t.Errorf("Speak: %v", err)
		}
		if err := p.ShowImage(ctx, []byte{0x89, 0x50, 0x4e, 0x47}); err != nil {
			t.Errorf("ShowImage: %v", err)
		}
	})

	say := readFrame(t, conn)
	if say.Type != FrameSay || say.Text != "Hi! What's your name?" {
		t.Errorf("frame = %+v", say)
	}

	img := readFrame(t, conn)
	if img.Type != FrameImage || len(img.Image) != 4 || img.Image[0] != 0x89 {
		t.Errorf("frame = %+v", img)
	}
}

func TestListenReturnsUserFrame(t *testing.T) {
	got := make(chan [2]string, 1)
	conn := startPort(t, func(p *Port) {
		text, mood, err := p.Listen(context.Background())
		if err != nil {
			t.Errorf("Listen: %v", err)
			return
		}
		got <- [2]string{text, mood}
	})

	data, _ := json.Marshal(Frame{Type: FrameSay, Text: "my name is John", Emotion: "happy"})
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write: %v", err)
	}

	reply := <-got
	if reply[0] != "my name is John" || reply[1] != "happy" {
		t.Errorf("Listen = %v", reply)
	}
}

func TestListenSkipsNonSayFrames(t *testing.T) {
	got := make(chan string, 1)
	conn := startPort(t, func(p *Port) {
		text, _, err := p.Listen(context.Background())
		if err != nil {
			t.Errorf("Listen: %v", err)
			return
		}
		got <- text
	})

	for _, raw := range []string{
		"not json at all",
		`{"type":"image","image":"aGk="}`,
		`{"type":"say","text":"real reply"}`,
	} {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	if text := <-got; text != "real reply" {
		t.Errorf("Listen = %q, want %q", text, "real reply")
	}
}

func TestListenMissingEmotionNormalized(t *testing.T) {
	got := make(chan string, 1)
	conn := startPort(t, func(p *Port) {
		_, mood, err := p.Listen(context.Background())
		if err != nil {
			t.Errorf("Listen: %v", err)
			return
		}
		got <- mood
	})

	data, _ := json.Marshal(Frame{Type: FrameSay, Text: "hello"})
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write: %v", err)
	}
	if mood := <-got; mood != "Unknown" {
		t.Errorf("emotion = %q, want Unknown", mood)
	}
}

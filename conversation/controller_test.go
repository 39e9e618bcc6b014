package conversation

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/atelierlabs/stylist-go-sdk/core"
	"github.com/atelierlabs/stylist-go-sdk/emotion"
	"github.com/atelierlabs/stylist-go-sdk/memory"
)

// reply is one scripted user turn.
type reply struct {
	text    string
	emotion string
}

// scriptPort plays back scripted replies and records everything spoken.
type scriptPort struct {
	t       *testing.T
	replies []reply
	spoken  []string
	images  [][]byte
}

func (p *scriptPort) Speak(ctx context.Context, message string) error {
	p.spoken = append(p.spoken, message)
	return nil
}

func (p *scriptPort) Listen(ctx context.Context) (string, string, error) {
	if len(p.replies) == 0 {
		p.t.Fatalf("Listen called with no scripted reply; spoken so far: %q", p.spoken)
	}
	r := p.replies[0]
	p.replies = p.replies[1:]
	return r.text, r.emotion, nil
}

func (p *scriptPort) ShowImage(ctx context.Context, image []byte) error {
	p.images = append(p.images, image)
	return nil
}

func (p *scriptPort) said(message string) bool {
	for _, s := range p.spoken {
		if s == message {
			return true
		}
	}
	return false
}

// stubGenerator numbers its outfits and records every request.
type stubGenerator struct {
	calls    int
	requests []*Request
	fail     bool
	image    []byte
}

func (g *stubGenerator) Generate(ctx context.Context, req *Request) (*Recommendation, error) {
	g.requests = append(g.requests, req)
	if g.fail {
		return nil, fmt.Errorf("model overloaded")
	}
	g.calls++
	return &Recommendation{Text: fmt.Sprintf("Outfit %d", g.calls), Image: g.image}, nil
}

// activeRetriever returns the active conversation's preferences in order.
type activeRetriever struct{}

func (activeRetriever) Retrieve(ctx context.Context, user string, conversations []core.Conversation, activeIndex int) ([]core.Preference, error) {
	return conversations[activeIndex].Preferences, nil
}

func newTestStore(t *testing.T) *memory.Store {
	t.Helper()
	s, err := memory.NewStore(activeRetriever{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestControllerStartsAtAskName(t *testing.T) {
	c := NewController(newTestStore(t), &stubGenerator{}, &scriptPort{t: t}, &scriptPort{t: t})
	if c.Phase() != PhaseAskName {
		t.Fatalf("phase = %v, want %v", c.Phase(), PhaseAskName)
	}
	if c.User() != "" {
		t.Errorf("User = %q, want empty", c.User())
	}
}

func TestFullSession(t *testing.T) {
	store := newTestStore(t)
	gen := &stubGenerator{}
	port := &scriptPort{t: t, replies: []reply{
		{text: "my name is John"},
		{text: "Male"},
		{text: "175"},
		{text: "Tetrahedron"},
		{text: "Party"},
		{text: "Sunny"},
		{text: "Summer Vibes"},
		// Round 1: unhappy.
		{text: "Too flashy", emotion: "sad"},
		{text: "No"},
		// Round 2: still unhappy.
		{text: "Better, but not quite", emotion: "neutral"},
		{text: "no thanks"},
		// Round 3: done.
		{text: "Love it", emotion: "happy"},
		{text: "Yes"},
	}}

	c := NewController(store, gen, port, port)
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if c.Phase() != PhaseEnd {
		t.Errorf("phase = %v, want %v", c.Phase(), PhaseEnd)
	}
	if c.User() != "John" {
		t.Errorf("User = %q, want John", c.User())
	}
	if c.ConversationIndex() != 0 {
		t.Errorf("ConversationIndex = %d, want 0", c.ConversationIndex())
	}

	user, ok := store.User("John")
	if !ok {
		t.Fatal("user John not created")
	}
	want := core.Profile{Name: "John", Gender: "Male", Height: "175", BodyType: "Tetrahedron"}
	if user.Profile != want {
		t.Errorf("profile = %+v, want %+v", user.Profile, want)
	}
	if len(user.Conversations) != 1 {
		t.Fatalf("conversations = %d, want 1", len(user.Conversations))
	}
	conv := user.Conversations[0]
	if conv.Context != (core.Context{Occasion: "Party", Weather: "Sunny", Style: "Summer Vibes"}) {
		t.Errorf("context = %+v", conv.Context)
	}
	if len(conv.Preferences) != 3 {
		t.Fatalf("preferences = %d, want 3", len(conv.Preferences))
	}
	first := conv.Preferences[0]
	if first.Outfit != "Outfit 1" || first.Response != "Too flashy" || first.Emotion != "sad" {
		t.Errorf("preferences[0] = %+v", first)
	}

	// The third request must carry both prior outfits as previous
	// suggestions and the recorded reactions as preferences.
	last := gen.requests[2]
	if len(last.PreviousSuggestions) != 2 || last.PreviousSuggestions[1] != "Outfit 2" {
		t.Errorf("PreviousSuggestions = %v", last.PreviousSuggestions)
	}
	if len(last.Preferences) != 2 || !strings.Contains(last.Preferences[0], "Too flashy") {
		t.Errorf("Preferences = %v", last.Preferences)
	}

	if !port.said(msgIntro) {
		t.Errorf("intro never spoken; spoken = %q", port.spoken)
	}
	if !port.said(msgGoodbye) {
		t.Errorf("goodbye never spoken; spoken = %q", port.spoken)
	}
}

func TestReturningUserSkipsInterview(t *testing.T) {
	store := newTestStore(t)
	if err := store.CreateUser(core.Profile{Name: "John", Gender: "Male"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	port := &scriptPort{t: t}
	c := NewController(store, &stubGenerator{}, port, port)
	if err := c.Step(context.Background()); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.Phase() != PhaseAskContext {
		t.Errorf("phase = %v, want %v", c.Phase(), PhaseAskContext)
	}
	if c.User() != "John" {
		t.Errorf("User = %q, want John", c.User())
	}
	if !port.said("Welcome back, John!") {
		t.Errorf("welcome line missing; spoken = %q", port.spoken)
	}
}

func TestRoundLimitEndsSession(t *testing.T) {
	store := newTestStore(t)
	port := &scriptPort{t: t, replies: []reply{
		{text: "John"}, {text: "Male"}, {text: "175"}, {text: "Cube"},
		{text: "Gala"}, {text: "Rainy"}, {text: "Formal"},
		{text: "meh", emotion: "neutral"}, {text: "No"},
		{text: "still meh", emotion: "neutral"}, {text: "No"},
	}}

	c := NewController(store, &stubGenerator{}, port, port, WithMaxRounds(2))
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.Phase() != PhaseEnd {
		t.Errorf("phase = %v, want %v", c.Phase(), PhaseEnd)
	}
	if !port.said(msgRoundLimit) {
		t.Errorf("round-limit line missing; spoken = %q", port.spoken)
	}
	user, _ := store.User("John")
	if got := len(user.Conversations[0].Preferences); got != 2 {
		t.Errorf("preferences = %d, want 2", got)
	}
}

func TestGeneratorFailureDegrades(t *testing.T) {
	store := newTestStore(t)
	port := &scriptPort{t: t, replies: []reply{
		{text: "John"}, {text: "Male"}, {text: "175"}, {text: "Cube"},
		{text: "Party"}, {text: "Sunny"}, {text: "Chill"},
		{text: "ok then", emotion: "neutral"}, {text: "Yes"},
	}}

	c := NewController(store, &stubGenerator{fail: true}, port, port)
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	user, _ := store.User("John")
	prefs := user.Conversations[0].Preferences
	if len(prefs) != 1 || prefs[0].Outfit != msgGeneratorDown {
		t.Errorf("preferences = %+v, want the fallback outfit line", prefs)
	}
	// No recommendation arrived, so it must not be announced.
	if port.said(msgIntro) {
		t.Errorf("intro spoken on the degraded path; spoken = %q", port.spoken)
	}
	if !port.said(msgGeneratorDown) {
		t.Errorf("fallback line never spoken; spoken = %q", port.spoken)
	}
}

func TestMissingEmotionStoredAsUnknown(t *testing.T) {
	store := newTestStore(t)
	port := &scriptPort{t: t, replies: []reply{
		{text: "John"}, {text: "Male"}, {text: "175"}, {text: "Cube"},
		{text: "Party"}, {text: "Sunny"}, {text: "Chill"},
		{text: "fine"}, {text: "Yes"},
	}}

	c := NewController(store, &stubGenerator{}, port, port)
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	user, _ := store.User("John")
	if got := user.Conversations[0].Preferences[0].Emotion; got != emotion.Unknown {
		t.Errorf("emotion = %q, want %q", got, emotion.Unknown)
	}
}

func TestImageSinkReceivesImage(t *testing.T) {
	store := newTestStore(t)
	gen := &stubGenerator{image: []byte{0x89, 0x50}}
	port := &scriptPort{t: t, replies: []reply{
		{text: "John"}, {text: "Male"}, {text: "175"}, {text: "Cube"},
		{text: "Party"}, {text: "Sunny"}, {text: "Chill"},
		{text: "nice", emotion: "happy"}, {text: "Yes"},
	}}

	c := NewController(store, gen, port, port, WithImageSink(port))
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(port.images) != 1 {
		t.Errorf("images shown = %d, want 1", len(port.images))
	}
}

func TestResetStartsNewSession(t *testing.T) {
	store := newTestStore(t)
	port := &scriptPort{t: t, replies: []reply{
		{text: "John"}, {text: "Male"}, {text: "175"}, {text: "Cube"},
		{text: "Party"}, {text: "Sunny"}, {text: "Chill"},
		{text: "nice", emotion: "happy"}, {text: "Yes"},
	}}
	c := NewController(store, &stubGenerator{}, port, port)
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	c.Reset()
	if c.Phase() != PhaseAskName {
		t.Errorf("phase after Reset = %v, want %v", c.Phase(), PhaseAskName)
	}

	// Second session: the user record survives, so only context questions
	// remain before the next recommendation.
	port.replies = []reply{
		{text: "Wedding"}, {text: "Cloudy"}, {text: "Classic"},
		{text: "lovely", emotion: "happy"}, {text: "Yes"},
	}
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	user, _ := store.User("John")
	if len(user.Conversations) != 2 {
		t.Errorf("conversations = %d, want 2", len(user.Conversations))
	}
	if c.ConversationIndex() != 1 {
		t.Errorf("ConversationIndex = %d, want 1", c.ConversationIndex())
	}
}

func TestCancelledContextStopsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	port := &scriptPort{t: t}
	c := NewController(newTestStore(t), &stubGenerator{}, port, port)
	if err := c.Run(ctx); err == nil {
		t.Fatal("Run returned nil on a cancelled context")
	}
}

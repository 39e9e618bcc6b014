package conversation

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/atelierlabs/stylist-go-sdk/core"
	"github.com/atelierlabs/stylist-go-sdk/emotion"
	"github.com/atelierlabs/stylist-go-sdk/memory"
)

// DefaultMaxRounds bounds the satisfaction-retry loop. The requirement is
// "keep refining until the user is satisfied"; the bound guarantees the
// session still terminates.
const DefaultMaxRounds = 10

// Prompts and sentinels spoken by the controller.
const (
	msgGreeting     = "Hi! I'm an AI fashion assistant. What's your name?"
	msgAskGender    = "What's your gender?"
	msgAskHeight    = "What's your height?"
	msgAskBodyType  = "How would you describe your body type?"
	msgAskOccasion  = "What's the occasion?"
	msgAskWeather   = "What's the weather like?"
	msgAskStyle     = "What style are you going for?"
	msgIntro        = "Here is a recommendation for you."
	msgAskReaction  = "What do you think of it?"
	msgAskSatisfied = "Are you satisfied with the recommendation?"
	msgGoodbye      = "Thank you for using our service. Have a nice day!"
	msgRoundLimit   = "Let's leave it here for now. Come back any time and we'll keep refining!"

	// Spoken when the generator fails for a round; the turn still
	// completes and the reaction is still recorded.
	msgGeneratorDown = "I couldn't put together a new outfit just now. Let me know how the last idea felt anyway."
)

// Controller is the finite-state dialogue driver. It holds only the active
// user name and conversation index; the store owns all conversation data.
//
// A controller is not safe for concurrent use; the store it writes to is,
// so independent controllers may share one store. Front ends that drive a
// controller from a background goroutine must cancel the context and wait
// for Run to return before resetting shared state; phase boundaries are
// the only safe cancellation points.
type Controller struct {
	store     *memory.Store
	generator Generator
	speaker   Speaker
	listener  Listener
	images    ImageSink
	maxRounds int

	sessionID         string
	phase             Phase
	user              string
	conversationIndex int
	rounds            int
	previous          []string
}

// Option configures the controller.
type Option func(*Controller)

// WithImageSink attaches an artifact display.
func WithImageSink(sink ImageSink) Option {
	return func(c *Controller) {
		c.images = sink
	}
}

// WithMaxRounds overrides the recommendation round bound.
func WithMaxRounds(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxRounds = n
		}
	}
}

// NewController creates a controller in PhaseAskName.
func NewController(store *memory.Store, generator Generator, speaker Speaker, listener Listener, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		generator: generator,
		speaker:   speaker,
		listener:  listener,
		maxRounds: DefaultMaxRounds,
		sessionID: uuid.New().String(),
		phase:     PhaseAskName,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Phase returns the current dialogue phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// User returns the active user name, empty before the profile interview.
func (c *Controller) User() string {
	return c.user
}

// ConversationIndex returns the active conversation's index within its
// user. Only valid from PhaseRecommending on.
func (c *Controller) ConversationIndex() int {
	return c.conversationIndex
}

// Run advances the dialogue until PhaseEnd. The context is checked between
// phases; Speak/Listen calls are the suspension points.
func (c *Controller) Run(ctx context.Context) error {
	for c.phase != PhaseEnd {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Reset starts a fresh session against the same store, mirroring the
// outer "run dialogues indefinitely" driver loop. Stored users and
// preferences survive; a returning user skips the profile interview.
func (c *Controller) Reset() {
	c.sessionID = uuid.New().String()
	c.phase = PhaseAskName
	c.user = ""
	c.conversationIndex = 0
	c.rounds = 0
	c.previous = nil
}

// Step performs one phase transition.
func (c *Controller) Step(ctx context.Context) error {
	switch c.phase {
	case PhaseAskName:
		return c.handleAskName(ctx)
	case PhaseAskContext:
		return c.handleAskContext(ctx)
	case PhaseRecommending:
		return c.handleRecommending(ctx)
	case PhaseEnd:
		return nil
	default:
		return fmt.Errorf("invalid phase %v", c.phase)
	}
}

func (c *Controller) handleAskName(ctx context.Context) error {
	// Returning-user shortcut: the store holds at most one meaningfully
	// differentiated user in this deployment, so the first record is the
	// returning user.
	if users := c.store.ListUsers(); len(users) > 0 {
		c.user = users[0].Name
		log.Printf("[CONTROLLER] session=%s returning user %q", c.sessionID, c.user)
		if err := c.speaker.Speak(ctx, fmt.Sprintf("Welcome back, %s!", c.user)); err != nil {
			return err
		}
		c.phase = PhaseAskContext
		return nil
	}

	reply, err := c.ask(ctx, msgGreeting)
	if err != nil {
		return err
	}
	// "my name is John" yields John; anything else is taken literally,
	// blank included. No validation layer in scope.
	name := ExtractName(reply)
	if name == "" {
		name = reply
	}

	gender, err := c.ask(ctx, msgAskGender)
	if err != nil {
		return err
	}
	height, err := c.ask(ctx, msgAskHeight)
	if err != nil {
		return err
	}
	bodyType, err := c.ask(ctx, msgAskBodyType)
	if err != nil {
		return err
	}

	profile := core.Profile{Name: name, Gender: gender, Height: height, BodyType: bodyType}
	if err := c.store.CreateUser(profile); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	c.user = name
	log.Printf("[CONTROLLER] session=%s created user %q", c.sessionID, name)

	c.phase = PhaseAskContext
	return nil
}

func (c *Controller) handleAskContext(ctx context.Context) error {
	occasion, err := c.ask(ctx, msgAskOccasion)
	if err != nil {
		return err
	}
	weather, err := c.ask(ctx, msgAskWeather)
	if err != nil {
		return err
	}
	style, err := c.ask(ctx, msgAskStyle)
	if err != nil {
		return err
	}

	cc := core.Context{Occasion: occasion, Weather: weather, Style: style}
	index, err := c.store.CreateConversation(c.user, cc)
	if err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}

	c.conversationIndex = index
	c.rounds = 0
	c.previous = nil
	c.phase = PhaseRecommending
	return nil
}

func (c *Controller) handleRecommending(ctx context.Context) error {
	// Retrieval failures are integration faults (broken embedding
	// provider or index) and abort the session.
	prefs, err := c.store.Retrieve(ctx, c.user, c.conversationIndex)
	if err != nil {
		return err
	}

	profile, ok := c.store.Profile(c.user)
	if !ok {
		return fmt.Errorf("active user %q: %w", c.user, memory.ErrUnknownUser)
	}
	conv, err := c.store.Conversation(c.user, c.conversationIndex)
	if err != nil {
		return err
	}
	rec, err := c.generator.Generate(ctx, &Request{
		Context:             conv.Context,
		Profile:             profile,
		Preferences:         prefs,
		PreviousSuggestions: c.previous,
	})
	if err != nil {
		// Degradable: the round continues with a sentinel line. The intro
		// is skipped; announcing a recommendation that never arrived reads
		// wrong.
		log.Printf("[CONTROLLER] session=%s generator failed: %v", c.sessionID, err)
		rec = &Recommendation{Text: msgGeneratorDown}
	} else if err := c.speaker.Speak(ctx, msgIntro); err != nil {
		return err
	}
	if err := c.speaker.Speak(ctx, rec.Text); err != nil {
		return err
	}
	if c.images != nil && len(rec.Image) > 0 {
		if err := c.images.ShowImage(ctx, rec.Image); err != nil {
			// Degradable: continue with text only.
			log.Printf("[CONTROLLER] session=%s show image failed: %v", c.sessionID, err)
		}
	}

	if err := c.speaker.Speak(ctx, msgAskReaction); err != nil {
		return err
	}
	reaction, mood, err := c.listener.Listen(ctx)
	if err != nil {
		return err
	}
	if mood == "" {
		mood = emotion.Unknown
	}

	pref := core.Preference{Outfit: rec.Text, Response: reaction, Emotion: mood}
	if err := c.store.AddPreference(c.user, c.conversationIndex, pref); err != nil {
		return fmt.Errorf("add preference: %w", err)
	}
	c.previous = append(c.previous, rec.Text)
	c.rounds++

	answer, err := c.ask(ctx, msgAskSatisfied)
	if err != nil {
		return err
	}
	if strings.Contains(strings.ToLower(answer), "yes") {
		log.Printf("[CONTROLLER] session=%s satisfied after %d round(s)", c.sessionID, c.rounds)
		if err := c.speaker.Speak(ctx, msgGoodbye); err != nil {
			return err
		}
		c.phase = PhaseEnd
		return nil
	}
	if c.rounds >= c.maxRounds {
		log.Printf("[CONTROLLER] session=%s round limit (%d) reached", c.sessionID, c.maxRounds)
		if err := c.speaker.Speak(ctx, msgRoundLimit); err != nil {
			return err
		}
		c.phase = PhaseEnd
	}
	return nil
}

// ask speaks a prompt and waits for the reply, discarding the emotion
// signal.
func (c *Controller) ask(ctx context.Context, prompt string) (string, error) {
	if err := c.speaker.Speak(ctx, prompt); err != nil {
		return "", err
	}
	text, _, err := c.listener.Listen(ctx)
	if err != nil {
		return "", err
	}
	return text, nil
}

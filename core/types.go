// Package core defines the shared data model for the stylist agent.
//
// The model is a strict ownership tree: a User owns an ordered list of
// Conversations, each Conversation owns an ordered list of Preferences.
// Conversations are identified by their append position within the owning
// user; positions are stable and never reused or renumbered. Preferences
// are append-only and never mutated.
package core

// Profile holds the identity attributes collected during the profile
// interview. All fields are free text and immutable after the user record
// is created.
type Profile struct {
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	Height   string `json:"height"`
	BodyType string `json:"body_type"`
}

// User is one stored user record. Name doubles as the store key.
type User struct {
	Profile
	Conversations []Conversation `json:"conversations"`
}

// Context is the situational descriptor gathered for one conversation.
type Context struct {
	Occasion string `json:"occasion"`
	Weather  string `json:"weather"`
	Style    string `json:"style"`
}

// Conversation is one context-gathering-through-feedback episode.
type Conversation struct {
	Context     Context      `json:"context"`
	Preferences []Preference `json:"preferences"`
}

// Preference records one recommendation-and-reaction round.
type Preference struct {
	Outfit   string `json:"outfit"`
	Response string `json:"response"`
	Emotion  string `json:"emotion"`
}

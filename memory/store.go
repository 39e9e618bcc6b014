package memory

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/atelierlabs/stylist-go-sdk/core"
)

// Store owns the durable User -> Conversation -> Preference tree for the
// process lifetime. Callers hold only user names and conversation indices,
// never copies of stored data.
//
// All operations are safe for concurrent use, so one store can back many
// simultaneous sessions. Concurrent drivers must read records through the
// copying accessors (Profile, Conversation) rather than the live pointer
// User returns.
type Store struct {
	mu        sync.RWMutex
	users     map[string]*core.User
	order     []string // user names in insertion order
	retriever Retriever
	backend   Backend // nil = in-memory only
}

// StoreOption configures the store.
type StoreOption func(*Store)

// WithBackend attaches a persistence backend. Existing records are loaded
// at construction and every mutation is written through.
func WithBackend(b Backend) StoreOption {
	return func(s *Store) {
		s.backend = b
	}
}

// NewStore creates a store that delegates relevance selection to the given
// retriever.
func NewStore(retriever Retriever, opts ...StoreOption) (*Store, error) {
	s := &Store{
		users:     make(map[string]*core.User),
		retriever: retriever,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.backend != nil {
		users, err := s.backend.LoadUsers()
		if err != nil {
			return nil, fmt.Errorf("load users: %w", err)
		}
		for _, u := range users {
			s.users[u.Name] = u
			s.order = append(s.order, u.Name)
		}
		if len(users) > 0 {
			log.Printf("[STORE] Loaded %d user(s) from backend", len(users))
		}
	}

	return s, nil
}

// UserExists reports whether a user record with this name was created.
func (s *Store) UserExists(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[name]
	return ok
}

// CreateUser creates a user record from a profile. The record is created
// once and never deleted; a duplicate name fails with ErrUserExists.
func (s *Store) CreateUser(profile core.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[profile.Name]; ok {
		return fmt.Errorf("%w: %q", ErrUserExists, profile.Name)
	}

	u := &core.User{Profile: profile}
	s.users[profile.Name] = u
	s.order = append(s.order, profile.Name)
	log.Printf("[STORE] Created user %q", profile.Name)

	return s.persist(profile.Name)
}

// User returns the live record for a name. The pointer is not protected
// against concurrent mutation; concurrent drivers use Profile and
// Conversation instead.
func (s *Store) User(name string) (*core.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[name]
	return u, ok
}

// Profile returns a copy of the user's profile.
func (s *Store) Profile(name string) (core.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[name]
	if !ok {
		return core.Profile{}, false
	}
	return u.Profile, true
}

// Conversation returns a copy of one conversation, preferences included.
func (s *Store) Conversation(user string, conversationIndex int) (core.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[user]
	if !ok {
		return core.Conversation{}, fmt.Errorf("%w: %q", ErrUnknownUser, user)
	}
	if conversationIndex < 0 || conversationIndex >= len(u.Conversations) {
		return core.Conversation{}, fmt.Errorf("%w: %d (user %q has %d)", ErrConversationIndex,
			conversationIndex, user, len(u.Conversations))
	}

	conv := u.Conversations[conversationIndex]
	conv.Preferences = append([]core.Preference(nil), conv.Preferences...)
	return conv, nil
}

// ListUsers returns all users in insertion order.
func (s *Store) ListUsers() []*core.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*core.User, 0, len(s.order))
	for _, name := range s.order {
		users = append(users, s.users[name])
	}
	return users
}

// CreateConversation appends a new conversation for the user and returns
// its index: the length of the conversation list before the append, so
// indices are strictly increasing 0,1,2,... per user.
func (s *Store) CreateConversation(user string, cc core.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[user]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUser, user)
	}

	index := len(u.Conversations)
	u.Conversations = append(u.Conversations, core.Conversation{Context: cc})
	log.Printf("[STORE] Created conversation %d for user %q", index, user)

	if err := s.persist(user); err != nil {
		return 0, err
	}
	return index, nil
}

// AddPreference appends a preference to an existing conversation.
func (s *Store) AddPreference(user string, conversationIndex int, pref core.Preference) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[user]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownUser, user)
	}
	if conversationIndex < 0 || conversationIndex >= len(u.Conversations) {
		return fmt.Errorf("%w: %d (user %q has %d)", ErrConversationIndex,
			conversationIndex, user, len(u.Conversations))
	}

	conv := &u.Conversations[conversationIndex]
	conv.Preferences = append(conv.Preferences, pref)

	return s.persist(user)
}

// Retrieve selects the preferences most relevant to the given conversation
// and maps each to a human-readable sentence for prompt injection.
func (s *Store) Retrieve(ctx context.Context, user string, conversationIndex int) ([]string, error) {
	// Snapshot under the read lock so the retriever (which may embed, a
	// slow call) never races a concurrent append.
	s.mu.RLock()
	u, ok := s.users[user]
	if !ok {
		s.mu.RUnlock()
		return nil, fmt.Errorf("%w: %q", ErrUnknownUser, user)
	}
	if conversationIndex < 0 || conversationIndex >= len(u.Conversations) {
		n := len(u.Conversations)
		s.mu.RUnlock()
		return nil, fmt.Errorf("%w: %d (user %q has %d)", ErrConversationIndex,
			conversationIndex, user, n)
	}
	conversations := make([]core.Conversation, len(u.Conversations))
	for i, conv := range u.Conversations {
		conv.Preferences = append([]core.Preference(nil), conv.Preferences...)
		conversations[i] = conv
	}
	s.mu.RUnlock()

	prefs, err := s.retriever.Retrieve(ctx, user, conversations, conversationIndex)
	if err != nil {
		return nil, fmt.Errorf("retrieve preferences: %w", err)
	}

	out := make([]string, len(prefs))
	for i, p := range prefs {
		out[i] = FormatPreference(p)
	}
	log.Printf("[STORE] Retrieved %d preference(s) for user %q, conversation %d",
		len(out), user, conversationIndex)
	return out, nil
}

// Close releases the persistence backend, if any.
func (s *Store) Close() error {
	if s.backend == nil {
		return nil
	}
	return s.backend.Close()
}

// persist writes the named user through to the backend.
func (s *Store) persist(name string) error {
	if s.backend == nil {
		return nil
	}
	position := -1
	for i, n := range s.order {
		if n == name {
			position = i
			break
		}
	}
	if err := s.backend.SaveUser(position, s.users[name]); err != nil {
		return fmt.Errorf("persist user %q: %w", name, err)
	}
	return nil
}

// FormatPreference renders one preference as the fixed sentence handed to
// the recommendation generator.
func FormatPreference(p core.Preference) string {
	return fmt.Sprintf("Of the outfit '%s', the user thinks: %s, it makes them feel %s",
		p.Outfit, p.Response, p.Emotion)
}

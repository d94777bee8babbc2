package app

import (
	"sync"
	"time"
)

// ConversationState tags where a chat is in the request flow
type ConversationState int

const (
	StateIdle ConversationState = iota
	StateAwaitingFormat
	StateAwaitingRetryChoice
	StateAwaitingRetryIndices
)

// Session is the per-chat conversation state. PendingURL is set while a
// format choice is outstanding.
type Session struct {
	State      ConversationState
	PendingURL string
	UpdatedAt  time.Time
}

// SessionStore holds conversation sessions keyed by chat ID. Sessions
// expire after the configured TTL so the map does not grow without bound.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[int64]*Session
	now      func() time.Time
}

// NewSessionStore creates a session store with the given expiry
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		sessions: make(map[int64]*Session),
		now:      time.Now,
	}
}

// Get returns the current session for a chat, resetting it to idle if it
// has expired. A chat without a session gets a fresh idle one.
func (s *SessionStore) Get(chatID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[chatID]
	if !ok {
		return Session{State: StateIdle}
	}
	if s.ttl > 0 && s.now().Sub(session.UpdatedAt) > s.ttl {
		delete(s.sessions, chatID)
		return Session{State: StateIdle}
	}
	return *session
}

// Set transitions the chat to a new state
func (s *SessionStore) Set(chatID int64, state ConversationState, pendingURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[chatID] = &Session{
		State:      state,
		PendingURL: pendingURL,
		UpdatedAt:  s.now(),
	}
}

// Reset returns the chat to idle
func (s *SessionStore) Reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}

package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// CookieName is the session cookie used by the login gate.
const CookieName = "notion_session"

// Store is an in-memory session store. Sessions are lost on restart,
// which only forces a re-login against the single shared credential.
// Safe for concurrent use.
type Store struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]session
}

type session struct {
	username  string
	expiresAt time.Time
}

// NewStore creates a session store whose sessions expire after ttl.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]session),
	}
}

// Create registers a new session and returns its opaque token.
func (s *Store) Create(username string) string {
	token := uuid.New().String()

	s.mu.Lock()
	s.sessions[token] = session{
		username:  username,
		expiresAt: s.now().Add(s.ttl),
	}
	s.mu.Unlock()

	return token
}

// Validate reports whether the token names a live session. Expired
// sessions are removed on the way out.
func (s *Store) Validate(token string) bool {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return false
	}

	if s.now().After(sess.expiresAt) {
		s.Delete(token)
		return false
	}
	return true
}

// Delete removes a session; unknown tokens are a no-op.
func (s *Store) Delete(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Package session keeps per-user conversational state in memory. State is
// deliberately ephemeral: a restart drops it and users simply land back in
// browsing mode.
package session

import "sync"

// Phase describes what kind of input the bot expects from a user next.
type Phase int

const (
	// Browsing is the default phase; free-form messages are relayed to the
	// admin as general queries.
	Browsing Phase = iota
	// AwaitingAdminMessage means the user pressed "talk to admin" and the
	// next text message is relayed with course context.
	AwaitingAdminMessage
	// AwaitingPaymentScreenshot means the user pressed "share screenshot"
	// and the next photo is relayed as payment proof.
	AwaitingPaymentScreenshot
)

func (p Phase) String() string {
	switch p {
	case AwaitingAdminMessage:
		return "awaiting_admin_message"
	case AwaitingPaymentScreenshot:
		return "awaiting_payment_screenshot"
	default:
		return "browsing"
	}
}

// Session is the per-user navigation and input-expectation state.
type Session struct {
	Phase     Phase
	CourseID  string
	SubjectID string
	// ReturnTarget is the callback data of the screen "back" should rebuild,
	// captured when the user enters a leaf screen.
	ReturnTarget string
}

// Store is a concurrency-safe map of user id to session.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[int64]Session)}
}

// Get returns a copy of the user's session. Unknown users get the zero
// session, which is valid browsing state.
func (s *Store) Get(userID int64) Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[userID]
}

// Update applies fn to the user's session under the write lock.
func (s *Store) Update(userID int64, fn func(*Session)) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions[userID]
	fn(&sess)
	s.sessions[userID] = sess
	return sess
}

// SetPhase switches only the expected-input phase, preserving navigation.
func (s *Store) SetPhase(userID int64, phase Phase) Session {
	return s.Update(userID, func(sess *Session) {
		sess.Phase = phase
	})
}

// Reset returns the user to the zero browsing session.
func (s *Store) Reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Len reports the number of tracked sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

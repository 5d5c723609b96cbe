package storefront

import "sync"

// SessionState holds the current identity and fans changes out to listeners.
// The Storefront owns the single subscription that keeps it in sync with the
// AuthClient; everything else reads from here.
type SessionState struct {
	mu        sync.Mutex
	cur       *Session
	nextID    int
	listeners map[int]func(*Session)
}

func NewSessionState() *SessionState {
	return &SessionState{listeners: make(map[int]func(*Session))}
}

// Current returns a copy of the session, or nil when signed out.
func (s *SessionState) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return nil
	}
	cp := *s.cur
	return &cp
}

func (s *SessionState) SignedIn() bool { return s.Current() != nil }

// Set replaces the session and notifies listeners outside the lock.
func (s *SessionState) Set(sess *Session) {
	s.mu.Lock()
	if sess != nil {
		cp := *sess
		sess = &cp
	}
	s.cur = sess
	fns := make([]func(*Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(s.Current())
	}
}

// Subscribe registers fn for session changes.
func (s *SessionState) Subscribe(fn func(*Session)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

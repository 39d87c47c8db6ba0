// Package auth identifies the user behind a request or a terminal session.
// Credentials are checked elsewhere; this package only carries the resulting
// user id.
package auth

import "sync"

// Session holds the signed-in user of an interactive client.
type Session struct {
	mu     sync.Mutex
	user   string
	subs   map[int]func(string)
	nextID int
}

func NewSession() *Session {
	return &Session{subs: make(map[int]func(string))}
}

func (s *Session) Current() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.user, s.user != ""
}

func (s *Session) SignIn(userID string) {
	s.set(userID)
}

func (s *Session) SignOut() {
	s.set("")
}

// OnChange calls fn with the new user id, "" on sign-out.
func (s *Session) OnChange(fn func(userID string)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		delete(s.subs, id)
	}
}

func (s *Session) set(userID string) {
	s.mu.Lock()
	if s.user == userID {
		s.mu.Unlock()
		return
	}

	s.user = userID
	fns := make([]func(string), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(userID)
	}
}

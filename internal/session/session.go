package session

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/luciancaetano/yapnet"
)

// Session records the identity of the local user and gates the handshake.
//
// It is created Anonymous and only ever moves forward; once Authenticated it stays
// Authenticated for its whole lifetime, whatever happens to the transport. The mutex
// only guards snapshots read from outside the event loop.
type Session struct {
	mu      sync.RWMutex
	state   yapnet.SessionState
	token   string
	name    string
	version string
}

// New creates an anonymous session.
func New() *Session {
	return &Session{state: yapnet.Anonymous}
}

// State returns the current state.
func (s *Session) State() yapnet.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Authenticated reports whether a welcome has been received.
func (s *Session) Authenticated() bool {
	return s.State() == yapnet.Authenticated
}

// Token returns the resume token, empty until authenticated.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// DisplayName returns the name assigned by the server, empty until authenticated.
func (s *Session) DisplayName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// Identity returns a snapshot of the session.
func (s *Session) Identity() yapnet.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return yapnet.Identity{State: s.state, Name: s.name, Token: s.token, Version: s.version}
}

// BeginRegistration moves the session to PendingRegistration.
//
// A pending handshake may be restarted, since the server answers a rejected one with
// an err message and never with a welcome.
func (s *Session) BeginRegistration() error {
	return s.begin(yapnet.PendingRegistration)
}

// BeginResume moves the session to PendingResume.
func (s *Session) BeginResume() error {
	return s.begin(yapnet.PendingResume)
}

func (s *Session) begin(to yapnet.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == yapnet.Authenticated {
		return errors.Wrapf(yapnet.ErrInvalidTransition, "%s -> %s", s.state, to)
	}
	s.state = to
	return nil
}

// Welcome records the identity sent by the server and moves the session to
// Authenticated. It reports whether this call performed the transition; a welcome
// received while already authenticated re-confirms the identity and returns false.
func (s *Session) Welcome(token, name, version string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	first := s.state != yapnet.Authenticated
	s.state = yapnet.Authenticated
	s.token = token
	s.name = name
	s.version = version
	return first
}

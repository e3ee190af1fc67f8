// Package session holds the bearer credential used for every backend call.
//
// A Session is an explicit object passed to its consumers rather than a
// process-wide global. It is written on login/signup and cleared on logout,
// persisted so it survives a restart, and read lazily at call time so a logout
// takes effect for the next request without invalidating anything.
package session

import (
	"context"
	"log/slog"
	"sync"
)

// Persister stores the credential between runs.
type Persister interface {
	LoadToken(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	DeleteToken(ctx context.Context) error
}

// ChangeKind says what happened to the credential.
type ChangeKind int

const (
	// LoggedIn means a new credential was stored.
	LoggedIn ChangeKind = iota
	// LoggedOut means the credential was cleared.
	LoggedOut
)

// String returns the kind's name for logging.
func (k ChangeKind) String() string {
	if k == LoggedIn {
		return "logged_in"
	}
	return "logged_out"
}

// Change is delivered to subscribers after the credential changes.
type Change struct {
	Kind ChangeKind
}

// Session is the single-writer holder of the bearer credential.
type Session struct {
	mu          sync.RWMutex
	token       string
	persister   Persister
	logger      *slog.Logger
	subscribers map[int]func(Change)
	nextID      int
}

// New creates a session, restoring any persisted credential.
// A nil persister keeps the credential in memory only.
func New(ctx context.Context, persister Persister, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		persister:   persister,
		logger:      logger,
		subscribers: make(map[int]func(Change)),
	}

	if persister != nil {
		token, err := persister.LoadToken(ctx)
		if err != nil {
			return nil, err
		}
		s.token = token
	}

	return s, nil
}

// Token returns the current credential and whether one is set.
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// IsAuthenticated reports whether a credential is present.
func (s *Session) IsAuthenticated() bool {
	_, ok := s.Token()
	return ok
}

// Set stores a new credential and notifies subscribers.
// An empty token is treated as Clear.
func (s *Session) Set(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if s.persister != nil {
		if err := s.persister.SaveToken(ctx, token); err != nil {
			return err
		}
	}

	s.logger.Debug("session credential stored")
	s.notify(Change{Kind: LoggedIn})
	return nil
}

// Clear forgets the credential and notifies subscribers.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	if s.persister != nil {
		if err := s.persister.DeleteToken(ctx); err != nil {
			return err
		}
	}

	s.logger.Debug("session credential cleared")
	s.notify(Change{Kind: LoggedOut})
	return nil
}

// Subscribe registers fn for credential changes and returns a function that
// removes it.
func (s *Session) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *Session) notify(c Change) {
	s.mu.RLock()
	subs := make([]func(Change), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(c)
	}
}

// Static is a fixed credential, used where the token arrives with the
// request (the capture relay) instead of from the stored session.
type Static string

// Token returns the fixed credential.
func (t Static) Token() (string, bool) {
	return string(t), t != ""
}

// MemoryPersister keeps the credential in memory. Tests use it to simulate a
// restart by building a second Session over the same persister.
type MemoryPersister struct {
	mu    sync.Mutex
	token string
}

// LoadToken implements Persister.
func (m *MemoryPersister) LoadToken(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

// SaveToken implements Persister.
func (m *MemoryPersister) SaveToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

// DeleteToken implements Persister.
func (m *MemoryPersister) DeleteToken(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

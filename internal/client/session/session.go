// Package session holds the client's authentication state. The token and
// user profile are persisted in the local store so a restarted client
// resumes its session, and interested components subscribe to be told
// when the state changes rather than re-reading storage.
package session

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dayflow/core/internal/client/localstore"
	"github.com/dayflow/core/internal/domain/entities"
)

// State is an immutable snapshot of the session.
type State struct {
	Token string
	User  *entities.User
}

// Authenticated reports whether the snapshot carries a token.
func (s State) Authenticated() bool {
	return s.Token != ""
}

// Session is the single authority on whether the client is signed in.
// It is safe for concurrent use.
type Session struct {
	mu    sync.RWMutex
	store *localstore.Store
	state State
	subs  []func(State)
}

// Load restores the session from the local store.
func Load(store *localstore.Store) (*Session, error) {
	s := &Session{store: store}

	token, ok, err := store.Get(localstore.KeyToken)
	if err != nil {
		return nil, fmt.Errorf("restoring session token: %w", err)
	}
	if !ok {
		return s, nil
	}
	s.state.Token = token

	raw, ok, err := store.Get(localstore.KeyUser)
	if err != nil {
		return nil, fmt.Errorf("restoring session user: %w", err)
	}
	if ok {
		var user entities.User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			// A corrupt profile should not lock the user out; keep the
			// token and let the next login rewrite the profile.
			return s, nil
		}
		s.state.User = &user
	}
	return s, nil
}

// Current returns the current session snapshot.
func (s *Session) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	return s.Current().Authenticated()
}

// Token returns the current bearer token, or the empty string.
func (s *Session) Token() string {
	return s.Current().Token
}

// User returns the signed-in user's profile, or nil.
func (s *Session) User() *entities.User {
	return s.Current().User
}

// Subscribe registers fn to be called synchronously after every state
// change, with the new snapshot.
func (s *Session) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Login records a successful authentication and notifies subscribers.
func (s *Session) Login(token string, user *entities.User) error {
	if err := s.store.Set(localstore.KeyToken, token); err != nil {
		return fmt.Errorf("persisting session token: %w", err)
	}
	if user != nil {
		raw, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("encoding session user: %w", err)
		}
		if err := s.store.Set(localstore.KeyUser, string(raw)); err != nil {
			return fmt.Errorf("persisting session user: %w", err)
		}
	}
	s.setState(State{Token: token, User: user})
	return nil
}

// Logout clears the persisted credentials and notifies subscribers.
func (s *Session) Logout() error {
	if err := s.store.Delete(localstore.KeyToken); err != nil {
		return fmt.Errorf("clearing session token: %w", err)
	}
	if err := s.store.Delete(localstore.KeyUser); err != nil {
		return fmt.Errorf("clearing session user: %w", err)
	}
	s.setState(State{})
	return nil
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	subs := make([]func(State), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

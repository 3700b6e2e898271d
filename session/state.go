// Package session owns the client-side authentication lifecycle: the
// in-memory observable auth state and the controller that reconciles it
// with the persisted stores and the remote API.
package session

import (
	"sync"

	"github.com/cardvault/go-cardvault-client/gateway"
	"github.com/cardvault/go-cardvault-client/users"
)

// Snapshot is an immutable view of the auth state handed to subscribers.
type Snapshot struct {
	User            *users.User
	IsAuthenticated bool
	IsLoading       bool
	Error           string
	AccessToken     string
	RefreshToken    string
}

// State is the application auth state: a derived, in-memory projection of
// the persisted stores, rebuilt at startup and kept in sync by the
// Controller and the gateway. It is never the source of truth; every
// mutation that matters is written through to the stores by its caller.
type State struct {
	mu sync.RWMutex

	user         *users.User
	loading      bool
	errMsg       string
	accessToken  string
	refreshToken string

	nextSubID   int
	subscribers map[int]func(Snapshot)
}

var _ gateway.StateSink = (*State)(nil)

// NewState creates an empty, logged-out state.
func NewState() *State {
	return &State{subscribers: make(map[int]func(Snapshot))}
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() Snapshot {
	var userCopy *users.User
	if s.user != nil {
		u := *s.user
		userCopy = &u
	}
	return Snapshot{
		User:            userCopy,
		IsAuthenticated: s.user != nil && s.accessToken != "",
		IsLoading:       s.loading,
		Error:           s.errMsg,
		AccessToken:     s.accessToken,
		RefreshToken:    s.refreshToken,
	}
}

// IsAuthenticated reports the authenticated predicate: user present AND
// access token present.
func (s *State) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.accessToken != ""
}

// User returns a copy of the current user, or nil.
func (s *State) User() *users.User {
	return s.Snapshot().User
}

// Err returns the last recorded error message, empty when none.
func (s *State) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// Subscribe registers a callback invoked after every state change. The
// returned function removes the subscription. Callbacks run outside the
// state lock and must tolerate arriving after their originating context is
// gone.
func (s *State) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// SetUser records a login/hydration success. Clears any prior error.
func (s *State) SetUser(user *users.User) {
	s.mu.Lock()
	s.user = user
	s.errMsg = ""
	s.notifyLocked()
}

// UpdateUser merges partial fields into the current user. No-op when no
// user is present.
func (s *State) UpdateUser(partial users.Partial) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	merged := s.user.Merge(partial)
	s.user = &merged
	s.notifyLocked()
}

// SetTokens records the current credential pair.
func (s *State) SetTokens(accessToken, refreshToken string) {
	s.mu.Lock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
	s.notifyLocked()
}

// SetLoading toggles the loading flag.
func (s *State) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.notifyLocked()
}

// SetError records a human-readable failure message.
func (s *State) SetError(msg string) {
	s.mu.Lock()
	s.errMsg = msg
	s.notifyLocked()
}

// Clear resets the state to logged out: no user, no tokens, no error.
func (s *State) Clear() {
	s.mu.Lock()
	s.user = nil
	s.accessToken = ""
	s.refreshToken = ""
	s.errMsg = ""
	s.notifyLocked()
}

// TokensRefreshed implements gateway.StateSink.
func (s *State) TokensRefreshed(accessToken, refreshToken string) {
	s.SetTokens(accessToken, refreshToken)
}

// SessionExpired implements gateway.StateSink: a failed refresh forces a
// global logout.
func (s *State) SessionExpired() {
	s.Clear()
}

// notifyLocked snapshots under the held lock, releases it, then invokes
// subscribers. Callers must hold s.mu.
func (s *State) notifyLocked() {
	snap := s.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

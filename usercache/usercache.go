// Package usercache persists the last-known authenticated profile so the
// UI can render without a network round trip at startup.
package usercache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/cardvault/go-cardvault-client/users"
)

const userDataFile = "user_data"

// Store caches one profile as JSON in the durable config dir. A corrupted
// cache reads as absent, never as an error: the caller falls back to the
// logged-out path instead of crashing.
type Store struct {
	dir string
	log zerolog.Logger

	mu sync.Mutex
}

// StoreOption modifies a Store.
type StoreOption func(*Store)

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = log
	}
}

// NewStore creates the cache rooted at dir, creating it if needed.
func NewStore(dir string, options ...StoreOption) (*Store, error) {
	s := &Store{dir: dir, log: zerolog.Nop()}
	for _, opt := range options {
		opt(s)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "[usercache.NewStore] MkdirAll")
	}
	return s, nil
}

// Set serialises and persists the full profile.
func (s *Store) Set(user *users.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(user)
}

// Get returns the cached profile, or nil when none is cached or the cache
// cannot be parsed.
func (s *Store) Get() *users.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked()
}

// Remove deletes the cached profile. Idempotent.
func (s *Store) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[Store.Remove] Remove")
	}
	return nil
}

// Update merges the partial fields into the cached profile. No-op when
// nothing is cached. The lock is held across the whole read-merge-write so
// concurrent updates cannot clobber each other.
func (s *Store) Update(partial users.Partial) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.getLocked()
	if current == nil {
		return nil
	}
	merged := current.Merge(partial)
	return s.setLocked(&merged)
}

func (s *Store) setLocked(user *users.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "[Store.Set] Marshal")
	}
	if err := os.WriteFile(s.path(), data, 0o600); err != nil {
		return errors.Wrap(err, "[Store.Set] WriteFile")
	}
	return nil
}

func (s *Store) getLocked() *users.User {
	data, err := os.ReadFile(s.path())
	if err != nil {
		return nil
	}
	var user users.User
	if err := json.Unmarshal(data, &user); err != nil {
		s.log.Debug().Err(err).Msg("cached profile corrupted, treating as absent")
		return nil
	}
	return &user
}

func (s *Store) path() string {
	return filepath.Join(s.dir, userDataFile)
}

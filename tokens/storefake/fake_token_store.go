package storefake

import (
	"sync"

	"github.com/cardvault/go-cardvault-client/tokens"
)

var _ tokens.Store = (*FakeTokenStore)(nil)

// FakeTokenStore is an in-memory Store for tests.
type FakeTokenStore struct {
	lock         sync.RWMutex
	accessToken  string
	refreshToken string
}

func NewFakeTokenStore() *FakeTokenStore {
	return &FakeTokenStore{}
}

func (ts *FakeTokenStore) SetAccessToken(token string) error {
	ts.lock.Lock()
	defer ts.lock.Unlock()
	ts.accessToken = token
	return nil
}

func (ts *FakeTokenStore) AccessToken() string {
	ts.lock.RLock()
	defer ts.lock.RUnlock()
	return ts.accessToken
}

func (ts *FakeTokenStore) RemoveAccessToken() error {
	ts.lock.Lock()
	defer ts.lock.Unlock()
	ts.accessToken = ""
	return nil
}

func (ts *FakeTokenStore) SetRefreshToken(token string) error {
	ts.lock.Lock()
	defer ts.lock.Unlock()
	ts.refreshToken = token
	return nil
}

func (ts *FakeTokenStore) RefreshToken() string {
	ts.lock.RLock()
	defer ts.lock.RUnlock()
	return ts.refreshToken
}

func (ts *FakeTokenStore) RemoveRefreshToken() error {
	ts.lock.Lock()
	defer ts.lock.Unlock()
	ts.refreshToken = ""
	return nil
}

func (ts *FakeTokenStore) Clear() error {
	ts.lock.Lock()
	defer ts.lock.Unlock()
	ts.accessToken = ""
	ts.refreshToken = ""
	return nil
}

func (ts *FakeTokenStore) Authenticated() bool {
	ts.lock.RLock()
	defer ts.lock.RUnlock()
	return ts.accessToken != ""
}

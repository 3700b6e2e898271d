package tokens

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	accessTokenFile  = "access_token"
	refreshTokenFile = "refresh_token"

	// DefaultRefreshTokenTTL bounds how long a persisted refresh token is
	// honoured before it reads as absent.
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// refreshRecord is the durable refresh-token envelope. The expiry is
// absolute so the window does not reset when the record is re-read.
type refreshRecord struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FileStore keeps the access token under a session-scoped runtime dir and
// the refresh token as a sealed record under the durable config dir.
type FileStore struct {
	runtimeDir string
	configDir  string
	ttl        time.Duration
	sealer     *Sealer
	log        zerolog.Logger

	mu sync.Mutex
}

// FileStoreOption modifies a FileStore.
type FileStoreOption func(*FileStore)

// WithRefreshTokenTTL overrides the refresh-token expiry window.
func WithRefreshTokenTTL(ttl time.Duration) FileStoreOption {
	return func(fs *FileStore) {
		fs.ttl = ttl
	}
}

// WithLogger attaches a logger. Token values are never logged.
func WithLogger(log zerolog.Logger) FileStoreOption {
	return func(fs *FileStore) {
		fs.log = log
	}
}

// NewFileStore creates the store rooted at the given dirs, creating them
// and the seal key on first use.
func NewFileStore(runtimeDir, configDir string, options ...FileStoreOption) (*FileStore, error) {
	fs := &FileStore{
		runtimeDir: runtimeDir,
		configDir:  configDir,
		ttl:        DefaultRefreshTokenTTL,
		log:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(fs)
	}

	for _, dir := range []string{runtimeDir, configDir} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, errors.Wrap(err, "[NewFileStore] MkdirAll")
		}
	}

	sealer, err := NewSealer(filepath.Join(configDir, sealKeyFile))
	if err != nil {
		return nil, errors.Wrap(err, "[NewFileStore] NewSealer")
	}
	fs.sealer = sealer
	return fs, nil
}

var _ Store = (*FileStore)(nil)

func (fs *FileStore) SetAccessToken(token string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.WriteFile(fs.accessPath(), []byte(token), 0o600); err != nil {
		return errors.Wrap(err, "[FileStore.SetAccessToken] WriteFile")
	}
	return nil
}

func (fs *FileStore) AccessToken() string {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := os.ReadFile(fs.accessPath())
	if err != nil {
		return ""
	}
	return string(data)
}

func (fs *FileStore) RemoveAccessToken() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return removeIfPresent(fs.accessPath())
}

func (fs *FileStore) SetRefreshToken(token string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	record := refreshRecord{
		Token:     token,
		ExpiresAt: NowTimeFunc().Add(fs.ttl),
	}
	plain, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "[FileStore.SetRefreshToken] Marshal")
	}
	sealed, err := fs.sealer.Seal(plain)
	if err != nil {
		return errors.Wrap(err, "[FileStore.SetRefreshToken] Seal")
	}
	if err := os.WriteFile(fs.refreshPath(), sealed, 0o600); err != nil {
		return errors.Wrap(err, "[FileStore.SetRefreshToken] WriteFile")
	}
	return nil
}

func (fs *FileStore) RefreshToken() string {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	sealed, err := os.ReadFile(fs.refreshPath())
	if err != nil {
		return ""
	}
	plain, err := fs.sealer.Open(sealed)
	if err != nil {
		fs.log.Debug().Msg("refresh token record failed to unseal, treating as absent")
		return ""
	}
	var record refreshRecord
	if err := json.Unmarshal(plain, &record); err != nil {
		fs.log.Debug().Msg("refresh token record corrupted, treating as absent")
		return ""
	}
	if NowTimeFunc().After(record.ExpiresAt) {
		_ = removeIfPresent(fs.refreshPath())
		return ""
	}
	return record.Token
}

func (fs *FileStore) RemoveRefreshToken() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return removeIfPresent(fs.refreshPath())
}

func (fs *FileStore) Clear() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := removeIfPresent(fs.accessPath()); err != nil {
		return errors.Wrap(err, "[FileStore.Clear] access token")
	}
	if err := removeIfPresent(fs.refreshPath()); err != nil {
		return errors.Wrap(err, "[FileStore.Clear] refresh token")
	}
	return nil
}

func (fs *FileStore) Authenticated() bool {
	return fs.AccessToken() != ""
}

func (fs *FileStore) accessPath() string {
	return filepath.Join(fs.runtimeDir, accessTokenFile)
}

func (fs *FileStore) refreshPath() string {
	return filepath.Join(fs.configDir, refreshTokenFile)
}

func removeIfPresent(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

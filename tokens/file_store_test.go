package tokens_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cardvault/go-cardvault-client/tokens"
)

const (
	testAccessToken  = "access-token-1"
	testRefreshToken = "refresh-token-1"
)

// testStore holds the store plus the dirs it writes to, so tests can poke
// at the files directly.
type testStore struct {
	store      *tokens.FileStore
	runtimeDir string
	configDir  string
}

func setupTestStore(t *testing.T, options ...tokens.FileStoreOption) *testStore {
	t.Helper()

	runtimeDir := filepath.Join(t.TempDir(), "runtime")
	configDir := filepath.Join(t.TempDir(), "config")

	store, err := tokens.NewFileStore(runtimeDir, configDir, options...)
	require.NoError(t, err)

	return &testStore{store: store, runtimeDir: runtimeDir, configDir: configDir}
}

func TestFileStore_AccessToken(t *testing.T) {
	ts := setupTestStore(t)

	t.Run("absent before set", func(t *testing.T) {
		require.Empty(t, ts.store.AccessToken())
		require.False(t, ts.store.Authenticated())
	})

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, ts.store.SetAccessToken(testAccessToken))
		require.Equal(t, testAccessToken, ts.store.AccessToken())
		require.True(t, ts.store.Authenticated())
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, ts.store.RemoveAccessToken())
		require.Empty(t, ts.store.AccessToken())
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		require.NoError(t, ts.store.RemoveAccessToken())
	})
}

func TestFileStore_RefreshToken(t *testing.T) {
	ts := setupTestStore(t)

	t.Run("absent before set", func(t *testing.T) {
		require.Empty(t, ts.store.RefreshToken())
	})

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, ts.store.SetRefreshToken(testRefreshToken))
		require.Equal(t, testRefreshToken, ts.store.RefreshToken())
	})

	t.Run("stored record is not plain text", func(t *testing.T) {
		raw, err := os.ReadFile(filepath.Join(ts.configDir, "refresh_token"))
		require.NoError(t, err)
		require.NotContains(t, string(raw), testRefreshToken)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, ts.store.RemoveRefreshToken())
		require.Empty(t, ts.store.RefreshToken())
	})
}

func TestFileStore_RefreshTokenExpiry(t *testing.T) {
	defer func() { tokens.NowTimeFunc = time.Now }()

	now := time.Now()
	tokens.NowTimeFunc = func() time.Time { return now }

	ts := setupTestStore(t, tokens.WithRefreshTokenTTL(time.Hour))
	require.NoError(t, ts.store.SetRefreshToken(testRefreshToken))

	t.Run("inside the window", func(t *testing.T) {
		tokens.NowTimeFunc = func() time.Time { return now.Add(59 * time.Minute) }
		require.Equal(t, testRefreshToken, ts.store.RefreshToken())
	})

	t.Run("window does not reset on read", func(t *testing.T) {
		// The expiry is absolute from the write, not from the last read.
		tokens.NowTimeFunc = func() time.Time { return now.Add(59 * time.Minute) }
		require.Equal(t, testRefreshToken, ts.store.RefreshToken())
		tokens.NowTimeFunc = func() time.Time { return now.Add(61 * time.Minute) }
		require.Empty(t, ts.store.RefreshToken())
	})

	t.Run("expired record is deleted", func(t *testing.T) {
		_, err := os.Stat(filepath.Join(ts.configDir, "refresh_token"))
		require.True(t, os.IsNotExist(err))
	})

	t.Run("rewrite starts a fresh window", func(t *testing.T) {
		tokens.NowTimeFunc = func() time.Time { return now.Add(61 * time.Minute) }
		require.NoError(t, ts.store.SetRefreshToken(testRefreshToken))
		tokens.NowTimeFunc = func() time.Time { return now.Add(100 * time.Minute) }
		require.Equal(t, testRefreshToken, ts.store.RefreshToken())
	})
}

func TestFileStore_SurvivesRestart(t *testing.T) {
	ts := setupTestStore(t)
	require.NoError(t, ts.store.SetAccessToken(testAccessToken))
	require.NoError(t, ts.store.SetRefreshToken(testRefreshToken))

	t.Run("new instance over the same dirs", func(t *testing.T) {
		reopened, err := tokens.NewFileStore(ts.runtimeDir, ts.configDir)
		require.NoError(t, err)
		require.Equal(t, testAccessToken, reopened.AccessToken())
		require.Equal(t, testRefreshToken, reopened.RefreshToken())
	})

	t.Run("runtime dir wiped leaves only the refresh token", func(t *testing.T) {
		require.NoError(t, os.RemoveAll(ts.runtimeDir))
		reopened, err := tokens.NewFileStore(ts.runtimeDir, ts.configDir)
		require.NoError(t, err)
		require.Empty(t, reopened.AccessToken())
		require.Equal(t, testRefreshToken, reopened.RefreshToken())
	})

	t.Run("seal key lost makes the record unreadable", func(t *testing.T) {
		require.NoError(t, os.Remove(filepath.Join(ts.configDir, "seal.key")))
		reopened, err := tokens.NewFileStore(ts.runtimeDir, ts.configDir)
		require.NoError(t, err)
		require.Empty(t, reopened.RefreshToken())
	})
}

func TestFileStore_CorruptRefreshRecord(t *testing.T) {
	ts := setupTestStore(t)
	require.NoError(t, ts.store.SetRefreshToken(testRefreshToken))

	require.NoError(t, os.WriteFile(filepath.Join(ts.configDir, "refresh_token"), []byte("garbage"), 0o600))
	require.Empty(t, ts.store.RefreshToken())
}

func TestFileStore_Clear(t *testing.T) {
	ts := setupTestStore(t)
	require.NoError(t, ts.store.SetAccessToken(testAccessToken))
	require.NoError(t, ts.store.SetRefreshToken(testRefreshToken))

	require.NoError(t, ts.store.Clear())
	require.Empty(t, ts.store.AccessToken())
	require.Empty(t, ts.store.RefreshToken())
	require.False(t, ts.store.Authenticated())

	// Clearing an already-empty store must not error.
	require.NoError(t, ts.store.Clear())
}

package session_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cardvault/go-cardvault-client/internal/utils"
	"github.com/cardvault/go-cardvault-client/session"
	"github.com/cardvault/go-cardvault-client/users"
)

func TestState_AuthenticatedPredicate(t *testing.T) {
	user := &users.User{ID: "user-1", Email: "john.doe@example.com"}

	t.Run("empty state", func(t *testing.T) {
		require.False(t, session.NewState().IsAuthenticated())
	})

	t.Run("user without access token", func(t *testing.T) {
		s := session.NewState()
		s.SetUser(user)
		require.False(t, s.IsAuthenticated())
	})

	t.Run("access token without user", func(t *testing.T) {
		s := session.NewState()
		s.SetTokens("access-token", "")
		require.False(t, s.IsAuthenticated())
	})

	t.Run("both present", func(t *testing.T) {
		s := session.NewState()
		s.SetUser(user)
		s.SetTokens("access-token", "refresh-token")
		require.True(t, s.IsAuthenticated())
		require.True(t, s.Snapshot().IsAuthenticated)
	})
}

func TestState_SetUserClearsError(t *testing.T) {
	s := session.NewState()
	s.SetError("Login failed")
	require.Equal(t, "Login failed", s.Err())

	s.SetUser(&users.User{ID: "user-1"})
	require.Empty(t, s.Err())
}

func TestState_UpdateUser(t *testing.T) {
	t.Run("no-op without a user", func(t *testing.T) {
		s := session.NewState()
		s.UpdateUser(users.Partial{FirstName: utils.Ptr("Jane")})
		require.Nil(t, s.User())
	})

	t.Run("merges into the current user", func(t *testing.T) {
		s := session.NewState()
		s.SetUser(&users.User{ID: "user-1", FirstName: "John", LastName: "Doe"})
		s.UpdateUser(users.Partial{FirstName: utils.Ptr("Jane")})

		got := s.User()
		require.NotNil(t, got)
		require.Equal(t, "Jane", got.FirstName)
		require.Equal(t, "Doe", got.LastName)
	})
}

func TestState_SnapshotIsACopy(t *testing.T) {
	s := session.NewState()
	s.SetUser(&users.User{ID: "user-1", FirstName: "John"})

	snap := s.Snapshot()
	snap.User.FirstName = "Mutated"

	require.Equal(t, "John", s.User().FirstName)
}

func TestState_Subscribe(t *testing.T) {
	s := session.NewState()

	var got []session.Snapshot
	unsubscribe := s.Subscribe(func(snap session.Snapshot) {
		got = append(got, snap)
	})

	s.SetUser(&users.User{ID: "user-1"})
	s.SetTokens("access-token", "refresh-token")
	require.Len(t, got, 2)
	require.False(t, got[0].IsAuthenticated)
	require.True(t, got[1].IsAuthenticated)

	t.Run("unsubscribed callbacks stop firing", func(t *testing.T) {
		unsubscribe()
		s.SetError("boom")
		require.Len(t, got, 2)
	})

	t.Run("subscribers can mutate state from the callback", func(t *testing.T) {
		// Callbacks run outside the lock, so re-entrant reads and writes
		// must not deadlock.
		var reentrant *session.State
		reentrant = session.NewState()
		done := false
		reentrant.Subscribe(func(snap session.Snapshot) {
			if !done {
				done = true
				_ = reentrant.IsAuthenticated()
			}
		})
		reentrant.SetError("trigger")
		require.True(t, done)
	})
}

func TestState_Clear(t *testing.T) {
	s := session.NewState()
	s.SetUser(&users.User{ID: "user-1"})
	s.SetTokens("access-token", "refresh-token")
	s.SetError("stale")

	s.Clear()

	snap := s.Snapshot()
	require.Nil(t, snap.User)
	require.False(t, snap.IsAuthenticated)
	require.Empty(t, snap.AccessToken)
	require.Empty(t, snap.RefreshToken)
	require.Empty(t, snap.Error)
}

func TestState_GatewaySink(t *testing.T) {
	t.Run("TokensRefreshed updates the pair", func(t *testing.T) {
		s := session.NewState()
		s.SetUser(&users.User{ID: "user-1"})
		s.TokensRefreshed("new-access", "new-refresh")

		snap := s.Snapshot()
		require.Equal(t, "new-access", snap.AccessToken)
		require.Equal(t, "new-refresh", snap.RefreshToken)
		require.True(t, snap.IsAuthenticated)
	})

	t.Run("SessionExpired forces logout", func(t *testing.T) {
		s := session.NewState()
		s.SetUser(&users.User{ID: "user-1"})
		s.SetTokens("access-token", "refresh-token")

		s.SessionExpired()
		require.False(t, s.IsAuthenticated())
		require.Nil(t, s.User())
	})
}

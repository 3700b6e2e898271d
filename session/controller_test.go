package session_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cardvault/go-cardvault-client/gateway"
	"github.com/cardvault/go-cardvault-client/internal/utils"
	"github.com/cardvault/go-cardvault-client/session"
	"github.com/cardvault/go-cardvault-client/tokens/storefake"
	"github.com/cardvault/go-cardvault-client/usercache"
	"github.com/cardvault/go-cardvault-client/users"
)

const (
	testUserID       = "user-1"
	testUserEmail    = "john.doe@example.com"
	testUserPassword = "Str0ng!pass"

	loginAccessToken     = "access-token-login"
	refreshedAccessToken = "access-token-refreshed"
	testRefreshToken     = "refresh-token-1"
)

// authAPI is a CardVault auth endpoint double speaking the response
// envelope.
type authAPI struct {
	t *testing.T

	mu            sync.Mutex
	validAccess   string
	validRefresh  string
	loginCalls    int
	registerCalls int
	logoutCalls   int
	profileCalls  int
	refreshCalls  int
	failLogout    bool
	failProfile   bool
}

func (a *authAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", a.handleLogin)
	mux.HandleFunc("/auth/register", a.handleRegister)
	mux.HandleFunc("/auth/logout", a.handleLogout)
	mux.HandleFunc("/auth/refresh", a.handleRefresh)
	mux.HandleFunc("/users/profile", a.handleProfile)
	return mux
}

func (a *authAPI) userJSON() string {
	return fmt.Sprintf(`{"id":%q,"email":%q,"firstName":"John","lastName":"Doe","status":"active","emailVerified":true}`,
		testUserID, testUserEmail)
}

func (a *authAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	a.loginCalls++
	a.mu.Unlock()

	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	require.NoError(a.t, json.NewDecoder(r.Body).Decode(&creds))

	if creds.Email != testUserEmail || creds.Password != testUserPassword {
		writeEnvelope(w, http.StatusUnauthorized, `{"success":false,"message":"Invalid email or password"}`)
		return
	}
	a.issueSession(w, loginAccessToken)
}

func (a *authAPI) handleRegister(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	a.registerCalls++
	a.mu.Unlock()
	a.issueSession(w, loginAccessToken)
}

func (a *authAPI) issueSession(w http.ResponseWriter, accessToken string) {
	a.mu.Lock()
	a.validAccess = accessToken
	a.validRefresh = testRefreshToken
	a.mu.Unlock()

	writeEnvelope(w, http.StatusOK, fmt.Sprintf(
		`{"success":true,"data":{"accessToken":%q,"refreshToken":%q,"user":%s}}`,
		accessToken, testRefreshToken, a.userJSON()))
}

func (a *authAPI) handleLogout(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	a.logoutCalls++
	fail := a.failLogout
	a.mu.Unlock()

	if fail {
		writeEnvelope(w, http.StatusInternalServerError, `{"success":false,"message":"Something broke"}`)
		return
	}
	writeEnvelope(w, http.StatusOK, `{"success":true}`)
}

func (a *authAPI) handleRefresh(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	a.refreshCalls++
	valid := a.validRefresh
	a.mu.Unlock()

	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(a.t, json.NewDecoder(r.Body).Decode(&body))

	if valid == "" || body.RefreshToken != valid {
		writeEnvelope(w, http.StatusUnauthorized, `{"success":false,"message":"Invalid refresh token"}`)
		return
	}

	a.mu.Lock()
	a.validAccess = refreshedAccessToken
	a.mu.Unlock()
	writeEnvelope(w, http.StatusOK, fmt.Sprintf(
		`{"success":true,"data":{"accessToken":%q,"refreshToken":""}}`, refreshedAccessToken))
}

func (a *authAPI) handleProfile(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	a.profileCalls++
	valid := "Bearer " + a.validAccess
	fail := a.failProfile
	a.mu.Unlock()

	if fail {
		writeEnvelope(w, http.StatusInternalServerError, `{"success":false,"message":"Something broke"}`)
		return
	}
	if a.validAccessLocked() == "" || r.Header.Get("Authorization") != valid {
		writeEnvelope(w, http.StatusUnauthorized, `{"success":false,"message":"Token expired"}`)
		return
	}
	writeEnvelope(w, http.StatusOK, fmt.Sprintf(`{"success":true,"data":%s}`, a.userJSON()))
}

func (a *authAPI) validAccessLocked() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.validAccess
}

func writeEnvelope(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

type controllerFixture struct {
	api    *authAPI
	tokens *storefake.FakeTokenStore
	cache  *usercache.Store
	state  *session.State
	ctrl   *session.Controller
}

func setupControllerFixture(t *testing.T) *controllerFixture {
	t.Helper()

	api := &authAPI{t: t}
	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)

	tokenStore := storefake.NewFakeTokenStore()
	cache, err := usercache.NewStore(t.TempDir())
	require.NoError(t, err)

	gw, err := gateway.New(server.URL, tokenStore)
	require.NoError(t, err)

	state := session.NewState()
	ctrl, err := session.NewController(state, gw, session.Stores{
		Tokens: tokenStore,
		Users:  cache,
	})
	require.NoError(t, err)

	return &controllerFixture{api: api, tokens: tokenStore, cache: cache, state: state, ctrl: ctrl}
}

func (f *controllerFixture) login(t *testing.T) {
	t.Helper()
	ok := f.ctrl.Login(context.Background(), session.Credentials{
		Email:    testUserEmail,
		Password: testUserPassword,
	})
	require.True(t, ok)
}

func TestController_Login(t *testing.T) {
	t.Run("success establishes the session everywhere", func(t *testing.T) {
		f := setupControllerFixture(t)
		f.login(t)

		snap := f.state.Snapshot()
		require.True(t, snap.IsAuthenticated)
		require.Equal(t, testUserID, snap.User.ID)
		require.Equal(t, loginAccessToken, snap.AccessToken)
		require.Equal(t, testRefreshToken, snap.RefreshToken)
		require.Empty(t, snap.Error)
		require.False(t, snap.IsLoading)

		// Persisted store-first, so a restart can restore this session.
		require.Equal(t, loginAccessToken, f.tokens.AccessToken())
		require.Equal(t, testRefreshToken, f.tokens.RefreshToken())
		cached := f.cache.Get()
		require.NotNil(t, cached)
		require.Equal(t, testUserEmail, cached.Email)
	})

	t.Run("invalid credentials record the server message", func(t *testing.T) {
		f := setupControllerFixture(t)
		ok := f.ctrl.Login(context.Background(), session.Credentials{
			Email:    testUserEmail,
			Password: "wrong-password",
		})
		require.False(t, ok)

		require.False(t, f.state.IsAuthenticated())
		require.Equal(t, "Invalid email or password", f.state.Err())
		require.Empty(t, f.tokens.AccessToken())
		require.Nil(t, f.cache.Get())
	})

	t.Run("a new attempt clears the previous error", func(t *testing.T) {
		f := setupControllerFixture(t)
		require.False(t, f.ctrl.Login(context.Background(), session.Credentials{Email: testUserEmail, Password: "wrong"}))
		require.NotEmpty(t, f.state.Err())

		f.login(t)
		require.Empty(t, f.state.Err())
	})
}

func TestController_Register(t *testing.T) {
	t.Run("client-side validation short-circuits", func(t *testing.T) {
		f := setupControllerFixture(t)
		ok := f.ctrl.Register(context.Background(), session.RegisterData{
			Email:    testUserEmail,
			Password: "weak",
		})
		require.False(t, ok)
		require.NotEmpty(t, f.state.Err())
		require.Equal(t, 0, f.api.registerCalls)
	})

	t.Run("success signs the account in", func(t *testing.T) {
		f := setupControllerFixture(t)
		ok := f.ctrl.Register(context.Background(), session.RegisterData{
			Email:     testUserEmail,
			Password:  testUserPassword,
			FirstName: "John",
			LastName:  "Doe",
		})
		require.True(t, ok)
		require.True(t, f.state.IsAuthenticated())
		require.Equal(t, 1, f.api.registerCalls)
	})
}

func TestController_Logout(t *testing.T) {
	t.Run("clears state and stores", func(t *testing.T) {
		f := setupControllerFixture(t)
		f.login(t)

		f.ctrl.Logout(context.Background())

		require.False(t, f.state.IsAuthenticated())
		require.Nil(t, f.state.User())
		require.Empty(t, f.tokens.AccessToken())
		require.Empty(t, f.tokens.RefreshToken())
		require.Nil(t, f.cache.Get())
		require.Equal(t, 1, f.api.logoutCalls)
	})

	t.Run("remote failure still clears locally", func(t *testing.T) {
		f := setupControllerFixture(t)
		f.login(t)
		f.api.failLogout = true

		f.ctrl.Logout(context.Background())
		require.False(t, f.state.IsAuthenticated())
		require.Empty(t, f.tokens.AccessToken())
	})

	t.Run("idempotent", func(t *testing.T) {
		f := setupControllerFixture(t)
		f.login(t)
		f.ctrl.Logout(context.Background())
		f.ctrl.Logout(context.Background())
		require.False(t, f.state.IsAuthenticated())
	})
}

func TestController_Initialize(t *testing.T) {
	t.Run("full restore from stores without the network", func(t *testing.T) {
		f := setupControllerFixture(t)
		require.NoError(t, f.tokens.SetAccessToken(loginAccessToken))
		require.NoError(t, f.tokens.SetRefreshToken(testRefreshToken))
		require.NoError(t, f.cache.Set(&users.User{ID: testUserID, Email: testUserEmail}))

		f.ctrl.Initialize()

		snap := f.state.Snapshot()
		require.True(t, snap.IsAuthenticated)
		require.Equal(t, testUserID, snap.User.ID)
		require.Equal(t, 0, f.api.profileCalls)
		require.Equal(t, 0, f.api.refreshCalls)
	})

	t.Run("refresh-only restore hydrates partially", func(t *testing.T) {
		f := setupControllerFixture(t)
		require.NoError(t, f.tokens.SetRefreshToken(testRefreshToken))
		require.NoError(t, f.cache.Set(&users.User{ID: testUserID, Email: testUserEmail}))

		f.ctrl.Initialize()

		snap := f.state.Snapshot()
		require.False(t, snap.IsAuthenticated)
		require.NotNil(t, snap.User)
		require.Empty(t, snap.AccessToken)
		require.Equal(t, testRefreshToken, snap.RefreshToken)
	})

	t.Run("first request after partial restore heals the session", func(t *testing.T) {
		f := setupControllerFixture(t)
		f.api.validRefresh = testRefreshToken
		require.NoError(t, f.tokens.SetRefreshToken(testRefreshToken))
		require.NoError(t, f.cache.Set(&users.User{ID: testUserID, Email: testUserEmail}))
		f.ctrl.Initialize()
		require.False(t, f.state.IsAuthenticated())

		_, err := f.ctrl.RefreshProfile(context.Background())
		require.NoError(t, err)

		require.Equal(t, 1, f.api.refreshCalls)
		require.True(t, f.state.IsAuthenticated())
		require.Equal(t, refreshedAccessToken, f.tokens.AccessToken())
	})

	t.Run("nothing restorable fails closed", func(t *testing.T) {
		f := setupControllerFixture(t)
		// Leftover token with no cached user is not a usable session.
		require.NoError(t, f.tokens.SetAccessToken(loginAccessToken))

		f.ctrl.Initialize()

		require.False(t, f.state.IsAuthenticated())
		require.Empty(t, f.tokens.AccessToken())
	})
}

func TestController_RefreshProfile(t *testing.T) {
	t.Run("reconciles state and cache", func(t *testing.T) {
		f := setupControllerFixture(t)
		f.login(t)

		user, err := f.ctrl.RefreshProfile(context.Background())
		require.NoError(t, err)
		require.Equal(t, testUserID, user.ID)
		require.Equal(t, testUserEmail, f.cache.Get().Email)
	})

	t.Run("failure decays to logged out", func(t *testing.T) {
		f := setupControllerFixture(t)
		f.login(t)
		f.api.failProfile = true

		_, err := f.ctrl.RefreshProfile(context.Background())
		require.Error(t, err)
		require.False(t, f.state.IsAuthenticated())
		require.Empty(t, f.tokens.AccessToken())
		require.Nil(t, f.cache.Get())
	})
}

func TestController_UpdateUser(t *testing.T) {
	t.Run("writes through to the cache", func(t *testing.T) {
		f := setupControllerFixture(t)
		f.login(t)

		f.ctrl.UpdateUser(users.Partial{FirstName: utils.Ptr("Jane")})

		require.Equal(t, "Jane", f.state.User().FirstName)
		require.Equal(t, "Jane", f.cache.Get().FirstName)
	})

	t.Run("no-op when not authenticated", func(t *testing.T) {
		f := setupControllerFixture(t)
		f.ctrl.UpdateUser(users.Partial{FirstName: utils.Ptr("Jane")})
		require.Nil(t, f.state.User())
	})
}

func TestController_ExpiredSessionForcesLogout(t *testing.T) {
	f := setupControllerFixture(t)
	f.login(t)

	// Invalidate both tokens server-side: the next request 401s, the
	// refresh fails, and the sink clears the observable state.
	f.api.mu.Lock()
	f.api.validAccess = "rotated-away"
	f.api.validRefresh = "rotated-away"
	f.api.mu.Unlock()

	_, err := f.ctrl.RefreshProfile(context.Background())
	require.Error(t, err)

	require.False(t, f.state.IsAuthenticated())
	require.Nil(t, f.state.User())
	require.Empty(t, f.tokens.AccessToken())
	require.Empty(t, f.tokens.RefreshToken())
}

func TestController_PasswordValidation(t *testing.T) {
	f := setupControllerFixture(t)
	f.login(t)

	t.Run("change password rejects a weak password locally", func(t *testing.T) {
		err := f.ctrl.ChangePassword(context.Background(), testUserPassword, "weak")
		require.Error(t, err)
	})

	t.Run("forgot password rejects a malformed email locally", func(t *testing.T) {
		err := f.ctrl.ForgotPassword(context.Background(), "not-an-email")
		require.Error(t, err)
	})
}

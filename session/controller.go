package session

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/cardvault/go-cardvault-client/gateway"
	"github.com/cardvault/go-cardvault-client/tokens"
	"github.com/cardvault/go-cardvault-client/usercache"
	"github.com/cardvault/go-cardvault-client/users"
)

// Credentials is the login form payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TotpCode string `json:"totpCode,omitempty"`
}

// RegisterData is the registration form payload.
type RegisterData struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Phone       string `json:"phone,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Country     string `json:"country,omitempty"`
	PostalCode  string `json:"postalCode,omitempty"`
}

// authResponse is the payload of login, register and social sign-in.
type authResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         *users.User `json:"user"`
	ExpiresIn    int         `json:"expiresIn,omitempty"`
}

// Stores bundles the persisted-store dependencies of the Controller.
type Stores struct {
	Tokens tokens.Store     // Persisted credential pair
	Users  *usercache.Store // Persisted profile cache
}

// Controller orchestrates login, registration, logout and startup session
// restoration, keeping the persisted stores and the in-memory State in
// sync. Login, Register and Logout never return an error to the caller;
// failures land in the State's error field.
type Controller struct {
	state  *State
	gw     *gateway.Client
	stores Stores
	log    zerolog.Logger
}

// ControllerOption modifies a Controller.
type ControllerOption func(*Controller)

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) ControllerOption {
	return func(c *Controller) {
		c.log = log
	}
}

// NewController wires the session controller and registers the State as
// the gateway's sink, so refresh outcomes propagate back into it.
func NewController(state *State, gw *gateway.Client, stores Stores, options ...ControllerOption) (*Controller, error) {
	if state == nil {
		return nil, errors.New("[NewController] state is required")
	}
	if gw == nil {
		return nil, errors.New("[NewController] gateway is required")
	}
	if stores.Tokens == nil {
		return nil, errors.New("[NewController] token store is required")
	}
	if stores.Users == nil {
		return nil, errors.New("[NewController] user cache is required")
	}

	c := &Controller{
		state:  state,
		gw:     gw,
		stores: stores,
		log:    zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}

	gw.SetStateSink(state)
	return c, nil
}

// State returns the observable auth state.
func (c *Controller) State() *State {
	return c.state
}

// Initialize restores the session from the persisted stores. It never
// blocks on the network: with a cached user and access token the state is
// hydrated as authenticated outright; with only a refresh token left, the
// state is hydrated partially and the next authenticated request heals it
// through the gateway's refresh path. Any unusable combination fails
// closed to logged out, clearing the persisted state.
func (c *Controller) Initialize() {
	c.state.SetLoading(true)
	defer c.state.SetLoading(false)

	cachedUser := c.stores.Users.Get()
	accessToken := c.stores.Tokens.AccessToken()
	refreshToken := c.stores.Tokens.RefreshToken()

	switch {
	case cachedUser != nil && accessToken != "":
		c.state.SetTokens(accessToken, refreshToken)
		c.state.SetUser(cachedUser)
		c.log.Debug().Str("user_id", cachedUser.ID).Msg("session restored")

	case cachedUser != nil && refreshToken != "":
		// Access token gone (runtime dir wiped) but the refresh token
		// survived. Hydrate what we have; the first authenticated call's
		// 401 path mints a fresh access token.
		c.state.SetTokens("", refreshToken)
		c.state.SetUser(cachedUser)
		c.log.Debug().Str("user_id", cachedUser.ID).Msg("session partially restored, refresh pending")

	default:
		c.clearEverything()
		c.log.Debug().Msg("no restorable session")
	}
}

// Login authenticates with email and password. Returns true on success;
// on failure the error message is recorded in the State and false is
// returned. Never panics or propagates an error to the caller.
func (c *Controller) Login(ctx context.Context, creds Credentials) bool {
	c.state.SetLoading(true)
	defer c.state.SetLoading(false)
	c.state.SetError("")

	var resp authResponse
	if err := c.gw.Post(ctx, "/auth/login", creds, &resp); err != nil {
		c.state.SetError(failureMessage(err, "Login failed. Please try again."))
		c.log.Warn().Err(err).Msg("login failed")
		return false
	}
	return c.establish(resp)
}

// Register creates an account. Client-side validation runs first so the
// obvious form errors never leave the machine.
func (c *Controller) Register(ctx context.Context, data RegisterData) bool {
	c.state.SetLoading(true)
	defer c.state.SetLoading(false)
	c.state.SetError("")

	if err := users.ValidateRegistration(data.Email, data.Password, data.FirstName, data.LastName, data.Phone); err != nil {
		c.state.SetError(err.Error())
		return false
	}

	var resp authResponse
	if err := c.gw.Post(ctx, "/auth/register", data, &resp); err != nil {
		c.state.SetError(failureMessage(err, "Registration failed. Please try again."))
		c.log.Warn().Err(err).Msg("registration failed")
		return false
	}
	return c.establish(resp)
}

// Logout ends the session. The remote call is best effort; the local
// cleanup always runs, so calling Logout twice is harmless.
func (c *Controller) Logout(ctx context.Context) {
	if err := c.gw.Post(ctx, "/auth/logout", nil, nil); err != nil {
		c.log.Warn().Err(err).Msg("remote logout failed, clearing local session anyway")
	}
	c.clearEverything()
}

// UpdateUser merges the partial profile into the State's current user and
// writes it through to the cache. No-op when not authenticated.
func (c *Controller) UpdateUser(partial users.Partial) {
	if !c.state.IsAuthenticated() {
		return
	}
	c.state.UpdateUser(partial)
	if err := c.stores.Users.Update(partial); err != nil {
		c.log.Warn().Err(err).Msg("failed to write profile update to cache")
	}
}

// RefreshProfile fetches the current profile and reconciles state and
// cache with it. A failure here means the session is no longer usable and
// decays to logged out.
func (c *Controller) RefreshProfile(ctx context.Context) (*users.User, error) {
	var user users.User
	if err := c.gw.Get(ctx, "/users/profile", &user); err != nil {
		c.log.Warn().Err(err).Msg("profile fetch failed, clearing session")
		c.clearEverything()
		return nil, errors.Wrap(err, "[Controller.RefreshProfile] fetch")
	}
	c.state.SetUser(&user)
	if err := c.stores.Users.Set(&user); err != nil {
		c.log.Warn().Err(err).Msg("failed to cache profile")
	}
	return &user, nil
}

// ChangePassword updates the password for the authenticated account.
func (c *Controller) ChangePassword(ctx context.Context, current, next string) error {
	if err := users.ValidatePasswordStrength(next); err != nil {
		return err
	}
	body := map[string]string{"currentPassword": current, "newPassword": next}
	return c.gw.Post(ctx, "/auth/change-password", body, nil)
}

// ForgotPassword requests a reset email.
func (c *Controller) ForgotPassword(ctx context.Context, email string) error {
	if err := users.ValidateEmail(email); err != nil {
		return err
	}
	return c.gw.Post(ctx, "/auth/forgot-password", map[string]string{"email": email}, nil)
}

// ResetPassword completes a reset with the emailed token.
func (c *Controller) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := users.ValidatePasswordStrength(newPassword); err != nil {
		return err
	}
	body := map[string]string{"token": token, "newPassword": newPassword}
	return c.gw.Post(ctx, "/auth/reset-password", body, nil)
}

// VerifyEmail confirms the address with the emailed token.
func (c *Controller) VerifyEmail(ctx context.Context, token string) error {
	return c.gw.Post(ctx, "/auth/verify-email", map[string]string{"token": token}, nil)
}

// ResendVerification asks for a fresh verification email.
func (c *Controller) ResendVerification(ctx context.Context) error {
	return c.gw.Post(ctx, "/auth/resend-verification", nil, nil)
}

// establish persists a successful auth response and marks the state
// authenticated. Mutations happen store-first so a crash mid-way leaves a
// restorable session rather than a dangling in-memory one.
func (c *Controller) establish(resp authResponse) bool {
	if resp.AccessToken == "" || resp.User == nil {
		c.state.SetError("Login failed. Please try again.")
		c.log.Error().Msg("auth response missing token or user")
		return false
	}

	if err := c.stores.Tokens.SetAccessToken(resp.AccessToken); err != nil {
		c.log.Warn().Err(err).Msg("failed to persist access token")
	}
	if resp.RefreshToken != "" {
		if err := c.stores.Tokens.SetRefreshToken(resp.RefreshToken); err != nil {
			c.log.Warn().Err(err).Msg("failed to persist refresh token")
		}
	}
	if err := c.stores.Users.Set(resp.User); err != nil {
		c.log.Warn().Err(err).Msg("failed to cache profile")
	}

	c.state.SetTokens(resp.AccessToken, resp.RefreshToken)
	c.state.SetUser(resp.User)
	c.log.Info().Str("user_id", resp.User.ID).Msg("session established")
	return true
}

// clearEverything wipes the persisted stores and resets the State.
func (c *Controller) clearEverything() {
	if err := c.stores.Tokens.Clear(); err != nil {
		c.log.Warn().Err(err).Msg("failed to clear token store")
	}
	if err := c.stores.Users.Remove(); err != nil {
		c.log.Warn().Err(err).Msg("failed to clear cached profile")
	}
	c.state.Clear()
}

// failureMessage extracts the server's message when the failure carries
// one, otherwise falls back to a generic message.
func failureMessage(err error, fallback string) string {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Package tokens persists the credential pair issued by the CardVault API.
//
// The two tokens live in different tiers: the access token is scoped to the
// current login session (runtime dir, wiped when the session ends), the
// refresh token survives restarts for a fixed expiry window. Token values
// are never logged.
package tokens

// Store is the persisted credential-pair store. Getters report absence as
// an empty string; storage faults are swallowed and read as absence so a
// corrupted store degrades to "logged out" rather than an error.
type Store interface {
	SetAccessToken(token string) error
	AccessToken() string
	RemoveAccessToken() error

	SetRefreshToken(token string) error
	RefreshToken() string
	RemoveRefreshToken() error

	// Clear removes both tokens. Idempotent.
	Clear() error

	// Authenticated reports whether an access token is present. This is a
	// local liveness check only, it does not validate the token against
	// the server.
	Authenticated() bool
}

package session

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"
)

// Provider identifies a social sign-in provider supported by the platform.
type Provider string

const (
	ProviderGoogle    Provider = "google"
	ProviderMicrosoft Provider = "microsoft"
)

var socialEndpoints = map[Provider]oauth2.Endpoint{
	ProviderGoogle:    google.Endpoint,
	ProviderMicrosoft: microsoft.AzureADEndpoint("common"),
}

// socialScopes are the identity scopes the platform needs to link the
// provider account.
var socialScopes = []string{"openid", "email", "profile"}

// AuthCodeURL builds the provider authorization URL the user visits to
// obtain a sign-in code. The code is then exchanged server-side via
// LoginWithProvider; this client never touches provider tokens.
func AuthCodeURL(provider Provider, clientID, redirectURL, state string) (string, error) {
	endpoint, ok := socialEndpoints[provider]
	if !ok {
		return "", errors.Errorf("[AuthCodeURL] unsupported provider %q", provider)
	}
	if clientID == "" {
		return "", errors.Errorf("[AuthCodeURL] no client ID configured for %q", provider)
	}

	cfg := oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURL,
		Endpoint:    endpoint,
		Scopes:      socialScopes,
	}
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

// LoginWithProvider forwards a provider authorization code to the platform
// API, which verifies it and mints a CardVault credential pair. Same
// contract as Login: boolean result, failure message in the State.
func (c *Controller) LoginWithProvider(ctx context.Context, provider Provider, code string) bool {
	c.state.SetLoading(true)
	defer c.state.SetLoading(false)
	c.state.SetError("")

	if _, ok := socialEndpoints[provider]; !ok {
		c.state.SetError("Unsupported sign-in provider.")
		return false
	}

	var resp authResponse
	if err := c.gw.Post(ctx, "/auth/"+string(provider), map[string]string{"code": code}, &resp); err != nil {
		c.state.SetError(failureMessage(err, "Sign-in failed. Please try again."))
		c.log.Warn().Err(err).Str("provider", string(provider)).Msg("social sign-in failed")
		return false
	}
	return c.establish(resp)
}

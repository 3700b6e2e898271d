package config

type AuthConfig interface {
	GetGoogleClientID() string
	GetMicrosoftClientID() string
	GetOAuthRedirectURL() string
}

type Auth struct{}

var _ AuthConfig = Auth{}

func (Auth) GetGoogleClientID() string {
	return GetEnv("GOOGLE_CLIENT_ID", "")
}

func (Auth) GetMicrosoftClientID() string {
	return GetEnv("MICROSOFT_CLIENT_ID", "")
}

// GetOAuthRedirectURL returns the redirect URI registered with the social
// sign-in providers. The default matches the local callback listener.
func (Auth) GetOAuthRedirectURL() string {
	return GetEnv("OAUTH_REDIRECT_URL", "http://localhost:8910/callback")
}

package config

import (
	"os"
	"time"
)

const (
	appNameVar    = "APP_NAME"
	baseURLVar    = "CARDVAULT_API_URL"
	timeoutVar    = "CARDVAULT_TIMEOUT"
	logLevelVar   = "LOG_LEVEL"
	defaultAPIURL = "http://localhost:8000/api/v1"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "CardVault")
}

// GetAPIBaseURL returns the base URL of the CardVault platform API,
// including the version prefix (e.g. "https://api.cardvault.io/api/v1").
func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(baseURLVar, defaultAPIURL)
}

func (EnvVars) GetRequestTimeout() time.Duration {
	d, err := time.ParseDuration(GetEnv(timeoutVar, "30s"))
	if err != nil {
		return 30 * time.Second
	}
	return d
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

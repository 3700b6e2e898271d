package config

import (
	"time"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	StorageConfig
	AuthConfig
	CheckoutConfig
}

type EnvConfig interface {
	GetAppName() string
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
	GetLogLevel() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Storage
	Auth
	Checkout
}

// New builds the default configuration, sourcing values from the process
// environment. A .env file in the working directory is applied first if
// one exists.
func New() Config {
	_ = godotenv.Load()
	return mainConfig{}
}

package config

import (
	"os"
	"path/filepath"
	"time"
)

type StorageConfig interface {
	GetConfigDir() string
	GetRuntimeDir() string
	GetRefreshTokenTTL() time.Duration
}

type Storage struct{}

var _ StorageConfig = Storage{}

// GetConfigDir returns the durable state directory. Data placed here
// survives reboots (cached profile, refresh token record, seal key).
func (Storage) GetConfigDir() string {
	if dir := os.Getenv("CARDVAULT_CONFIG_DIR"); dir != "" {
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "cardvault")
}

// GetRuntimeDir returns the session-scoped state directory. The access
// token lives here: runtime dirs are backed by tmpfs on most systems and
// are wiped when the login session ends.
func (Storage) GetRuntimeDir() string {
	if dir := os.Getenv("CARDVAULT_RUNTIME_DIR"); dir != "" {
		return dir
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "cardvault")
	}
	return filepath.Join(os.TempDir(), "cardvault")
}

func (Storage) GetRefreshTokenTTL() time.Duration {
	d, err := time.ParseDuration(GetEnv("CARDVAULT_REFRESH_TTL", "720h"))
	if err != nil {
		return 30 * 24 * time.Hour
	}
	return d
}

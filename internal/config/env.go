package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment names for the backend host. VITE_BACKEND_HOST is what the
// browser bundle used; it is honoured when BACKEND_HOST is unset.
const (
	EnvBackendHost       = "BACKEND_HOST"
	EnvLegacyBackendHost = "VITE_BACKEND_HOST"
)

// OverlayEnv loads envFile (if it exists) into the process environment and
// applies the backend host override. Variables already set win over the file.
func OverlayEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	for _, key := range []string{EnvBackendHost, EnvLegacyBackendHost} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			cfg.Backend.Host = v
			break
		}
	}
	return nil
}

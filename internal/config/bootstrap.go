package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const userConfigName = "config.yml"

// EnsureUserConfig returns the config path inside dataDir. On first run it
// seeds that file from defaultPath, or from Default() when no default file
// ships alongside the binary.
func EnsureUserConfig(dataDir string, defaultPath string) (string, error) {
	userPath := filepath.Join(dataDir, userConfigName)

	switch _, err := os.Stat(userPath); {
	case err == nil:
		return userPath, nil
	case !errors.Is(err, os.ErrNotExist):
		return "", err
	}

	seed, err := os.ReadFile(defaultPath)
	if errors.Is(err, os.ErrNotExist) {
		seed, err = yaml.Marshal(Default())
	}
	if err != nil {
		return "", fmt.Errorf("read default config: %w", err)
	}

	// write to a temp file first so a crash never leaves a half-written config
	tmp, err := os.CreateTemp(dataDir, userConfigName+".*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(seed); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), userPath); err != nil {
		return "", err
	}
	return userPath, nil
}

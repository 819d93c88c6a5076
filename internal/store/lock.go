package store

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

var ErrLocked = errors.New("data dir is in use by another instance")

// LockDataDir takes an exclusive lock on dataDir so two engines never share
// one sqlite file. Release with Unlock.
func LockDataDir(dataDir string) (*flock.Flock, error) {
	fl := flock.New(filepath.Join(dataDir, "jobscraper.lock"))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock data dir: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, dataDir)
	}
	return fl, nil
}

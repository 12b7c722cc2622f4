// Package lockfile provides an inter-process mutex backed by an advisory
// lock on a file.
package lockfile

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/qiniu/x/log"
)

// A Mutex provides mutual exclusion between processes sharing a
// workspace. The zero value is not usable; use MutexAt.
type Mutex struct {
	path string
}

// MutexAt returns a Mutex locking the file at path. The file is created
// on first use and never removed.
func MutexAt(path string) *Mutex {
	if path == "" {
		panic("lockfile.MutexAt: path must be non-empty")
	}
	return &Mutex{path: path}
}

// Path returns the lock file path.
func (mu *Mutex) Path() string { return mu.path }

// Lock blocks until the lock is held and returns the function that
// releases it.
func (mu *Mutex) Lock() (unlock func(), err error) {
	if err := os.MkdirAll(filepath.Dir(mu.path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(mu.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	if err := lockFile(f); err != nil {
		return nil, errors.Join(err, f.Close())
	}
	return func() {
		if err := errors.Join(unlockFile(f), f.Close()); err != nil {
			log.Warnf("lockfile: release %s: %v", mu.path, err)
		}
	}, nil
}

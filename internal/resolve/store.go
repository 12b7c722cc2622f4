// Package resolve resolves exact requirements against a local package
// store.
//
// Store layout:
//
//	root/
//	  <escaped-name>/
//	    <version>/       # package prefix
//	      include/
//	      lib/
package resolve

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cesiumgs/cesium-recipe/pkgs/mod/module"
)

// ErrUnresolved is matched by every *UnresolvedError.
var ErrUnresolved = errors.New("unresolved requirement")

// UnresolvedError reports a requirement with no matching package in the
// store.
type UnresolvedError struct {
	Requirement module.Version
	Available   []string // versions present in the store, ascending
}

func (e *UnresolvedError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("%s: package %s not found", e.Requirement, e.Requirement.Path)
	}
	return fmt.Sprintf("%s: version not found (available: %s)", e.Requirement, strings.Join(e.Available, ", "))
}

func (e *UnresolvedError) Is(target error) bool { return target == ErrUnresolved }

// Store is a directory of installed packages.
type Store struct {
	root string
}

// New returns the store rooted at root.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the store root.
func (s *Store) Root() string { return s.root }

// Dir returns where req is (or would be) installed.
func (s *Store) Dir(req module.Version) (string, error) {
	name, err := module.EscapePath(req.Path)
	if err != nil {
		return "", err
	}
	ver, err := module.EscapePath(req.Version)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, name, ver), nil
}

// Resolve returns the prefix of the exact version req.
func (s *Store) Resolve(ctx context.Context, req module.Version) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir, err := s.Dir(req)
	if err != nil {
		return "", err
	}
	if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
		return dir, nil
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	avail, err := s.Versions(req.Path)
	if err != nil {
		return "", err
	}
	return "", &UnresolvedError{Requirement: req, Available: avail}
}

// Versions lists the installed versions of name in ascending order.
func (s *Store) Versions(name string) ([]string, error) {
	escaped, err := module.EscapePath(name)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.root, escaped))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var vers []string
	for _, e := range entries {
		if e.IsDir() {
			vers = append(vers, e.Name())
		}
	}
	slices.SortFunc(vers, module.CompareVersions)
	return vers, nil
}

// Package module defines the module.Version type along with support code
// for parsing and ordering package requirements.
package module

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cesiumgs/cesium-recipe/pkgs/gnu"
	"golang.org/x/mod/semver"
)

// ErrMalformedRequirement is returned when a requirement specifier is not
// of the form "<name>/<version>".
var ErrMalformedRequirement = errors.New("malformed requirement")

// A Version (for clients, a module.Version) represents an exact version of
// an upstream package identified by its name.
type Version struct {
	Path    string // Package name, e.g. "ms-gsl"
	Version string // Exact version, e.g. "4.0.0" or "cci.20211112"
}

// String renders v in requirement form, "<name>/<version>".
func (v Version) String() string {
	return v.Path + "/" + v.Version
}

// ParseRequirement parses a requirement specifier of the form
// "<name>/<version>".
func ParseRequirement(spec string) (Version, error) {
	name, ver, ok := strings.Cut(spec, "/")
	if !ok || name == "" || ver == "" || strings.Contains(ver, "/") ||
		strings.ContainsAny(spec, " \t\r\n@") {
		return Version{}, fmt.Errorf("%w: %q", ErrMalformedRequirement, spec)
	}
	return Version{Path: name, Version: ver}, nil
}

// MustParseRequirement is like ParseRequirement but panics on error.
// It is meant for static requirement tables.
func MustParseRequirement(spec string) Version {
	v, err := ParseRequirement(spec)
	if err != nil {
		panic(err)
	}
	return v
}

// EscapePath returns the escaped form of the given package name as a valid
// file system path. It fails if the name is invalid.
func EscapePath(path string) (escaped string, err error) {
	return filepath.Localize(path)
}

// CompareVersions orders two versions of the same package. Versions that
// are both valid semantic versions (with an implicit "v" prefix) are
// compared as such; anything else falls back to GNU version ordering.
func CompareVersions(v1, v2 string) int {
	s1, s2 := "v"+v1, "v"+v2
	if semver.IsValid(s1) && semver.IsValid(s2) {
		return semver.Compare(s1, s2)
	}
	return gnu.Compare(v1, v2)
}

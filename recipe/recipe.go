// Package recipe declares how a native library package is described and
// how its build phases are delegated to a build system.
//
// A Recipe is driven through a fixed sequence of hooks:
//
//	ConfigOptions → Generate → Build → Package → PackageInfo
//
// Every hook receives its inputs explicitly; recipes keep no global state.
package recipe

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/cesiumgs/cesium-recipe/pkgs/buildsys"
	"github.com/cesiumgs/cesium-recipe/pkgs/mod/module"
)

// ErrInvalidDeclaration is matched by every error returned from
// Declaration.Validate.
var ErrInvalidDeclaration = errors.New("invalid recipe declaration")

// Identity is the immutable identity of a package. Name, Version, User and
// Channel form its addressable coordinate.
type Identity struct {
	Name        string
	Version     string
	User        string
	Channel     string
	License     string
	Author      string
	URL         string
	Description string
	Topics      []string
}

// Ref returns the package reference "name/version@user/channel". The
// "@user/channel" part is omitted when both are empty.
func (id Identity) Ref() string {
	ref := id.Name + "/" + id.Version
	if id.User != "" || id.Channel != "" {
		ref += "@" + id.User + "/" + id.Channel
	}
	return ref
}

// Declaration is the static metadata of a recipe.
type Declaration struct {
	Identity     Identity
	SettingsAxes []string
	Options      *Options
	Exports      []string // path globs relative to the recipe directory
	Requires     []string // "<name>/<version>"
}

// Requirements parses Requires.
func (d Declaration) Requirements() ([]module.Version, error) {
	reqs := make([]module.Version, 0, len(d.Requires))
	for _, req := range d.Requires {
		v, err := module.ParseRequirement(req)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, v)
	}
	return reqs, nil
}

// Validate reports declaration errors: a missing coordinate, unknown
// settings axes, malformed or duplicate requirements.
func (d Declaration) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidDeclaration, fmt.Sprintf(format, args...))
	}
	if d.Identity.Name == "" || d.Identity.Version == "" {
		return invalid("name and version are required")
	}
	for _, axis := range d.SettingsAxes {
		if !slices.Contains(Axes(), axis) {
			return invalid("unknown settings axis %q", axis)
		}
	}
	if d.Options == nil {
		return invalid("no option schema")
	}
	reqs, err := d.Requirements()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDeclaration, err)
	}
	seen := make(map[string]bool, len(reqs))
	for _, r := range reqs {
		if seen[r.Path] {
			return invalid("%s required twice", r.Path)
		}
		seen[r.Path] = true
	}
	return nil
}

// CppInfo is what a package exposes to its consumers.
type CppInfo struct {
	Libs        []string // logical library names, e.g. "CesiumUtility"
	IncludeDirs []string
	LibDirs     []string
}

// Context is the explicit handle each hook receives.
type Context struct {
	Settings Settings
	Options  *Options // resolved options; hooks must not modify them
	Requires []module.Version
	Build    buildsys.BuildSystem
}

// NewToolchain returns a toolchain description pre-populated with the
// switches derived from settings and options: CMAKE_BUILD_TYPE,
// BUILD_SHARED_LIBS from "shared" and CMAKE_POSITION_INDEPENDENT_CODE from
// "fPIC", each only when the corresponding input is present.
func (c *Context) NewToolchain() *buildsys.Toolchain {
	tc := buildsys.NewToolchain()
	if bt, ok := c.Settings.Get(AxisBuildType); ok {
		tc.Set("CMAKE_BUILD_TYPE", bt)
	}
	if c.Options == nil {
		return tc
	}
	if shared, ok := c.Options.Bool("shared"); ok {
		tc.SetBool("BUILD_SHARED_LIBS", shared)
	}
	if pic, ok := c.Options.Bool("fPIC"); ok {
		tc.SetBool("CMAKE_POSITION_INDEPENDENT_CODE", pic)
	}
	return tc
}

// Recipe is implemented by every package recipe.
type Recipe interface {
	// Declare returns the static metadata. It is called once per lifecycle
	// and must return a fresh Options each time.
	Declare() Declaration

	// ConfigOptions returns the options applicable under settings. It may
	// only remove entries.
	ConfigOptions(settings Settings, opts *Options) *Options

	// Generate emits the toolchain description and the dependency manifest.
	Generate(ctx context.Context, c *Context) error

	// Build configures and compiles.
	Build(ctx context.Context, c *Context) error

	// Package stages artifacts into the package layout.
	Package(ctx context.Context, c *Context) error

	// PackageInfo describes the assembled package.
	PackageInfo(ctx context.Context, c *Context) (*CppInfo, error)
}

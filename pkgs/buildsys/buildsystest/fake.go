// Package buildsystest provides a recording buildsys.BuildSystem for tests.
package buildsystest

import (
	"context"
	"slices"

	"github.com/cesiumgs/cesium-recipe/pkgs/buildsys"
	"github.com/cesiumgs/cesium-recipe/pkgs/mod/module"
)

// Step names recorded in Fake.Calls.
const (
	GenerateToolchain = "GenerateToolchain"
	GenerateDeps      = "GenerateDeps"
	Configure         = "Configure"
	Compile           = "Compile"
	Install           = "Install"
	ScanArtifacts     = "ScanArtifacts"
)

// Resolver mirrors cmake.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, req module.Version) (string, error)
}

// Fake records every delegated call. It never touches the filesystem.
type Fake struct {
	Calls     []string
	Toolchain *buildsys.Toolchain // last toolchain handed to GenerateToolchain
	Requires  []module.Version    // last requirements handed to GenerateDeps
	Libs      []string            // returned by ScanArtifacts
	Errs      map[string]error    // step name -> error to return
	Resolver  Resolver            // consulted by GenerateDeps when set
}

var _ buildsys.BuildSystem = (*Fake)(nil)

// FailAt makes step return err.
func (f *Fake) FailAt(step string, err error) *Fake {
	if f.Errs == nil {
		f.Errs = make(map[string]error)
	}
	f.Errs[step] = err
	return f
}

// Called reports whether step was invoked.
func (f *Fake) Called(step string) bool {
	return slices.Contains(f.Calls, step)
}

func (f *Fake) record(step string) error {
	f.Calls = append(f.Calls, step)
	return f.Errs[step]
}

func (f *Fake) GenerateToolchain(ctx context.Context, tc *buildsys.Toolchain) error {
	f.Toolchain = tc
	return f.record(GenerateToolchain)
}

func (f *Fake) GenerateDeps(ctx context.Context, requires []module.Version) error {
	f.Requires = slices.Clone(requires)
	if err := f.record(GenerateDeps); err != nil {
		return err
	}
	if f.Resolver == nil {
		return nil
	}
	for _, req := range requires {
		if _, err := f.Resolver.Resolve(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fake) Configure(ctx context.Context) error { return f.record(Configure) }

func (f *Fake) Compile(ctx context.Context) error { return f.record(Compile) }

func (f *Fake) Install(ctx context.Context) error { return f.record(Install) }

func (f *Fake) ScanArtifacts(ctx context.Context) ([]string, error) {
	if err := f.record(ScanArtifacts); err != nil {
		return nil, err
	}
	return slices.Clone(f.Libs), nil
}

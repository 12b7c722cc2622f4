// Package buildsys declares the capabilities a recipe delegates to an
// external build system. Each capability has exactly one method so that a
// lifecycle can be driven against fakes without a real compiler.
package buildsys

import (
	"context"

	"github.com/cesiumgs/cesium-recipe/pkgs/mod/module"
)

// ToolchainGenerator emits the toolchain description consumed by Configure.
type ToolchainGenerator interface {
	GenerateToolchain(ctx context.Context, tc *Toolchain) error
}

// DepsGenerator emits the dependency manifest for the given requirements.
// Resolution itself is delegated; errors are returned as produced.
type DepsGenerator interface {
	GenerateDeps(ctx context.Context, requires []module.Version) error
}

// Configurer runs the configure step against the generated toolchain.
type Configurer interface {
	Configure(ctx context.Context) error
}

// Compiler runs the compile step.
type Compiler interface {
	Compile(ctx context.Context) error
}

// Installer stages built artifacts into the package layout.
type Installer interface {
	Install(ctx context.Context) error
}

// ArtifactScanner lists the logical names of the linkable libraries found
// in the package layout.
type ArtifactScanner interface {
	ScanArtifacts(ctx context.Context) ([]string, error)
}

// BuildSystem captures every capability a recipe lifecycle needs from a
// build helper (CMake, etc).
type BuildSystem interface {
	ToolchainGenerator
	DepsGenerator
	Configurer
	Compiler
	Installer
	ArtifactScanner
}

// Package cesiumutility is the recipe of the CesiumUtility library from
// cesium-native.
package cesiumutility

import (
	"context"

	"github.com/cesiumgs/cesium-recipe/recipe"
)

// Toolchain switches injected on top of the build system defaults.
const (
	UseConanPackages = "CESIUM_USE_CONAN_PACKAGES"
	TestsEnabled     = "CESIUM_TESTS_ENABLED"
)

// Recipe builds CesiumUtility. The zero value is ready to use.
type Recipe struct{}

var _ recipe.Recipe = Recipe{}

// Declare returns the static metadata of CesiumUtility.
func (Recipe) Declare() recipe.Declaration {
	opts, err := recipe.NewOptions(
		recipe.BoolOption("shared", false),
		recipe.BoolOption("fPIC", true),
	)
	if err != nil {
		panic(err)
	}
	return recipe.Declaration{
		Identity: recipe.Identity{
			Name:        "CesiumUtility",
			Version:     "0.12.0",
			User:        "kring",
			Channel:     "dev",
			License:     "Apache-2.0",
			Author:      "CesiumGS, Inc. and Contributors",
			URL:         "https://github.com/CesiumGS/cesium-native",
			Description: "Utility functions for JSON parsing, URI processing, etc.",
		},
		SettingsAxes: recipe.Axes(),
		Options:      opts,
		Exports: []string{
			"include/*",
			"generated/*",
			"src/*",
			"test/*",
			"CMakeLists.txt",
			"../tools/cmake/cesium.cmake",
		},
		Requires: []string{
			"ms-gsl/4.0.0",
			"glm/0.9.9.8",
			"uriparser/0.9.6",
			"rapidjson/cci.20211112",
		},
	}
}

// ConfigOptions drops the options that do not apply under settings.
func (Recipe) ConfigOptions(settings recipe.Settings, opts *recipe.Options) *recipe.Options {
	return PruneOptions(opts, settings)
}

// PruneOptions returns a copy of opts without fPIC when building for
// Windows. An unset os removes nothing. opts is not modified.
func PruneOptions(opts *recipe.Options, settings recipe.Settings) *recipe.Options {
	pruned := opts.Clone()
	if settings.OS == "Windows" {
		pruned.Remove("fPIC")
	}
	return pruned
}

// Generate writes the toolchain with the cesium switches and the
// dependency manifest.
func (Recipe) Generate(ctx context.Context, c *recipe.Context) error {
	tc := c.NewToolchain()
	tc.SetBool(UseConanPackages, true)
	// The package's own test suite is never built here.
	tc.SetBool(TestsEnabled, false)
	if err := c.Build.GenerateToolchain(ctx, tc); err != nil {
		return err
	}
	return c.Build.GenerateDeps(ctx, c.Requires)
}

// Build configures and compiles.
func (Recipe) Build(ctx context.Context, c *recipe.Context) error {
	if err := c.Build.Configure(ctx); err != nil {
		return err
	}
	return c.Build.Compile(ctx)
}

// Package installs into the package layout.
func (Recipe) Package(ctx context.Context, c *recipe.Context) error {
	return c.Build.Install(ctx)
}

// PackageInfo collects the libraries staged by Package.
func (Recipe) PackageInfo(ctx context.Context, c *recipe.Context) (*recipe.CppInfo, error) {
	libs, err := c.Build.ScanArtifacts(ctx)
	if err != nil {
		return nil, err
	}
	return &recipe.CppInfo{
		Libs:        libs,
		IncludeDirs: []string{"include"},
		LibDirs:     []string{"lib"},
	}, nil
}

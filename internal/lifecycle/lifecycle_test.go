package lifecycle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/cesiumgs/cesium-recipe/internal/resolve"
	"github.com/cesiumgs/cesium-recipe/pkgs/buildsys/buildsystest"
	"github.com/cesiumgs/cesium-recipe/pkgs/mod/module"
	"github.com/cesiumgs/cesium-recipe/recipe"
	"github.com/cesiumgs/cesium-recipe/recipe/cesiumutility"
)

// storeWith returns a package store holding every requirement of
// CesiumUtility.
func storeWith(t *testing.T) *resolve.Store {
	t.Helper()
	root := t.TempDir()
	reqs, err := cesiumutility.Recipe{}.Declare().Requirements()
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range reqs {
		if err := os.MkdirAll(filepath.Join(root, r.Path, r.Version, "include"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return resolve.New(root)
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{
		Declared:     "declared",
		Generated:    "generated",
		Introspected: "introspected",
		State(42):    "State(42)",
	} {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

// os=Linux, shared=False, fPIC=True
func TestRunLinuxStatic(t *testing.T) {
	fake := &buildsystest.Fake{Libs: []string{"CesiumUtility"}, Resolver: storeWith(t)}
	res, err := Run(context.Background(), Config{
		Recipe:   cesiumutility.Recipe{},
		Settings: recipe.Settings{OS: "Linux", Compiler: "gcc", BuildType: "Release", Arch: "x86_64"},
		Options:  map[string]string{"shared": "False", "fPIC": "True"},
		Build:    fake,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Reached != Introspected {
		t.Errorf("Reached = %s", res.Reached)
	}
	if got := res.Options.Keys(); !slices.Equal(got, []string{"shared", "fPIC"}) {
		t.Errorf("resolved options = %v, want both", got)
	}
	want := []string{
		buildsystest.GenerateToolchain,
		buildsystest.GenerateDeps,
		buildsystest.Configure,
		buildsystest.Compile,
		buildsystest.Install,
		buildsystest.ScanArtifacts,
	}
	if !slices.Equal(fake.Calls, want) {
		t.Errorf("calls = %v, want %v", fake.Calls, want)
	}
	if len(res.Info.Libs) == 0 || !slices.Contains(res.Info.Libs, "CesiumUtility") {
		t.Errorf("Libs = %v, want CesiumUtility", res.Info.Libs)
	}
	if on, _ := fake.Toolchain.GetBool("CMAKE_POSITION_INDEPENDENT_CODE"); !on {
		t.Error("fPIC=True did not reach the toolchain")
	}
	if res.Ref != "CesiumUtility/0.12.0@kring/dev" {
		t.Errorf("Ref = %q", res.Ref)
	}
}

func TestRunWindowsDropsFPIC(t *testing.T) {
	fake := &buildsystest.Fake{Libs: []string{"CesiumUtility"}, Resolver: storeWith(t)}
	res, err := Run(context.Background(), Config{
		Recipe:   cesiumutility.Recipe{},
		Settings: recipe.Settings{OS: "Windows", Compiler: "msvc"},
		Options:  map[string]string{"fPIC": "True"},
		Build:    fake,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Options.Has("fPIC") {
		t.Error("fPIC survived option resolution on Windows")
	}
	if _, ok := fake.Toolchain.Get("CMAKE_POSITION_INDEPENDENT_CODE"); ok {
		t.Error("PIC switch emitted on Windows")
	}
	if res.Reached != Introspected {
		t.Errorf("Reached = %s", res.Reached)
	}
}

func TestRunUnresolvableRequirement(t *testing.T) {
	store := storeWith(t)
	if err := os.RemoveAll(filepath.Join(store.Root(), "glm", "0.9.9.8")); err != nil {
		t.Fatal(err)
	}
	fake := &buildsystest.Fake{Resolver: store}
	res, err := Run(context.Background(), Config{
		Recipe:   cesiumutility.Recipe{},
		Settings: recipe.Settings{OS: "Linux"},
		Build:    fake,
	})
	var unresolved *resolve.UnresolvedError
	if !errors.As(err, &unresolved) {
		t.Fatalf("Run error = %v, want *resolve.UnresolvedError", err)
	}
	if unresolved.Requirement != (module.Version{Path: "glm", Version: "0.9.9.8"}) {
		t.Errorf("unresolved %v", unresolved.Requirement)
	}
	if res.Reached != OptionsResolved {
		t.Errorf("Reached = %s, want %s", res.Reached, OptionsResolved)
	}
	for _, step := range []string{buildsystest.Configure, buildsystest.Compile, buildsystest.Install, buildsystest.ScanArtifacts} {
		if fake.Called(step) {
			t.Errorf("%s ran after generation failed", step)
		}
	}
}

func TestRunPropagatesErrorsUnmodified(t *testing.T) {
	boom := errors.New("tool diagnostic")
	tests := []struct {
		step    string
		reached State
	}{
		{buildsystest.GenerateToolchain, OptionsResolved},
		{buildsystest.Compile, Generated},
		{buildsystest.Install, Built},
		{buildsystest.ScanArtifacts, Assembled},
	}
	for _, tt := range tests {
		t.Run(tt.step, func(t *testing.T) {
			fake := (&buildsystest.Fake{}).FailAt(tt.step, boom)
			res, err := Run(context.Background(), Config{Recipe: cesiumutility.Recipe{}, Build: fake})
			if err != boom {
				t.Fatalf("Run error = %v, want %v unchanged", err, boom)
			}
			if res.Reached != tt.reached {
				t.Errorf("Reached = %s, want %s", res.Reached, tt.reached)
			}
			if fake.Calls[len(fake.Calls)-1] != tt.step {
				t.Errorf("calls continued past failure: %v", fake.Calls)
			}
		})
	}
}

func TestDeclareErrors(t *testing.T) {
	fake := &buildsystest.Fake{}
	_, err := Run(context.Background(), Config{
		Recipe:  cesiumutility.Recipe{},
		Options: map[string]string{"shared": "sometimes"},
		Build:   fake,
	})
	if !errors.Is(err, recipe.ErrOutOfDomain) {
		t.Errorf("bad override error = %v", err)
	}
	_, err = Run(context.Background(), Config{
		Recipe:  cesiumutility.Recipe{},
		Options: map[string]string{"lto": "True"},
		Build:   fake,
	})
	if !errors.Is(err, recipe.ErrUnknownOption) {
		t.Errorf("unknown override error = %v", err)
	}
	res, err := Run(context.Background(), Config{Recipe: badRecipe{}, Build: fake})
	if !errors.Is(err, recipe.ErrInvalidDeclaration) || res != nil {
		t.Errorf("malformed requirement: res=%v err=%v", res, err)
	}
	if len(fake.Calls) != 0 {
		t.Errorf("build system used despite declaration errors: %v", fake.Calls)
	}
	res, err = Run(context.Background(), Config{Recipe: cesiumutility.Recipe{}})
	if err == nil || res.Reached != OptionsResolved {
		t.Errorf("Run without a build system: res=%v err=%v", res, err)
	}
}

func TestLateBuildSystemBinding(t *testing.T) {
	d, err := Declare(Config{Recipe: cesiumutility.Recipe{}, Settings: recipe.Settings{OS: "Linux"}})
	if err != nil {
		t.Fatal(err)
	}
	o, err := d.ResolveOptions()
	if err != nil {
		t.Fatal(err)
	}
	id := o.PackageID()
	if id == "" || o.Ref() != "CesiumUtility/0.12.0@kring/dev" {
		t.Fatalf("id=%q ref=%q", id, o.Ref())
	}
	fake := &buildsystest.Fake{Libs: []string{"CesiumUtility"}}
	o.Bind(fake, "")
	g, err := o.Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	b, err := g.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	a, err := b.Package(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	res, err := a.Introspect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.PackageID != id {
		t.Errorf("PackageID = %q, want %q", res.PackageID, id)
	}
	if len(fake.Calls) != 6 {
		t.Errorf("calls = %v", fake.Calls)
	}
}

func TestResolveOptionsRejectsGrowth(t *testing.T) {
	d, err := Declare(Config{Recipe: growingRecipe{}, Build: &buildsystest.Fake{}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.ResolveOptions(); !errors.Is(err, ErrOptionsGrew) {
		t.Errorf("ResolveOptions() = %v, want ErrOptionsGrew", err)
	}
}

func TestHooksCannotMutateResolvedOptions(t *testing.T) {
	fake := &buildsystest.Fake{}
	res, err := Run(context.Background(), Config{Recipe: mutatingRecipe{}, Build: fake})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Options.Has("shared") {
		t.Error("a hook removed an option from the lifecycle's resolved set")
	}
}

func TestStepwiseExportsBeforeGenerate(t *testing.T) {
	recipeDir := writeTree(t, map[string]string{
		"CesiumUtility/CMakeLists.txt":       "project(CesiumUtility)",
		"CesiumUtility/include/Cesium/Uri.h": "#pragma once",
		"CesiumUtility/generated/Gen.h":      "",
		"CesiumUtility/src/Uri.cpp":          "",
		"CesiumUtility/test/TestUri.cpp":     "",
		"tools/cmake/cesium.cmake":           "# shared",
		"CesiumAsync/src/ShouldNotShip.cpp":  "",
	}, "CesiumUtility")
	exportDir := filepath.Join(t.TempDir(), "export")

	d, err := Declare(Config{
		Recipe:    cesiumutility.Recipe{},
		Build:     &buildsystest.Fake{},
		RecipeDir: recipeDir,
		ExportDir: exportDir,
	})
	if err != nil {
		t.Fatal(err)
	}
	o, err := d.ResolveOptions()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := o.Generate(context.Background()); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	src := SourceDir(recipeDir, exportDir)
	for _, f := range []string{"CMakeLists.txt", "include/Cesium/Uri.h", "src/Uri.cpp", "test/TestUri.cpp"} {
		if _, err := os.Stat(filepath.Join(src, f)); err != nil {
			t.Errorf("%s not exported: %v", f, err)
		}
	}
	if _, err := os.Stat(filepath.Join(exportDir, "tools", "cmake", "cesium.cmake")); err != nil {
		t.Errorf("shared cmake script not exported: %v", err)
	}
	if _, err := os.Stat(filepath.Join(exportDir, "CesiumAsync")); err == nil {
		t.Error("sibling library exported")
	}
}

type badRecipe struct{ cesiumutility.Recipe }

func (badRecipe) Declare() recipe.Declaration {
	d := cesiumutility.Recipe{}.Declare()
	d.Requires = append(d.Requires, "nlohmann_json")
	return d
}

type growingRecipe struct{ cesiumutility.Recipe }

func (growingRecipe) ConfigOptions(s recipe.Settings, opts *recipe.Options) *recipe.Options {
	_ = opts.Declare(recipe.BoolOption("lto", false))
	return opts
}

type mutatingRecipe struct{ cesiumutility.Recipe }

func (mutatingRecipe) Generate(ctx context.Context, c *recipe.Context) error {
	c.Options.Remove("shared")
	return nil
}

// Package cmake implements buildsys.BuildSystem on top of the cmake
// configure/build/install workflow.
package cmake

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cesiumgs/cesium-recipe/pkgs/buildsys"
	"github.com/cesiumgs/cesium-recipe/pkgs/mod/module"
	"github.com/qiniu/x/log"
)

// ToolchainFile is the name of the generated toolchain description.
const ToolchainFile = "conan_toolchain.cmake"

// Resolver locates the installed prefix of an upstream package.
type Resolver interface {
	Resolve(ctx context.Context, req module.Version) (prefix string, err error)
}

// Layout names the directories a CMake lifecycle works in.
type Layout struct {
	SourceDir     string // exported sources, holds CMakeLists.txt
	BuildDir      string // cmake binary dir
	GeneratorsDir string // toolchain and dependency manifests
	PackageDir    string // install prefix, the package layout root
}

type defineValue struct {
	value    string
	typeName string
}

// CMake drives CMake-based builds.
type CMake struct {
	layout    Layout
	resolver  Resolver
	bin       string
	generator string
	buildType string
	defines   map[string]defineValue
	env       map[string]string
	stdout    io.Writer
	stderr    io.Writer
}

var _ buildsys.BuildSystem = (*CMake)(nil)

// New returns a CMake working in layout. resolver may be nil when the
// recipe has no requirements.
func New(layout Layout, resolver Resolver) *CMake {
	return &CMake{
		layout:   layout,
		resolver: resolver,
		bin:      "cmake",
		defines:  make(map[string]defineValue),
		env:      make(map[string]string),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
}

// Layout returns the directories c works in.
func (c *CMake) Layout() Layout { return c.layout }

// Binary overrides the cmake executable.
func (c *CMake) Binary(path string) *CMake {
	c.bin = path
	return c
}

// Generator sets the CMake generator (e.g. "Ninja", "Unix Makefiles").
func (c *CMake) Generator(name string) *CMake {
	c.generator = name
	return c
}

// BuildType sets CMAKE_BUILD_TYPE and the --config of multi-config
// generators.
func (c *CMake) BuildType(name string) *CMake {
	c.buildType = name
	return c
}

// Define adds a -D<key>:STRING=<value> definition to Configure.
func (c *CMake) Define(key, value string) *CMake {
	c.defines[key] = defineValue{value: value, typeName: "STRING"}
	return c
}

// DefineBool adds a -D<key>:BOOL=ON/OFF definition to Configure.
func (c *CMake) DefineBool(key string, value bool) *CMake {
	c.defines[key] = defineValue{value: onOff(value), typeName: "BOOL"}
	return c
}

// Env sets an environment variable for every cmake invocation.
func (c *CMake) Env(key, value string) *CMake {
	c.env[key] = value
	return c
}

// Output redirects the output of cmake invocations.
func (c *CMake) Output(stdout, stderr io.Writer) *CMake {
	c.stdout, c.stderr = stdout, stderr
	return c
}

// ToolchainPath returns the path of the generated toolchain file.
func (c *CMake) ToolchainPath() string {
	return filepath.Join(c.layout.GeneratorsDir, ToolchainFile)
}

// Configure runs "cmake -S <source> -B <build>" against the generated
// toolchain.
func (c *CMake) Configure(ctx context.Context) error {
	if err := os.MkdirAll(c.layout.BuildDir, 0o755); err != nil {
		return err
	}
	args := []string{"-S", c.layout.SourceDir, "-B", c.layout.BuildDir}
	if c.generator != "" {
		args = append(args, "-G", c.generator)
	}
	if c.layout.PackageDir != "" {
		c.Define("CMAKE_INSTALL_PREFIX", filepath.ToSlash(c.layout.PackageDir))
	}
	if c.layout.GeneratorsDir != "" {
		c.Define("CMAKE_TOOLCHAIN_FILE", filepath.ToSlash(c.ToolchainPath()))
	}
	if c.buildType != "" {
		c.Define("CMAKE_BUILD_TYPE", c.buildType)
	}
	args = append(args, c.definesArgs()...)
	return c.run(ctx, args)
}

// Compile runs "cmake --build <build>".
func (c *CMake) Compile(ctx context.Context) error {
	args := []string{"--build", c.layout.BuildDir}
	if c.buildType != "" {
		args = append(args, "--config", c.buildType)
	}
	return c.run(ctx, args)
}

// Install runs "cmake --install <build> --prefix <package>".
func (c *CMake) Install(ctx context.Context) error {
	args := []string{"--install", c.layout.BuildDir}
	if c.buildType != "" {
		args = append(args, "--config", c.buildType)
	}
	if c.layout.PackageDir != "" {
		args = append(args, "--prefix", c.layout.PackageDir)
	}
	return c.run(ctx, args)
}

// ScanArtifacts collects the libraries staged under the package layout.
func (c *CMake) ScanArtifacts(ctx context.Context) ([]string, error) {
	return CollectLibs(c.layout.PackageDir)
}

func (c *CMake) run(ctx context.Context, args []string) error {
	log.Debugf("cmake: %s %s", c.bin, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, c.bin, args...)
	cmd.Stdout = c.stdout
	cmd.Stderr = c.stderr
	if len(c.env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), c.env)
	}
	return cmd.Run()
}

// definesArgs renders the definitions as -D flags ordered by name.
func (c *CMake) definesArgs() []string {
	var args []string
	for _, name := range slices.Sorted(maps.Keys(c.defines)) {
		d := c.defines[name]
		args = append(args, fmt.Sprintf("-D%s:%s=%s", name, d.typeName, d.value))
	}
	return args
}

// mergeEnv applies overrides to an environ list. Existing variables keep
// their position; new ones follow, sorted.
func mergeEnv(environ []string, overrides map[string]string) []string {
	out := make([]string, 0, len(environ)+len(overrides))
	applied := make(map[string]bool, len(overrides))
	for _, kv := range environ {
		name, _, _ := strings.Cut(kv, "=")
		if v, ok := overrides[name]; ok {
			if applied[name] {
				continue
			}
			applied[name] = true
			kv = name + "=" + v
		}
		out = append(out, kv)
	}
	for _, name := range slices.Sorted(maps.Keys(overrides)) {
		if !applied[name] {
			out = append(out, name+"="+overrides[name])
		}
	}
	return out
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

package cmake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cesiumgs/cesium-recipe/pkgs/buildsys"
	"github.com/cesiumgs/cesium-recipe/pkgs/mod/module"
	"github.com/qiniu/x/log"
)

const generatedHeader = "# Generated by cesium-recipe. Do not edit.\n"

// GenerateToolchain writes the toolchain description to
// <generators>/conan_toolchain.cmake. Every variable becomes a forced
// cache entry, in the order it was set.
func (c *CMake) GenerateToolchain(ctx context.Context, tc *buildsys.Toolchain) error {
	var buf bytes.Buffer
	buf.WriteString(generatedHeader)
	for _, name := range tc.Names() {
		v, _ := tc.Get(name)
		value := quote(v.Str)
		if v.Kind == buildsys.Bool {
			value = onOff(v.Bool)
		}
		fmt.Fprintf(&buf, "set(%s %s CACHE %s \"\" FORCE)\n", name, value, v.Kind)
	}
	gen := filepath.ToSlash(c.layout.GeneratorsDir)
	fmt.Fprintf(&buf, "list(PREPEND CMAKE_PREFIX_PATH %s)\n", quote(gen))
	fmt.Fprintf(&buf, "list(PREPEND CMAKE_MODULE_PATH %s)\n", quote(gen))
	return c.writeGenerated(ToolchainFile, buf.Bytes())
}

// GenerateDeps resolves every requirement and writes a
// <name>-config.cmake / <name>-config-version.cmake pair for each, so that
// find_package(<name> CONFIG) succeeds and <name>::<name> is linkable.
// A resolver error is returned as is.
func (c *CMake) GenerateDeps(ctx context.Context, requires []module.Version) error {
	if len(requires) > 0 && c.resolver == nil {
		return errors.New("cmake: requirements declared but no resolver configured")
	}
	for _, req := range requires {
		prefix, err := c.resolver.Resolve(ctx, req)
		if err != nil {
			return err
		}
		log.Debugf("cmake: %s resolved to %s", req, prefix)
		if err := c.writeDep(req, prefix); err != nil {
			return err
		}
	}
	return nil
}

func (c *CMake) writeDep(req module.Version, prefix string) error {
	libs, err := CollectLibs(prefix)
	if err != nil {
		return err
	}
	name := req.Path
	target := name + "::" + name
	inc := filepath.ToSlash(filepath.Join(prefix, "include"))
	lib := filepath.ToSlash(filepath.Join(prefix, "lib"))

	var buf bytes.Buffer
	buf.WriteString(generatedHeader)
	fmt.Fprintf(&buf, "set(%s_FOUND TRUE)\n", name)
	fmt.Fprintf(&buf, "set(%s_VERSION %s)\n", name, quote(req.Version))
	fmt.Fprintf(&buf, "set(%s_INCLUDE_DIRS %s)\n", name, quote(inc))
	fmt.Fprintf(&buf, "set(%s_LIB_DIRS %s)\n", name, quote(lib))
	fmt.Fprintf(&buf, "if(NOT TARGET %s)\n", target)
	fmt.Fprintf(&buf, "  add_library(%s INTERFACE IMPORTED)\n", target)
	fmt.Fprintf(&buf, "  set_target_properties(%s PROPERTIES\n", target)
	fmt.Fprintf(&buf, "    INTERFACE_INCLUDE_DIRECTORIES \"${%s_INCLUDE_DIRS}\"\n", name)
	if len(libs) > 0 {
		fmt.Fprintf(&buf, "    INTERFACE_LINK_DIRECTORIES \"${%s_LIB_DIRS}\"\n", name)
		fmt.Fprintf(&buf, "    INTERFACE_LINK_LIBRARIES %s\n", quote(strings.Join(libs, ";")))
	}
	buf.WriteString("  )\nendif()\n")
	if err := c.writeGenerated(name+"-config.cmake", buf.Bytes()); err != nil {
		return err
	}

	buf.Reset()
	buf.WriteString(generatedHeader)
	fmt.Fprintf(&buf, "set(PACKAGE_VERSION %s)\n", quote(req.Version))
	buf.WriteString("if(PACKAGE_FIND_VERSION AND NOT PACKAGE_FIND_VERSION VERSION_EQUAL PACKAGE_VERSION)\n")
	buf.WriteString("  set(PACKAGE_VERSION_COMPATIBLE FALSE)\nelse()\n")
	buf.WriteString("  set(PACKAGE_VERSION_COMPATIBLE TRUE)\n  set(PACKAGE_VERSION_EXACT TRUE)\nendif()\n")
	return c.writeGenerated(name+"-config-version.cmake", buf.Bytes())
}

var quoter = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`$`, `\$`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// quote renders s as a CMake quoted argument. Variable references are
// escaped, so s is taken literally.
func quote(s string) string {
	return `"` + quoter.Replace(s) + `"`
}

func (c *CMake) writeGenerated(name string, data []byte) error {
	if err := os.MkdirAll(c.layout.GeneratorsDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.layout.GeneratorsDir, name), data, 0o644)
}

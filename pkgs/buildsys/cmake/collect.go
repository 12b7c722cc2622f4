package cmake

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var libExts = []string{".so", ".lib", ".a", ".dylib", ".bc"}

// CollectLibs returns the logical names of the libraries in <root>/lib:
// "libfoo.a" and "libfoo.so" become "foo", "foo.lib" stays "foo". Names
// are de-duplicated and sorted. A missing lib directory yields no names.
func CollectLibs(root string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(root, "lib"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var libs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name, ok := libName(e.Name()); ok && !slices.Contains(libs, name) {
			libs = append(libs, name)
		}
	}
	slices.Sort(libs)
	return libs, nil
}

func libName(file string) (string, bool) {
	ext := filepath.Ext(file)
	if !slices.Contains(libExts, ext) {
		return "", false
	}
	name := strings.TrimSuffix(file, ext)
	if ext != ".lib" {
		name = strings.TrimPrefix(name, "lib")
	}
	return name, name != ""
}

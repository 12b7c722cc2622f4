package lifecycle

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeTree creates files under a temp dir and returns the path of sub.
func writeTree(t *testing.T, files map[string]string, sub string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return filepath.Join(root, sub)
}

func TestExport(t *testing.T) {
	recipeDir := writeTree(t, map[string]string{
		"lib/include/a/b/c.h": "c",
		"lib/src/x.cpp":       "x",
		"lib/src/x.txt":       "",
		"lib/CMakeLists.txt":  "",
		"tools/t.cmake":       "t",
	}, "lib")
	exportDir := t.TempDir()

	err := Export(recipeDir, exportDir, []string{"include/*", "src/*.cpp", "CMakeLists.txt", "../tools/t.cmake"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	for _, f := range []string{"lib/include/a/b/c.h", "lib/src/x.cpp", "lib/CMakeLists.txt", "tools/t.cmake"} {
		if _, err := os.Stat(filepath.Join(exportDir, filepath.FromSlash(f))); err != nil {
			t.Errorf("%s missing: %v", f, err)
		}
	}
	if _, err := os.Stat(filepath.Join(exportDir, "lib", "src", "x.txt")); err == nil {
		t.Error("src/x.txt exported by src/*.cpp")
	}
	data, err := os.ReadFile(filepath.Join(exportDir, "lib", "include", "a", "b", "c.h"))
	if err != nil || string(data) != "c" {
		t.Errorf("content = %q, %v", data, err)
	}
	if got, want := SourceDir(recipeDir, exportDir), filepath.Join(exportDir, "lib"); got != want {
		t.Errorf("SourceDir() = %q, want %q", got, want)
	}
}

func TestExportSymlinks(t *testing.T) {
	recipeDir := writeTree(t, map[string]string{
		"lib/src/Math.cpp":   "math",
		"shared/Link.cpp":    "linked",
		"lib/CMakeLists.txt": "",
	}, "lib")
	if err := os.Symlink(filepath.Join(filepath.Dir(recipeDir), "shared", "Link.cpp"), filepath.Join(recipeDir, "src", "Link.cpp")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	exportDir := t.TempDir()

	if err := Export(recipeDir, exportDir, []string{"src/*"}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	dst := filepath.Join(exportDir, "lib", "src", "Link.cpp")
	fi, err := os.Lstat(dst)
	if err != nil {
		t.Fatalf("symlinked source not staged: %v", err)
	}
	if !fi.Mode().IsRegular() {
		t.Errorf("%s mode = %v, want a regular file", dst, fi.Mode())
	}
	if data, _ := os.ReadFile(dst); string(data) != "linked" {
		t.Errorf("content = %q, want %q", data, "linked")
	}

	// A dangling link is an error, not a silent skip.
	if err := os.Symlink(filepath.Join(recipeDir, "missing.cpp"), filepath.Join(recipeDir, "src", "Gone.cpp")); err != nil {
		t.Fatal(err)
	}
	if err := Export(recipeDir, t.TempDir(), []string{"src/*"}); err == nil {
		t.Error("Export with a dangling symlink succeeded")
	}
}

func TestExportErrors(t *testing.T) {
	recipeDir := writeTree(t, map[string]string{"lib/src/x.cpp": ""}, "lib")

	tests := []struct {
		pattern string
		noMatch bool
	}{
		{"generated/*", true},
		{"src/*.h", true},
		{"../../outside", false},
		{"src/[", false},
	}
	for _, tt := range tests {
		err := Export(recipeDir, t.TempDir(), []string{tt.pattern})
		if err == nil {
			t.Errorf("Export(%q) succeeded", tt.pattern)
			continue
		}
		if errors.Is(err, ErrExportNoMatch) != tt.noMatch {
			t.Errorf("Export(%q) = %v, ErrExportNoMatch want %v", tt.pattern, err, tt.noMatch)
		}
	}
}

func TestGlobMatch(t *testing.T) {
	tests := []struct {
		pattern, name string
		want          bool
	}{
		{"lib/src/*", "lib/src/a/b.cpp", true},
		{"lib/src/*.cpp", "lib/src/a/b.cpp", true},
		{"lib/src/*.cpp", "lib/src/a/b.h", false},
		{"lib/CMakeLists.txt", "lib/CMakeLists.txt", true},
		{"lib/?.h", "lib/a.h", true},
		{"lib/include/*", "lib/src/a.h", false},
	}
	for _, tt := range tests {
		if got := globMatch(tt.pattern, tt.name); got != tt.want {
			t.Errorf("globMatch(%q, %q) = %v, want %v", tt.pattern, tt.name, got, tt.want)
		}
	}
	if got := staticPrefix("lib/include/*"); got != "lib/include" {
		t.Errorf("staticPrefix = %q", got)
	}
	if got := staticPrefix("lib/CMakeLists.txt"); got != "lib/CMakeLists.txt" {
		t.Errorf("staticPrefix = %q", got)
	}
}

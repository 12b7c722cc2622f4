package lifecycle

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrExportNoMatch is returned when an export pattern matches no file.
var ErrExportNoMatch = errors.New("export pattern matched nothing")

// SourceDir returns where the recipe directory lands inside exportDir.
// Exports are staged relative to the recipe directory's parent so that
// "../" entries keep their position next to it.
func SourceDir(recipeDir, exportDir string) string {
	return filepath.Join(exportDir, filepath.Base(filepath.Clean(recipeDir)))
}

// Export copies the files of recipeDir matching patterns into exportDir.
//
// Patterns are relative to recipeDir and use shell glob syntax where '*'
// also matches '/', so "src/*" ships the whole src tree. A pattern may
// step out to the parent directory ("../tools/x.cmake") but no further.
func Export(recipeDir, exportDir string, patterns []string) error {
	recipeDir = filepath.Clean(recipeDir)
	parent := filepath.Dir(recipeDir)
	base := filepath.Base(recipeDir)
	for _, pat := range patterns {
		full := path.Clean(path.Join(base, filepath.ToSlash(pat)))
		if full == ".." || strings.HasPrefix(full, "../") {
			return fmt.Errorf("export %q: escapes %s", pat, parent)
		}
		if _, err := path.Match(full, ""); err != nil {
			return fmt.Errorf("export %q: %w", pat, err)
		}
		n, err := exportPattern(parent, exportDir, full)
		if err != nil {
			return fmt.Errorf("export %q: %w", pat, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", ErrExportNoMatch, pat)
		}
	}
	return nil
}

func exportPattern(parent, exportDir, pat string) (n int, err error) {
	start := filepath.Join(parent, filepath.FromSlash(staticPrefix(pat)))
	if _, err := os.Stat(start); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	err = filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			fi, err := os.Stat(p)
			if err != nil {
				return fmt.Errorf("export %s: %w", p, err)
			}
			if !fi.Mode().IsRegular() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(parent, p)
		if err != nil {
			return err
		}
		if !globMatch(pat, filepath.ToSlash(rel)) {
			return nil
		}
		n++
		return copyFile(p, filepath.Join(exportDir, rel))
	})
	return n, err
}

// staticPrefix returns the leading directory of pat that holds no glob
// metacharacters.
func staticPrefix(pat string) string {
	i := strings.IndexAny(pat, `*?[\`)
	if i < 0 {
		return pat
	}
	return path.Dir(pat[:i])
}

// globMatch is path.Match with '/' treated as an ordinary character.
func globMatch(pattern, name string) bool {
	const sep = "\x1f"
	ok, _ := path.Match(strings.ReplaceAll(pattern, "/", sep), strings.ReplaceAll(name, "/", sep))
	return ok
}

func copyFile(src, dst string) error {
	fi, err := os.Stat(src)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, fi.Mode().Perm())
}

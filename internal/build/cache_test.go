package build

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestRecordAndLookup(t *testing.T) {
	w := NewWorkspace(t.TempDir())
	dirs, err := w.Dirs("CesiumUtility", "0.12.0", "abc")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(dirs.Package, 0o755); err != nil {
		t.Fatal(err)
	}

	if _, ok, err := w.Lookup("abc"); err != nil || ok {
		t.Fatalf("Lookup on empty workspace = %v, %v", ok, err)
	}

	now := time.Now().Truncate(time.Second)
	entry := &Entry{
		Ref:        "CesiumUtility/0.12.0@kring/dev",
		PackageDir: dirs.Package,
		Libs:       []string{"CesiumUtility"},
		BuildTime:  now,
	}
	if err := w.Record("abc", entry); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, ok, err := w.Lookup("abc")
	if err != nil || !ok {
		t.Fatalf("Lookup = %v, %v", ok, err)
	}
	if got.PackageDir != entry.PackageDir || !slices.Equal(got.Libs, entry.Libs) {
		t.Errorf("entry = %+v, want %+v", got, entry)
	}
	if !got.BuildTime.Equal(now) {
		t.Errorf("BuildTime = %v, want %v", got.BuildTime, now)
	}

	// stale entry
	if err := os.RemoveAll(dirs.Package); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := w.Lookup("abc"); ok {
		t.Error("Lookup returned an entry whose package dir is gone")
	}
}

func TestDirs(t *testing.T) {
	w := NewWorkspace("/ws")
	dirs, err := w.Dirs("CesiumUtility", "0.12.0", "id")
	if err != nil {
		t.Fatal(err)
	}
	root := filepath.Join("/ws", "CesiumUtility", "0.12.0", "id")
	if dirs.Root != root || dirs.Generators != filepath.Join(root, "build", "generators") || dirs.Package != filepath.Join(root, "package") {
		t.Errorf("Dirs() = %+v", dirs)
	}
	if _, err := w.Dirs("../escape", "1", "id"); err == nil {
		t.Error("Dirs accepted an escaping name")
	}
}

func TestCorruptCache(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, cacheFile), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := NewWorkspace(dir).Lookup("x"); err == nil {
		t.Error("Lookup on a corrupt cache should fail")
	}
}

func TestWorkspaceLock(t *testing.T) {
	w := NewWorkspace(filepath.Join(t.TempDir(), "ws"))
	unlock, err := w.Lock()
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	unlock()
	if _, err := os.Stat(filepath.Join(w.Dir(), lockFile)); err != nil {
		t.Errorf("lock file missing: %v", err)
	}
}

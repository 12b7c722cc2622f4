// Package build manages the workspace where lifecycles run and caches
// their results by package id.
package build

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cesiumgs/cesium-recipe/internal/lockfile"
	"github.com/cesiumgs/cesium-recipe/pkgs/mod/module"
)

// Workspace directory layout:
//
//	workspaceDir/
//	  .cache.json                      # build cache: maps package id → buildEntry
//	  .lock                            # serializes concurrent builds
//	  <escaped-name>/<version>/<id>/   # one lifecycle
//	    export/                        # staged sources
//	    build/                         # cmake binary dir
//	      generators/                  # toolchain and dependency manifests
//	    package/                       # package layout
//	      include/
//	      lib/
const (
	cacheFile = ".cache.json"
	lockFile  = ".lock"
)

// Entry contains metadata about a single successful build.
type Entry struct {
	Ref        string    `json:"ref"`
	PackageDir string    `json:"package_dir"`
	Libs       []string  `json:"libs"`
	BuildTime  time.Time `json:"build_time"`
}

// buildCache maps package ids to their build entries.
type buildCache struct {
	Cache map[string]*Entry `json:"cache"`
}

func (c *buildCache) get(id string) (*Entry, bool) {
	entry, ok := c.Cache[id]
	return entry, ok
}

func (c *buildCache) set(id string, entry *Entry) {
	if c.Cache == nil {
		c.Cache = make(map[string]*Entry)
	}
	c.Cache[id] = entry
}

// Dirs are the directories of one lifecycle.
type Dirs struct {
	Root       string
	Export     string
	Build      string
	Generators string
	Package    string
}

// Workspace is a directory holding lifecycles and their build cache.
type Workspace struct {
	dir string
}

// NewWorkspace returns the workspace at dir.
func NewWorkspace(dir string) *Workspace {
	return &Workspace{dir: dir}
}

// Dir returns the workspace root.
func (w *Workspace) Dir() string { return w.dir }

// Lock takes the workspace lock.
func (w *Workspace) Lock() (unlock func(), err error) {
	return lockfile.MutexAt(filepath.Join(w.dir, lockFile)).Lock()
}

// Dirs returns the directories used to build package id of name@version.
func (w *Workspace) Dirs(name, version, id string) (Dirs, error) {
	escaped, err := module.EscapePath(name)
	if err != nil {
		return Dirs{}, err
	}
	ver, err := module.EscapePath(version)
	if err != nil {
		return Dirs{}, err
	}
	root := filepath.Join(w.dir, escaped, ver, id)
	return Dirs{
		Root:       root,
		Export:     filepath.Join(root, "export"),
		Build:      filepath.Join(root, "build"),
		Generators: filepath.Join(root, "build", "generators"),
		Package:    filepath.Join(root, "package"),
	}, nil
}

// Lookup returns the cached build of id. A cache entry whose package
// directory has disappeared is treated as absent.
func (w *Workspace) Lookup(id string) (*Entry, bool, error) {
	cache, err := w.loadCache()
	if err != nil {
		return nil, false, err
	}
	entry, ok := cache.get(id)
	if !ok {
		return nil, false, nil
	}
	if _, err := os.Stat(entry.PackageDir); err != nil {
		return nil, false, nil
	}
	return entry, true, nil
}

// Record stores a successful build of id.
func (w *Workspace) Record(id string, entry *Entry) error {
	cache, err := w.loadCache()
	if err != nil {
		return err
	}
	cache.set(id, entry)
	return w.saveCache(cache)
}

// loadCache reads the cache file; a missing file is an empty cache.
func (w *Workspace) loadCache() (*buildCache, error) {
	data, err := os.ReadFile(filepath.Join(w.dir, cacheFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &buildCache{}, nil
		}
		return nil, err
	}
	var cache buildCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, err
	}
	return &cache, nil
}

func (w *Workspace) saveCache(cache *buildCache) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(w.dir, cacheFile), data, 0o644)
}

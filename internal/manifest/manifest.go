// Package manifest reads and writes the package manifest that records how
// a package layout was produced and which libraries it exposes.
package manifest

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cesiumgs/cesium-recipe/internal/lifecycle"
	"github.com/cesiumgs/cesium-recipe/recipe"
	"github.com/pelletier/go-toml/v2"
)

// FileName is the manifest file at the root of a package layout.
const FileName = "conaninfo.toml"

// Manifest describes an assembled package.
type Manifest struct {
	Reference   string            `toml:"reference"`
	PackageID   string            `toml:"package_id"`
	License     string            `toml:"license,omitempty"`
	Created     time.Time         `toml:"created"`
	Settings    recipe.Settings   `toml:"settings"`
	Options     map[string]string `toml:"options"`
	Requires    []string          `toml:"requires"`
	Libs        []string          `toml:"libs"`
	IncludeDirs []string          `toml:"include_dirs,omitempty"`
	LibDirs     []string          `toml:"lib_dirs,omitempty"`
}

// FromResult builds the manifest of an introspected lifecycle.
func FromResult(res *lifecycle.Result, packageID string) *Manifest {
	m := &Manifest{
		Reference: res.Ref,
		PackageID: packageID,
		License:   res.Identity.License,
		Created:   time.Now().UTC().Truncate(time.Second),
		Settings:  res.Settings,
		Options:   map[string]string{},
		Requires:  []string{},
		Libs:      []string{},
	}
	if res.Options != nil {
		m.Options = res.Options.Values()
	}
	for _, r := range res.Requires {
		m.Requires = append(m.Requires, r.String())
	}
	if res.Info != nil {
		m.Libs = append(m.Libs, res.Info.Libs...)
		m.IncludeDirs = res.Info.IncludeDirs
		m.LibDirs = res.Info.LibDirs
	}
	return m
}

// Marshal renders m as TOML.
func (m *Manifest) Marshal() ([]byte, error) {
	return toml.Marshal(m)
}

// Write stores m in dir.
func Write(dir string, m *Manifest) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, FileName), data, 0o644)
}

// Read loads the manifest stored in dir.
func Read(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

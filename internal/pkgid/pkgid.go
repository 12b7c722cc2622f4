// Package pkgid computes package identifiers: the hash of everything that
// makes one binary package differ from another built from the same recipe.
package pkgid

import (
	"crypto/sha1"
	"encoding/hex"
	"io"
	"maps"
	"slices"

	"github.com/cesiumgs/cesium-recipe/pkgs/mod/module"
	"github.com/cesiumgs/cesium-recipe/recipe"
)

// Compute returns the package id of ref built with settings, the resolved
// option values and requires. The result does not depend on map order.
func Compute(ref string, settings recipe.Settings, options map[string]string, requires []module.Version) string {
	h := sha1.New()
	io.WriteString(h, ref+"\n[settings]\n")
	for _, axis := range recipe.Axes() {
		if v, ok := settings.Get(axis); ok {
			io.WriteString(h, axis+"="+v+"\n")
		}
	}
	io.WriteString(h, "[options]\n")
	for _, k := range slices.Sorted(maps.Keys(options)) {
		io.WriteString(h, k+"="+options[k]+"\n")
	}
	io.WriteString(h, "[requires]\n")
	for _, r := range requires {
		io.WriteString(h, r.String()+"\n")
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Package env locates the workspace and the package store and loads build
// profiles.
package env

import (
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/cesiumgs/cesium-recipe/recipe"
)

const appName = "cesium-recipe"

// WorkDir returns the default workspace, where exports, build trees and
// package layouts are created.
//
//	Linux:   $XDG_CACHE_HOME/cesium-recipe
//	macOS:   ~/Library/Caches/cesium-recipe
func WorkDir() string {
	return filepath.Join(xdg.CacheHome, appName)
}

// StoreDir returns the default package store that requirements resolve
// against.
//
//	Linux:   $XDG_DATA_HOME/cesium-recipe/packages
//	macOS:   ~/Library/Application Support/cesium-recipe/packages
func StoreDir() string {
	return filepath.Join(xdg.DataHome, appName, "packages")
}

var goosNames = map[string]string{
	"linux":   "Linux",
	"windows": "Windows",
	"darwin":  "Macos",
	"freebsd": "FreeBSD",
	"android": "Android",
	"ios":     "iOS",
}

var goarchNames = map[string]string{
	"amd64": "x86_64",
	"386":   "x86",
	"arm64": "armv8",
	"arm":   "armv7",
}

// DefaultSettings returns the settings of the host.
func DefaultSettings() recipe.Settings {
	s := recipe.Settings{
		OS:        goosNames[runtime.GOOS],
		Arch:      goarchNames[runtime.GOARCH],
		BuildType: "Release",
		Compiler:  "gcc",
	}
	switch runtime.GOOS {
	case "windows":
		s.Compiler = "msvc"
	case "darwin", "ios":
		s.Compiler = "apple-clang"
	}
	return s
}

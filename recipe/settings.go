package recipe

import "fmt"

// Settings axes.
const (
	AxisOS        = "os"
	AxisCompiler  = "compiler"
	AxisBuildType = "build_type"
	AxisArch      = "arch"
)

// Settings is the snapshot of platform/toolchain axes a package is built
// for. It is supplied by the driver and read-only to recipes. An empty
// field means the axis is unset.
type Settings struct {
	OS        string `mapstructure:"os" toml:"os,omitempty"`
	Compiler  string `mapstructure:"compiler" toml:"compiler,omitempty"`
	BuildType string `mapstructure:"build_type" toml:"build_type,omitempty"`
	Arch      string `mapstructure:"arch" toml:"arch,omitempty"`
}

// Axes returns the known settings axes in canonical order.
func Axes() []string {
	return []string{AxisOS, AxisCompiler, AxisBuildType, AxisArch}
}

// Get returns the value of axis and whether it is set.
func (s Settings) Get(axis string) (string, bool) {
	var v string
	switch axis {
	case AxisOS:
		v = s.OS
	case AxisCompiler:
		v = s.Compiler
	case AxisBuildType:
		v = s.BuildType
	case AxisArch:
		v = s.Arch
	}
	return v, v != ""
}

// Set assigns axis. Unknown axes are rejected.
func (s *Settings) Set(axis, value string) error {
	switch axis {
	case AxisOS:
		s.OS = value
	case AxisCompiler:
		s.Compiler = value
	case AxisBuildType:
		s.BuildType = value
	case AxisArch:
		s.Arch = value
	default:
		return fmt.Errorf("unknown settings axis %q", axis)
	}
	return nil
}

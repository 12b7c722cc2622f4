package env

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/cesiumgs/cesium-recipe/recipe"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. CESIUM_RECIPE_SETTINGS_OS.
const EnvPrefix = "CESIUM_RECIPE"

// Profile is a set of settings and option values plus workspace locations.
type Profile struct {
	Settings  recipe.Settings   `mapstructure:"settings"`
	Options   map[string]string `mapstructure:"-"`
	Workspace string            `mapstructure:"workspace"`
	Store     string            `mapstructure:"store"`
}

// LoadProfile reads a TOML profile:
//
//	workspace = "/tmp/ws"
//	[settings]
//	os = "Linux"
//	build_type = "Release"
//	[options]
//	shared = true
//
// Missing values fall back to the host defaults. Environment variables
// prefixed with CESIUM_RECIPE_ override settings and locations. An empty
// path loads defaults and environment only.
func LoadProfile(path string) (*Profile, error) {
	v := viper.New()
	def := DefaultSettings()
	v.SetDefault("settings.os", def.OS)
	v.SetDefault("settings.compiler", def.Compiler)
	v.SetDefault("settings.build_type", def.BuildType)
	v.SetDefault("settings.arch", def.Arch)
	v.SetDefault("workspace", WorkDir())
	v.SetDefault("store", StoreDir())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
		}
	}

	var p Profile
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	p.Options = make(map[string]string)
	for k, val := range v.GetStringMap("options") {
		p.Options[k] = fmt.Sprint(val)
	}
	return &p, nil
}

// CanonicalOptions maps option names to their declared spelling. Profile
// keys come back lower-cased, so "fpic" must become "fPIC". Unknown names
// are kept as given so that the lifecycle reports them.
func CanonicalOptions(in map[string]string, declared []string) map[string]string {
	out := make(map[string]string, len(in))
	for _, k := range slices.Sorted(maps.Keys(in)) {
		name := k
		for _, d := range declared {
			if strings.EqualFold(d, k) {
				name = d
				break
			}
		}
		out[name] = in[k]
	}
	return out
}

// ParseAssignments parses "key=value" pairs as given on the command line.
func ParseAssignments(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, val, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid assignment %q, want key=value", p)
		}
		out[k] = strings.TrimSpace(val)
	}
	return out, nil
}

// Apply overrides settings with "axis=value" assignments.
func (p *Profile) Apply(settings map[string]string) error {
	for _, k := range slices.Sorted(maps.Keys(settings)) {
		if err := p.Settings.Set(k, settings[k]); err != nil {
			return err
		}
	}
	return nil
}

package internal

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/cesiumgs/cesium-recipe/internal/env"
	"github.com/cesiumgs/cesium-recipe/recipe"
	"github.com/cesiumgs/cesium-recipe/recipe/cesiumutility"
)

var recipes = map[string]recipe.Recipe{
	"CesiumUtility": cesiumutility.Recipe{},
}

func lookupRecipe(name string) (recipe.Recipe, error) {
	for k, r := range recipes {
		if strings.EqualFold(k, name) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("unknown recipe %q (available: %s)",
		name, strings.Join(slices.Sorted(maps.Keys(recipes)), ", "))
}

// loadProfile merges the profile file with -s and -o flags. Options come
// back in the spelling r declares them.
func loadProfile(r recipe.Recipe) (*env.Profile, map[string]string, error) {
	profile, err := env.LoadProfile(profilePath)
	if err != nil {
		return nil, nil, err
	}
	settings, err := env.ParseAssignments(settingArgs)
	if err != nil {
		return nil, nil, err
	}
	if err := profile.Apply(settings); err != nil {
		return nil, nil, err
	}
	options, err := env.ParseAssignments(optionArgs)
	if err != nil {
		return nil, nil, err
	}
	declared := r.Declare().Options.Keys()
	merged := env.CanonicalOptions(profile.Options, declared)
	maps.Copy(merged, env.CanonicalOptions(options, declared))
	return profile, merged, nil
}

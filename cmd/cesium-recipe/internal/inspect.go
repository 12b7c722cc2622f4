package internal

import (
	"fmt"

	"github.com/cesiumgs/cesium-recipe/internal/lifecycle"
	"github.com/cesiumgs/cesium-recipe/recipe"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [recipe]",
	Short: "Show a recipe's declaration and resolved options",
	Long: `Inspect prints the static declaration of a recipe together with the
options resolved for the active settings, without building anything.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

type inspectOption struct {
	Domain  []string `toml:"domain"`
	Default string   `toml:"default"`
}

type inspectOutput struct {
	Reference       string                   `toml:"reference"`
	PackageID       string                   `toml:"package_id"`
	License         string                   `toml:"license"`
	Author          string                   `toml:"author"`
	URL             string                   `toml:"url"`
	Description     string                   `toml:"description"`
	Settings        recipe.Settings          `toml:"settings"`
	Requires        []string                 `toml:"requires"`
	Exports         []string                 `toml:"exports"`
	DeclaredOptions map[string]inspectOption `toml:"declared_options"`
	Options         map[string]string        `toml:"options"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	r, err := lookupRecipe(args[0])
	if err != nil {
		return err
	}
	profile, options, err := loadProfile(r)
	if err != nil {
		return err
	}
	declared, err := lifecycle.Declare(lifecycle.Config{
		Recipe:   r,
		Settings: profile.Settings,
		Options:  options,
	})
	if err != nil {
		return err
	}
	resolved, err := declared.ResolveOptions()
	if err != nil {
		return err
	}

	decl := declared.Declaration()
	out := inspectOutput{
		Reference:       resolved.Ref(),
		PackageID:       resolved.PackageID(),
		License:         decl.Identity.License,
		Author:          decl.Identity.Author,
		URL:             decl.Identity.URL,
		Description:     decl.Identity.Description,
		Settings:        profile.Settings,
		Requires:        decl.Requires,
		Exports:         decl.Exports,
		DeclaredOptions: make(map[string]inspectOption),
		Options:         resolved.Options().Values(),
	}
	for _, k := range decl.Options.Keys() {
		opt, _ := decl.Options.Schema(k)
		out.DeclaredOptions[k] = inspectOption{Domain: opt.Domain, Default: opt.Default}
	}
	data, err := toml.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to render declaration: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

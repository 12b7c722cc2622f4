// Package lifecycle drives a recipe through its phases:
//
//	Declared → OptionsResolved → Generated → Built → Assembled → Introspected
//
// Each phase is a method on the value produced by the previous one, so
// phases cannot run out of order. The lifecycle is strictly sequential; a
// failing phase returns the delegated error unmodified and nothing after
// it runs.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/cesiumgs/cesium-recipe/internal/pkgid"
	"github.com/cesiumgs/cesium-recipe/pkgs/buildsys"
	"github.com/cesiumgs/cesium-recipe/pkgs/mod/module"
	"github.com/cesiumgs/cesium-recipe/recipe"
	"github.com/qiniu/x/log"
)

// ErrOptionsGrew is returned when a recipe's ConfigOptions adds options.
var ErrOptionsGrew = errors.New("option resolution added options")

// State is a lifecycle state.
type State int

const (
	Declared State = iota
	OptionsResolved
	Generated
	Built
	Assembled
	Introspected
)

var stateNames = [...]string{
	Declared:        "declared",
	OptionsResolved: "options-resolved",
	Generated:       "generated",
	Built:           "built",
	Assembled:       "assembled",
	Introspected:    "introspected",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Config is the input of one lifecycle.
type Config struct {
	Recipe   recipe.Recipe
	Settings recipe.Settings
	Options  map[string]string    // overrides of declared defaults
	Build    buildsys.BuildSystem // may be bound later, see ResolvedRecipe.Bind

	// RecipeDir and ExportDir enable export staging before generation.
	// Sources are staged to SourceDir(RecipeDir, ExportDir).
	RecipeDir string
	ExportDir string
}

// run is the state shared by every phase value.
type run struct {
	cfg      Config
	decl     recipe.Declaration
	requires []module.Version
	options  *recipe.Options // declared, overrides applied
	resolved *recipe.Options // set once options are resolved
}

func (r *run) ref() string { return r.decl.Identity.Ref() }

func (r *run) packageID() string {
	return pkgid.Compute(r.ref(), r.cfg.Settings, r.resolved.Values(), r.requires)
}

func (r *run) enter(s State) {
	log.Infof("%s: %s", r.ref(), s)
}

// context hands hooks copies, so they cannot alter the lifecycle's state.
func (r *run) context() *recipe.Context {
	return &recipe.Context{
		Settings: r.cfg.Settings,
		Options:  r.resolved.Clone(),
		Requires: slices.Clone(r.requires),
		Build:    r.cfg.Build,
	}
}

// DeclaredRecipe is a recipe whose declaration has been loaded and
// validated.
type DeclaredRecipe struct{ r *run }

// Declare loads and validates the recipe declaration and applies option
// overrides. Declaration errors are fatal.
func Declare(cfg Config) (*DeclaredRecipe, error) {
	if cfg.Recipe == nil {
		return nil, errors.New("lifecycle: no recipe")
	}
	decl := cfg.Recipe.Declare()
	if err := decl.Validate(); err != nil {
		return nil, err
	}
	reqs, err := decl.Requirements()
	if err != nil {
		return nil, err
	}
	opts := decl.Options.Clone()
	for _, k := range slices.Sorted(maps.Keys(cfg.Options)) {
		if err := opts.Set(k, cfg.Options[k]); err != nil {
			return nil, fmt.Errorf("%s: %w", decl.Identity.Ref(), err)
		}
	}
	r := &run{cfg: cfg, decl: decl, requires: reqs, options: opts}
	r.enter(Declared)
	return &DeclaredRecipe{r}, nil
}

// Declaration returns the static metadata.
func (d *DeclaredRecipe) Declaration() recipe.Declaration { return d.r.decl }

// Options returns a copy of the declared options with overrides applied.
func (d *DeclaredRecipe) Options() *recipe.Options { return d.r.options.Clone() }

// Requires returns the parsed requirements.
func (d *DeclaredRecipe) Requires() []module.Version { return slices.Clone(d.r.requires) }

// ResolveOptions runs the recipe's ConfigOptions hook.
func (d *DeclaredRecipe) ResolveOptions() (*ResolvedRecipe, error) {
	r := d.r
	resolved := r.cfg.Recipe.ConfigOptions(r.cfg.Settings, r.options.Clone())
	if resolved == nil || !resolved.SubsetOf(r.options) {
		return nil, fmt.Errorf("%s: %w", r.ref(), ErrOptionsGrew)
	}
	r.resolved = resolved
	r.enter(OptionsResolved)
	return &ResolvedRecipe{r}, nil
}

// ResolvedRecipe has its options resolved; they are frozen from here on.
type ResolvedRecipe struct{ r *run }

// Options returns a copy of the resolved options.
func (o *ResolvedRecipe) Options() *recipe.Options { return o.r.resolved.Clone() }

// Ref returns the package reference.
func (o *ResolvedRecipe) Ref() string { return o.r.ref() }

// PackageID identifies the binary package this lifecycle produces.
func (o *ResolvedRecipe) PackageID() string { return o.r.packageID() }

// Bind sets the build system and export directory used by the remaining
// phases. It lets drivers lay out build directories by package id.
func (o *ResolvedRecipe) Bind(bs buildsys.BuildSystem, exportDir string) {
	o.r.cfg.Build = bs
	o.r.cfg.ExportDir = exportDir
}

// Generate stages exported sources, then runs the Generate hook.
func (o *ResolvedRecipe) Generate(ctx context.Context) (*GeneratedRecipe, error) {
	r := o.r
	if r.cfg.Build == nil {
		return nil, errors.New("lifecycle: no build system")
	}
	if r.cfg.RecipeDir != "" && r.cfg.ExportDir != "" {
		if err := Export(r.cfg.RecipeDir, r.cfg.ExportDir, r.decl.Exports); err != nil {
			return nil, err
		}
	}
	if err := r.cfg.Recipe.Generate(ctx, r.context()); err != nil {
		return nil, err
	}
	r.enter(Generated)
	return &GeneratedRecipe{r}, nil
}

// GeneratedRecipe has its toolchain and dependency manifest on disk.
type GeneratedRecipe struct{ r *run }

// Build runs the Build hook.
func (g *GeneratedRecipe) Build(ctx context.Context) (*BuiltRecipe, error) {
	r := g.r
	if err := r.cfg.Recipe.Build(ctx, r.context()); err != nil {
		return nil, err
	}
	r.enter(Built)
	return &BuiltRecipe{r}, nil
}

// BuiltRecipe has been compiled.
type BuiltRecipe struct{ r *run }

// Package runs the Package hook.
func (b *BuiltRecipe) Package(ctx context.Context) (*AssembledRecipe, error) {
	r := b.r
	if err := r.cfg.Recipe.Package(ctx, r.context()); err != nil {
		return nil, err
	}
	r.enter(Assembled)
	return &AssembledRecipe{r}, nil
}

// AssembledRecipe has its package layout populated.
type AssembledRecipe struct{ r *run }

// Introspect runs the PackageInfo hook.
func (a *AssembledRecipe) Introspect(ctx context.Context) (*Result, error) {
	r := a.r
	info, err := r.cfg.Recipe.PackageInfo(ctx, r.context())
	if err != nil {
		return nil, err
	}
	if info == nil {
		info = &recipe.CppInfo{}
	}
	r.enter(Introspected)
	log.Infof("%s: libs %v", r.ref(), info.Libs)
	res := newResult(r, Introspected)
	res.Info = info
	return res, nil
}

// Result describes how far a lifecycle got.
type Result struct {
	Reached   State // last state entered
	Ref       string
	PackageID string // set once options are resolved
	Identity  recipe.Identity
	Settings  recipe.Settings
	Options   *recipe.Options // resolved options, nil before OptionsResolved
	Requires  []module.Version
	Info      *recipe.CppInfo // set once Introspected
}

func newResult(r *run, s State) *Result {
	res := &Result{
		Reached:  s,
		Ref:      r.ref(),
		Identity: r.decl.Identity,
		Settings: r.cfg.Settings,
		Requires: slices.Clone(r.requires),
	}
	if r.resolved != nil {
		res.Options = r.resolved.Clone()
		res.PackageID = r.packageID()
	}
	return res
}

// Run executes every phase in order. On failure it returns the error of
// the failing phase unmodified, along with a Result recording the last
// state reached; a nil Result means the declaration itself was invalid.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	d, err := Declare(cfg)
	if err != nil {
		return nil, err
	}
	o, err := d.ResolveOptions()
	if err != nil {
		return newResult(d.r, Declared), err
	}
	g, err := o.Generate(ctx)
	if err != nil {
		return newResult(o.r, OptionsResolved), err
	}
	b, err := g.Build(ctx)
	if err != nil {
		return newResult(g.r, Generated), err
	}
	a, err := b.Package(ctx)
	if err != nil {
		return newResult(b.r, Built), err
	}
	res, err := a.Introspect(ctx)
	if err != nil {
		return newResult(a.r, Assembled), err
	}
	return res, nil
}

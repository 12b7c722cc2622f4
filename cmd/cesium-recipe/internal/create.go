package internal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cesiumgs/cesium-recipe/internal/build"
	"github.com/cesiumgs/cesium-recipe/internal/lifecycle"
	"github.com/cesiumgs/cesium-recipe/internal/manifest"
	"github.com/cesiumgs/cesium-recipe/internal/resolve"
	"github.com/cesiumgs/cesium-recipe/pkgs/buildsys/cmake"
	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"
)

var (
	createForce     bool
	createWorkspace string
	createStore     string
	createGenerator string
	createCMake     string
)

var createCmd = &cobra.Command{
	Use:   "create [recipe] [recipe-dir]",
	Short: "Build and package a recipe",
	Long: `Create runs the full lifecycle of a recipe: it resolves options, stages the
exported sources of recipe-dir, generates the CMake toolchain and dependency
files, then configures, builds, installs and introspects the package.

recipe-dir defaults to the current directory.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().BoolVarP(&createForce, "force", "f", false, "Rebuild even if the package is cached")
	createCmd.Flags().StringVar(&createWorkspace, "workspace", "", "Workspace directory (overrides profile)")
	createCmd.Flags().StringVar(&createStore, "store", "", "Package store holding requirements (overrides profile)")
	createCmd.Flags().StringVarP(&createGenerator, "generator", "G", "", "CMake generator")
	createCmd.Flags().StringVar(&createCMake, "cmake", "cmake", "CMake executable")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	r, err := lookupRecipe(args[0])
	if err != nil {
		return err
	}
	recipeDir := "."
	if len(args) > 1 {
		recipeDir = args[1]
	}
	recipeDir, err = filepath.Abs(recipeDir)
	if err != nil {
		return fmt.Errorf("failed to resolve recipe dir: %w", err)
	}

	profile, options, err := loadProfile(r)
	if err != nil {
		return err
	}
	if createWorkspace != "" {
		profile.Workspace = createWorkspace
	}
	if createStore != "" {
		profile.Store = createStore
	}

	declared, err := lifecycle.Declare(lifecycle.Config{
		Recipe:    r,
		Settings:  profile.Settings,
		Options:   options,
		RecipeDir: recipeDir,
	})
	if err != nil {
		return err
	}
	resolved, err := declared.ResolveOptions()
	if err != nil {
		return err
	}
	id := resolved.PackageID()
	identity := declared.Declaration().Identity

	ws := build.NewWorkspace(profile.Workspace)
	unlock, err := ws.Lock()
	if err != nil {
		return fmt.Errorf("failed to lock workspace: %w", err)
	}
	defer unlock()

	out := cmd.OutOrStdout()
	if !createForce {
		entry, ok, err := ws.Lookup(id)
		if err != nil {
			return fmt.Errorf("failed to read build cache: %w", err)
		}
		if ok {
			log.Infof("%s: package %s is cached", resolved.Ref(), id)
			printEntry(out, resolved.Ref(), id, entry)
			return nil
		}
	}

	dirs, err := ws.Dirs(identity.Name, identity.Version, id)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dirs.Root); err != nil {
		return fmt.Errorf("failed to clean %s: %w", dirs.Root, err)
	}

	// Tool output is kept quiet unless verbose, and replayed on failure.
	var toolOut bytes.Buffer
	stdout, stderr := io.Writer(&toolOut), io.Writer(&toolOut)
	if verbose {
		stdout, stderr = cmd.OutOrStdout(), cmd.ErrOrStderr()
	}
	bs := cmake.New(cmake.Layout{
		SourceDir:     lifecycle.SourceDir(recipeDir, dirs.Export),
		BuildDir:      dirs.Build,
		GeneratorsDir: dirs.Generators,
		PackageDir:    dirs.Package,
	}, resolve.New(profile.Store)).
		Binary(createCMake).
		Generator(createGenerator).
		BuildType(profile.Settings.BuildType).
		Output(stdout, stderr)
	resolved.Bind(bs, dirs.Export)

	res, err := assemble(cmd.Context(), resolved)
	if err != nil {
		if toolOut.Len() > 0 {
			if _, werr := cmd.ErrOrStderr().Write(toolOut.Bytes()); werr != nil {
				log.Warnf("failed to replay build output: %v", werr)
			}
		}
		return fmt.Errorf("failed to create %s: %w", resolved.Ref(), err)
	}

	if err := manifest.Write(dirs.Package, manifest.FromResult(res, id)); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	entry := &build.Entry{
		Ref:        res.Ref,
		PackageDir: dirs.Package,
		Libs:       res.Info.Libs,
		BuildTime:  time.Now().UTC(),
	}
	if err := ws.Record(id, entry); err != nil {
		return fmt.Errorf("failed to record build: %w", err)
	}
	printEntry(out, res.Ref, id, entry)
	return nil
}

// assemble runs the phases after option resolution.
func assemble(ctx context.Context, o *lifecycle.ResolvedRecipe) (*lifecycle.Result, error) {
	g, err := o.Generate(ctx)
	if err != nil {
		return nil, err
	}
	b, err := g.Build(ctx)
	if err != nil {
		return nil, err
	}
	a, err := b.Package(ctx)
	if err != nil {
		return nil, err
	}
	return a.Introspect(ctx)
}

func printEntry(w io.Writer, ref, id string, e *build.Entry) {
	fmt.Fprintf(w, "%s\n", ref)
	fmt.Fprintf(w, "  package id:  %s\n", id)
	fmt.Fprintf(w, "  package dir: %s\n", e.PackageDir)
	fmt.Fprintf(w, "  libs:        %v\n", e.Libs)
}

package internal

import (
	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"
)

// Version is the tool version, overridden with -ldflags "-X".
var Version = "devel"

var (
	verbose     bool
	profilePath string
	settingArgs []string
	optionArgs  []string
)

var rootCmd = &cobra.Command{
	Use:   "cesium-recipe",
	Short: "cesium-recipe builds the CesiumUtility package",
	Long: `cesium-recipe drives the CesiumUtility package recipe through its lifecycle:
option resolution, toolchain and dependency generation, build, packaging and
introspection of the produced libraries.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetOutputLevel(log.Ldebug)
		} else {
			log.SetOutputLevel(log.Linfo)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&profilePath, "profile", "p", "", "Profile file (TOML)")
	rootCmd.PersistentFlags().StringArrayVarP(&settingArgs, "setting", "s", nil, "Override a setting, e.g. -s os=Windows")
	rootCmd.PersistentFlags().StringArrayVarP(&optionArgs, "option", "o", nil, "Override an option, e.g. -o shared=True")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal(err)
	}
}

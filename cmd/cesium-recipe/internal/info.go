package internal

import (
	"fmt"

	"github.com/cesiumgs/cesium-recipe/internal/manifest"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [package-dir]",
	Short: "Show the manifest of a built package",
	Long:  `Info prints the manifest written into a package directory by create.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	m, err := manifest.Read(args[0])
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

package commands

import (
	"path/filepath"

	"github.com/dyluth/coursecat/internal/printer"
	"github.com/dyluth/coursecat/internal/scaffold"
	"github.com/spf13/cobra"
)

var (
	initForce bool
	initDir   string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter coursecat.yml and sample plans.yml",
	Long: `Write a starter coursecat.yml and a sample plans.yml seed file.

The generated files are loaded back before the command returns, so a
successful init always leaves a configuration serve and seed accept.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
	initCmd.Flags().StringVar(&initDir, "dir", ".", "Directory to write into")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if err := scaffold.Initialize(initDir, initForce); err != nil {
		return printer.Error("init failed", err.Error(), nil)
	}

	printer.Success("Initialized coursecat project in %s\n", initDir)
	printer.Info("\nCreated:\n  %s\n  %s\n", filepath.Join(initDir, scaffold.ConfigFile), filepath.Join(initDir, scaffold.PlansFile))
	printer.Info("\nNext steps:\n  1. coursecat seed -c %s --file %s\n  2. coursecat serve -c %s\n",
		filepath.Join(initDir, scaffold.ConfigFile), filepath.Join(initDir, scaffold.PlansFile), filepath.Join(initDir, scaffold.ConfigFile))
	return nil
}

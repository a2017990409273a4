package commands

import (
	"fmt"
	"os"

	"github.com/dyluth/coursecat/internal/config"
	"github.com/dyluth/coursecat/internal/printer"
	"github.com/spf13/cobra"
)

var configPath string

// lookupEnv is os.LookupEnv, replaced in tests.
var lookupEnv = os.LookupEnv

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "coursecat",
	Short: "coursecat - read-only course catalog service",
	Long: `coursecat serves an academic course catalog over HTTP.

Year documents group courses into four academic-year slots. The service lists
them as stored, as a flat list sorted by description, or filtered by program
tags. Documents live in Redis, MongoDB or SQLite.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to coursecat.yml (default: $COURSECAT_CONFIG, then built-in defaults)")
}

// loadConfig resolves the configuration from --config or COURSECAT_CONFIG,
// then applies environment overrides.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path, _ = lookupEnv("COURSECAT_CONFIG")
	}

	cfg, err := config.Resolve(path, lookupEnv)
	if err != nil {
		details := map[string]string{}
		if path != "" {
			details["Config"] = path
		}
		return nil, printer.ErrorWithContext(
			"invalid configuration",
			err.Error(),
			details,
			[]string{"Generate a commented starter config:\n  coursecat init"},
		)
	}
	return cfg, nil
}

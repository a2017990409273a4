package commands

import (
	"context"
	"fmt"

	"github.com/dyluth/coursecat/internal/printer"
	"github.com/dyluth/coursecat/internal/seed"
	"github.com/spf13/cobra"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load year documents from a YAML or JSON file",
	Long: `Load year documents from a YAML or JSON file into the configured store.

The file holds a list of documents keyed by the variant's slot labels.
Documents with an existing _id are replaced, keeping their creation time.
Documents without an _id get a generated one.

Examples:
  coursecat seed --file plans.yml
  SQLITE_PATH=/tmp/catalog.db coursecat seed -c sqlite.yml --file plans.json`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Seed file to load (required)")
	_ = seedCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	printer.Step("Loading %s\n", seedFile)
	docs, err := seed.LoadFile(seedFile, cfg.CatalogSchema())
	if err != nil {
		return printer.Error(
			"invalid seed file",
			err.Error(),
			[]string{fmt.Sprintf("Slot labels for the %s variant: %q", cfg.Variant, cfg.CatalogSchema().Slots)},
		)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	written, err := seed.Apply(ctx, store, docs)
	if err != nil {
		return printer.ErrorWithContext(
			"seed failed",
			err.Error(),
			map[string]string{
				"Written": fmt.Sprintf("%d of %d", written, len(docs)),
				"Backend": cfg.Store.Backend,
			},
			nil,
		)
	}

	printer.Success("Seeded %d documents into %s\n", written, storeTarget(cfg))
	return nil
}

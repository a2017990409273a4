package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/dyluth/coursecat/internal/listing"
	"github.com/dyluth/coursecat/internal/printer"
	"github.com/dyluth/coursecat/internal/timespec"
	"github.com/spf13/cobra"
)

var (
	coursesSorted bool
	coursesTags   []string
	coursesOutput string
	coursesSince  string
	coursesUntil  string
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List courses from the configured store",
	Long: `List courses from the configured store, flattened across year slots.

Output Formats:
  table - Human-readable table with code, units, description and tags
  jsonl - Line-delimited JSON, one course per line

Examples:
  # Every course in slot order
  coursecat courses

  # Sorted by description, IT and IS programs only
  coursecat courses --sort --tags BSIT,BSIS

  # Documents updated in the last day
  coursecat courses --since 24h

  # Pipe to jq
  coursecat courses --output=jsonl | jq -r .code`,
	RunE: runCourses,
}

func init() {
	coursesCmd.Flags().BoolVar(&coursesSorted, "sort", false, "Sort by description using the configured collation locale")
	coursesCmd.Flags().StringSliceVar(&coursesTags, "tags", nil, "Only courses carrying at least one of these tags")
	coursesCmd.Flags().StringVar(&coursesSince, "since", "", "Only documents updated after this time (duration or RFC3339)")
	coursesCmd.Flags().StringVar(&coursesUntil, "until", "", "Only documents updated before this time (duration or RFC3339)")
	coursesCmd.Flags().StringVarP(&coursesOutput, "output", "o", string(listing.OutputFormatTable), "Output format: table or jsonl")

	rootCmd.AddCommand(coursesCmd)
}

func runCourses(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	format, err := listing.ParseOutputFormat(coursesOutput)
	if err != nil {
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", coursesOutput),
			[]string{"Valid formats: table, jsonl"},
		)
	}

	updated, err := timespec.ParseRange(coursesSince, coursesUntil, time.Now())
	if err != nil {
		return printer.Error("invalid time range", err.Error(), nil)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := listing.Options{
		Sorted:  coursesSorted,
		Tags:    coursesTags,
		Updated: updated,
		Locale:  cfg.Locale(),
		Format:  format,
	}
	if err := listing.ListCourses(ctx, store, opts, cmd.OutOrStdout()); err != nil {
		return printer.Error("failed to list courses", err.Error(), nil)
	}
	return nil
}

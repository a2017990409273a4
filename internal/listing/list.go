package listing

import (
	"context"
	"fmt"
	"io"

	"github.com/dyluth/coursecat/internal/query"
	"github.com/dyluth/coursecat/internal/timespec"
	"github.com/dyluth/coursecat/pkg/catalog"
	"golang.org/x/text/language"
)

// OutputFormat specifies how to format the course list output.
type OutputFormat string

const (
	// OutputFormatTable is a human-readable table with truncated descriptions
	OutputFormatTable OutputFormat = "table"

	// OutputFormatJSONL outputs complete courses as line-delimited JSON
	OutputFormatJSONL OutputFormat = "jsonl"
)

// ParseOutputFormat validates a user-supplied format name.
func ParseOutputFormat(name string) (OutputFormat, error) {
	switch OutputFormat(name) {
	case OutputFormatTable, OutputFormatJSONL:
		return OutputFormat(name), nil
	default:
		return "", fmt.Errorf("unknown output format: %s", name)
	}
}

// Options controls which courses are listed and how.
// Filters are ANDed and filtering keeps the sorted order.
type Options struct {
	Sorted  bool
	Tags    []string
	Updated timespec.Range // documents whose UpdatedAt falls in range; zero = all
	Locale  language.Tag
	Format  OutputFormat
}

// ListCourses reads every document from source, flattens the year slots and
// writes the selected courses to w.
func ListCourses(ctx context.Context, source query.Source, opts Options, w io.Writer) error {
	docs, err := source.ListYearDocuments(ctx)
	if err != nil {
		return &query.StoreError{Op: "list documents", Err: err}
	}

	if !opts.Updated.IsZero() {
		docs = updatedWithin(docs, opts.Updated)
	}

	courses := query.Flatten(docs)
	if opts.Sorted {
		query.SortByDescription(courses, opts.Locale)
	}
	if len(opts.Tags) > 0 {
		courses = query.SelectByTags(courses, opts.Tags)
	}

	switch opts.Format {
	case OutputFormatJSONL:
		return FormatJSONL(w, courses)
	default:
		FormatTable(w, courses)
		return nil
	}
}

// updatedWithin keeps documents last written inside r. Documents without an
// update time never match a bounded range.
func updatedWithin(docs []*catalog.YearDocument, r timespec.Range) []*catalog.YearDocument {
	kept := make([]*catalog.YearDocument, 0, len(docs))
	for _, d := range docs {
		if !d.UpdatedAt.IsZero() && r.Contains(d.UpdatedAt) {
			kept = append(kept, d)
		}
	}
	return kept
}

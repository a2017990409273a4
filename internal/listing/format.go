package listing

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dyluth/coursecat/pkg/catalog"
)

// FormatTable writes courses as a formatted table to the provided writer.
// The table includes columns: CODE, UNITS, DESCRIPTION (truncated) and TAGS.
// Returns the number of courses formatted.
func FormatTable(w io.Writer, courses []catalog.Course) int {
	if len(courses) == 0 {
		fmt.Fprintln(w, "No courses found")
		return 0
	}

	fmt.Fprintf(w, "%-10s %-5s %-40s %s\n", "CODE", "UNITS", "DESCRIPTION", "TAGS")
	fmt.Fprintf(w, "%-10s %-5s %-40s %s\n",
		"----------", "-----", "----------------------------------------", "--------------------")

	for _, c := range courses {
		fmt.Fprintf(w, "%-10s %-5s %-40s %s\n",
			formatCode(c.Code),
			formatUnits(c.Units),
			formatDescription(c.Description),
			formatTags(c.Tags),
		)
	}

	countMsg := "course"
	if len(courses) != 1 {
		countMsg = "courses"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(courses), countMsg)

	return len(courses)
}

// FormatJSONL writes courses as line-delimited JSON, one course per line.
func FormatJSONL(w io.Writer, courses []catalog.Course) error {
	for _, course := range courses {
		data, err := json.Marshal(course)
		if err != nil {
			return fmt.Errorf("failed to marshal course to JSON: %w", err)
		}

		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}

	return nil
}

func formatCode(code string) string {
	if code == "" {
		return "-"
	}
	runes := []rune(code)
	if len(runes) > 10 {
		return string(runes[:7]) + "..."
	}
	return code
}

// formatUnits drops the fraction for whole units: 3 prints as "3", 1.5 as "1.5".
func formatUnits(units float64) string {
	return strconv.FormatFloat(units, 'f', -1, 64)
}

// formatDescription truncates to 40 runes.
func formatDescription(description string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return "-"
	}

	runes := []rune(description)
	if len(runes) > 40 {
		return string(runes[:37]) + "..."
	}
	return description
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return "-"
	}
	return strings.Join(tags, ",")
}

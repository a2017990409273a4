// Package printer writes coloured status and error messages for the coursecat CLI.
package printer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
)

// Stdout and Stderr are where messages go. Tests swap them for buffers.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

var (
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed, color.Bold)
	cyan  = color.New(color.FgCyan)
)

// Success prints a message in green with a checkmark prefix.
func Success(format string, a ...any) {
	green.Fprintf(Stdout, "✓ %s", fmt.Sprintf(format, a...))
}

// Step prints a progress message for multi-step commands.
func Step(format string, a ...any) {
	cyan.Fprintf(Stdout, "→ %s", fmt.Sprintf(format, a...))
}

// Info prints an uncoloured message.
func Info(format string, a ...any) {
	fmt.Fprintf(Stdout, format, a...)
}

// Error prints a formatted error to Stderr and returns an error carrying only
// the title. Commands return it to cobra, which runs with SilenceErrors.
func Error(title string, explanation string, suggestions []string) error {
	return ErrorWithContext(title, explanation, nil, suggestions)
}

// ErrorWithContext is Error with key/value details printed between the
// explanation and the suggestions. Keys print in sorted order.
func ErrorWithContext(title string, explanation string, details map[string]string, suggestions []string) error {
	red.Fprintf(Stderr, "%s\n\n", title)

	if explanation != "" {
		fmt.Fprintf(Stderr, "%s\n", explanation)
	}

	if len(details) > 0 {
		keys := make([]string, 0, len(details))
		for k := range details {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprintln(Stderr)
		for _, k := range keys {
			fmt.Fprintf(Stderr, "  %s: %s\n", k, details[k])
		}
	}

	switch len(suggestions) {
	case 0:
	case 1:
		fmt.Fprintf(Stderr, "\n%s\n", suggestions[0])
	default:
		fmt.Fprintf(Stderr, "\nEither:\n")
		for i, s := range suggestions {
			fmt.Fprintf(Stderr, "  %d. %s\n", i+1, strings.TrimSpace(s))
		}
	}

	return fmt.Errorf("%s", title)
}

package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CheckExisting returns an error naming any starter files already in dir.
func CheckExisting(dir string) error {
	var existing []string
	for _, name := range []string{ConfigFile, PlansFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			existing = append(existing, name)
		}
	}

	if len(existing) == 0 {
		return nil
	}

	return fmt.Errorf("project already initialized\n\nFound existing: %s\n\nUse 'coursecat init --force' to overwrite",
		strings.Join(existing, ", "))
}

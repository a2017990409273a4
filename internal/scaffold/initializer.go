package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/coursecat/internal/config"
	"github.com/dyluth/coursecat/internal/seed"
)

//go:embed templates/*
var templatesFS embed.FS

// Files created by Initialize, relative to the target directory.
const (
	ConfigFile = "coursecat.yml"
	PlansFile  = "plans.yml"
)

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path        string
	Content     []byte
	Permissions os.FileMode
}

// Initialize writes a starter coursecat.yml and plans.yml into dir.
// If force is true, existing files are overwritten.
func Initialize(dir string, force bool) error {
	if !force {
		if err := CheckExisting(dir); err != nil {
			return err
		}
	}

	files, err := getTemplateFiles()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	for _, file := range files {
		path := filepath.Join(dir, file.Path)
		if err := os.WriteFile(path, file.Content, file.Permissions); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	return validateCreatedFiles(dir)
}

func getTemplateFiles() ([]FileInfo, error) {
	templates := []struct {
		name string
		path string
	}{
		{name: "templates/coursecat.yml.tmpl", path: ConfigFile},
		{name: "templates/plans.yml.tmpl", path: PlansFile},
	}

	files := make([]FileInfo, 0, len(templates))
	for _, tmpl := range templates {
		content, err := templatesFS.ReadFile(tmpl.name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s template: %w", tmpl.path, err)
		}
		files = append(files, FileInfo{Path: tmpl.path, Content: content, Permissions: 0644})
	}
	return files, nil
}

// validateCreatedFiles loads the written files the same way serve and seed do.
func validateCreatedFiles(dir string) error {
	cfg, err := config.Load(filepath.Join(dir, ConfigFile))
	if err != nil {
		return fmt.Errorf("created %s is invalid: %w", ConfigFile, err)
	}

	if _, err := seed.LoadFile(filepath.Join(dir, PlansFile), cfg.CatalogSchema()); err != nil {
		return fmt.Errorf("created %s is invalid: %w", PlansFile, err)
	}

	return nil
}

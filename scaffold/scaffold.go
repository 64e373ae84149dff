// Package scaffold generates starter project files for a new wd-launcher
// setup.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// Options parameterizes the generated files.
type Options struct {
	BaseURL     string
	BrowserName string
	MaxWorkers  int
}

const runConfigTemplate = `# wd-launcher run definition
specs:
  - ./specs/example.spec
baseUrl: {{ .BaseURL }}
maxWorkers: {{ .MaxWorkers }}
capabilities:
  - browserName: {{ .BrowserName }}
    maxInstances: {{ .MaxWorkers }}
services: []
logLevel: info
outputDir: ./logs
`

const exampleSpecTemplate = `# Spec files are plain lists of scenario identifiers, one per line.
homepage-loads
login-works
`

// Generate writes a starter run config and example spec into dir. Existing
// files are never overwritten.
func Generate(dir string, opts Options) error {
	if opts.BaseURL == "" {
		opts.BaseURL = "http://localhost:8080"
	}
	if opts.BrowserName == "" {
		opts.BrowserName = "chrome"
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 1
	}

	if err := os.MkdirAll(filepath.Join(dir, "specs"), 0o755); err != nil {
		return fmt.Errorf("failed to create project directories: %w", err)
	}

	files := map[string]string{
		filepath.Join(dir, "wd-launcher.yaml"):      runConfigTemplate,
		filepath.Join(dir, "specs", "example.spec"): exampleSpecTemplate,
	}
	for path, tmpl := range files {
		if err := writeTemplate(path, tmpl, opts); err != nil {
			return err
		}
	}
	return nil
}

func writeTemplate(path, tmpl string, opts Options) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("refusing to overwrite existing file %q", path)
	}

	t, err := template.New(filepath.Base(path)).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template for %q: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", path, err)
	}
	defer f.Close()

	if err := t.Execute(f, opts); err != nil {
		return fmt.Errorf("failed to render %q: %w", path, err)
	}
	return nil
}

package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridware/wd-launcher/registry"
)

func TestGenerate(t *testing.T) {
	dir := t.TempDir()

	err := Generate(dir, Options{
		BaseURL:     "https://staging.example.com",
		BrowserName: "firefox",
		MaxWorkers:  4,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "wd-launcher.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "baseUrl: https://staging.example.com")
	assert.Contains(t, string(data), "browserName: firefox")
	assert.Contains(t, string(data), "maxWorkers: 4")

	spec, err := os.ReadFile(filepath.Join(dir, "specs", "example.spec"))
	require.NoError(t, err)
	assert.Contains(t, string(spec), "homepage-loads")
}

func TestGenerateDefaults(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Generate(dir, Options{}))

	data, err := os.ReadFile(filepath.Join(dir, "wd-launcher.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "baseUrl: http://localhost:8080")
	assert.Contains(t, string(data), "browserName: chrome")
	assert.Contains(t, string(data), "maxWorkers: 1")
}

// The generated run config must load back through the registry without edits.
func TestGeneratedConfigLoads(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Generate(dir, Options{BrowserName: "chrome"}))

	cfg, err := registry.LoadRunConfig(filepath.Join(dir, "wd-launcher.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	require.Len(t, cfg.Capabilities, 1)
	assert.Equal(t, "chrome", cfg.Capabilities[0].BrowserName)
}

func TestGenerateRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Generate(dir, Options{}))

	err := Generate(dir, Options{})
	require.ErrorContains(t, err, "refusing to overwrite")
}

package launcher

import (
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zaptest"

	"github.com/gridware/wd-launcher/flags"
)

// newCLIContext builds a cli context with the launcher flag set and the given
// arguments applied.
func newCLIContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range flags.Flags {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse(args))

	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestLogSettings(t *testing.T) {
	const runConfigWithLogging = `
specs:
  - a.spec
capabilities:
  - browserName: chrome
logLevel: debug
outputDir: ./run-logs
`

	t.Run("run definition fills in unset flags", func(t *testing.T) {
		path := writeRunConfig(t, runConfigWithLogging)
		ctx := newCLIContext(t, "--config", path)

		cfg := LogSettings(ctx)
		assert.Equal(t, "debug", cfg.Level)
		assert.Equal(t, "./run-logs", cfg.Dir)
	})

	t.Run("explicit flags win over the run definition", func(t *testing.T) {
		path := writeRunConfig(t, runConfigWithLogging)
		ctx := newCLIContext(t, "--config", path, "--log-level", "warn", "--log-dir", "/tmp/elsewhere")

		cfg := LogSettings(ctx)
		assert.Equal(t, "warn", cfg.Level)
		assert.Equal(t, "/tmp/elsewhere", cfg.Dir)
	})

	t.Run("unloadable run config falls back to flag values", func(t *testing.T) {
		ctx := newCLIContext(t, "--config", "does-not-exist.yaml")

		cfg := LogSettings(ctx)
		assert.Equal(t, "info", cfg.Level)
		assert.Equal(t, "", cfg.Dir)
	})
}

func TestNewConfig(t *testing.T) {
	log := zaptest.NewLogger(t).Sugar()

	t.Run("valid flags", func(t *testing.T) {
		ctx := newCLIContext(t,
			"--config", "wd-launcher.yaml",
			"--max-workers", "4",
			"--run-interval", "30m",
			"--dry-run",
		)

		cfg, err := NewConfig(ctx, log, "wd-launcher.yaml")
		require.NoError(t, err)

		assert.True(t, cfg.DryRun)
		assert.Equal(t, 4, cfg.MaxWorkers)
		assert.Equal(t, 30*time.Minute, cfg.RunInterval)
		assert.False(t, cfg.RunOnce)
		assert.True(t, len(cfg.RunConfigPath) > len("wd-launcher.yaml"), "path should be absolute")
	})

	t.Run("zero interval means run-once", func(t *testing.T) {
		ctx := newCLIContext(t, "--config", "wd-launcher.yaml")
		cfg, err := NewConfig(ctx, log, "wd-launcher.yaml")
		require.NoError(t, err)
		assert.True(t, cfg.RunOnce)
	})

	t.Run("missing required flag", func(t *testing.T) {
		ctx := newCLIContext(t)
		_, err := NewConfig(ctx, log, "wd-launcher.yaml")
		require.ErrorContains(t, err, "missing required flags")
	})

	t.Run("empty run config path", func(t *testing.T) {
		ctx := newCLIContext(t, "--config", "wd-launcher.yaml")
		_, err := NewConfig(ctx, log, "")
		require.ErrorContains(t, err, "run config file is required")
	})

	t.Run("negative max-workers", func(t *testing.T) {
		ctx := newCLIContext(t, "--config", "wd-launcher.yaml", "--max-workers", "-1")
		_, err := NewConfig(ctx, log, "wd-launcher.yaml")
		require.ErrorContains(t, err, "cannot be negative")
	})
}

package launcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/gridware/wd-launcher/flags"
	"github.com/gridware/wd-launcher/logging"
	"github.com/gridware/wd-launcher/registry"
)

// Config holds the application configuration
type Config struct {
	RunConfigPath string
	MaxWorkers    int           // Overrides the run config's maxWorkers when > 0
	RunInterval   time.Duration // Interval between runs
	RunOnce       bool          // Indicates if the service should exit after one run
	DryRun        bool          // Run the lifecycle without real browser sessions
	LogDir        string        // Directory to additionally write launcher logs to
	Log           *zap.SugaredLogger
}

// LogSettings resolves the logging configuration before the launcher exists.
// CLI flags take precedence; for flags left unset, the run definition's
// logLevel and outputDir fill in. A run config that cannot be loaded here is
// ignored — the registry reports it properly once the logger is up.
func LogSettings(ctx *cli.Context) logging.Config {
	cfg := logging.Config{
		Level:  ctx.String(flags.LogLevel.Name),
		Format: ctx.String(flags.LogFormat.Name),
		Dir:    ctx.String(flags.LogDir.Name),
	}

	run, err := registry.LoadRunConfig(ctx.String(flags.Config.Name))
	if err != nil {
		return cfg
	}
	if !ctx.IsSet(flags.LogLevel.Name) && run.LogLevel != "" {
		cfg.Level = run.LogLevel
	}
	if !ctx.IsSet(flags.LogDir.Name) && run.OutputDir != "" {
		cfg.Dir = run.OutputDir
	}
	return cfg
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log *zap.SugaredLogger, runConfigPath string) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}
	if runConfigPath == "" {
		return nil, errors.New("run config file is required")
	}

	absRunConfig, err := filepath.Abs(runConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for run config '%s': %w", runConfigPath, err)
	}

	maxWorkers := ctx.Int(flags.MaxWorkers.Name)
	if maxWorkers < 0 {
		return nil, fmt.Errorf("max-workers cannot be negative, got %d", maxWorkers)
	}

	runInterval := ctx.Duration(flags.RunInterval.Name)
	runOnce := runInterval == 0

	logDir := ctx.String(flags.LogDir.Name)
	if logDir != "" {
		logDir, err = filepath.Abs(logDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for log directory '%s': %w", logDir, err)
		}
	}

	return &Config{
		RunConfigPath: absRunConfig,
		MaxWorkers:    maxWorkers,
		RunInterval:   runInterval,
		RunOnce:       runOnce,
		DryRun:        ctx.Bool(flags.DryRun.Name),
		LogDir:        logDir,
		Log:           log,
	}, nil
}

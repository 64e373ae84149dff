package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/urfave/cli/v2"

	launcher "github.com/gridware/wd-launcher"
	"github.com/gridware/wd-launcher/flags"
	"github.com/gridware/wd-launcher/logging"
	"github.com/gridware/wd-launcher/scaffold"
	"github.com/gridware/wd-launcher/service"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "wd-launcher"
	app.Usage = "Browser Automation Test Launcher"
	app.Description = "wd-launcher orchestrates browser-automation test runs and their service hooks"
	app.Flags = flags.Flags
	app.Action = run
	app.Commands = []*cli.Command{initCommand}
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			if launcher.IsRuntimeError(err) {
				// Runtime errors and severe hook escalations exit with code 2
				cli.HandleExitCoder(cli.Exit(err.Error(), 2))
			} else if launcher.IsRunFailureError(err) {
				// Worker session failures exit with code 1
				cli.HandleExitCoder(cli.Exit(err.Error(), 1))
			} else {
				cli.HandleExitCoder(cli.Exit(err.Error(), 1))
			}
		}
	}

	// Start telemetry
	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(app.Name),
		otelconfig.WithServiceVersion(app.Version),
	)
	if err != nil {
		log.Printf("Failed to setup open telemetry: %v", err)
	} else {
		defer otelShutdown()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatalf("Application failed: %v", err)
	}
}

func run(c *cli.Context) error {
	logger, err := logging.New(launcher.LogSettings(c))
	if err != nil {
		return launcher.NewRuntimeError(fmt.Errorf("failed to create logger: %w", err))
	}
	defer logger.Sync() //nolint:errcheck

	cfg, err := launcher.NewConfig(c, logger, c.String(flags.Config.Name))
	if err != nil {
		return launcher.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}

	cfg.Log.Debugw("Config", "config", cfg)

	// Start healthz and metrics servers
	svc := service.New(logger)
	svc.Start(c.Context)
	defer svc.Shutdown()

	shutdown := make(chan error, 1)
	l, err := launcher.New(c.Context, cfg, Version, func(err error) { shutdown <- err })
	if err != nil {
		return launcher.NewRuntimeError(fmt.Errorf("failed to create launcher: %w", err))
	}

	if err := l.Start(c.Context); err != nil {
		return err
	}

	select {
	case err := <-shutdown:
		_ = l.Stop(c.Context)
		return err
	case <-c.Context.Done():
		return l.Stop(context.Background())
	}
}

var initCommand = &cli.Command{
	Name:  "init",
	Usage: "Generate a starter wd-launcher project",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "dir", Value: ".", Usage: "Target directory for the generated project"},
		&cli.StringFlag{Name: "base-url", Value: "http://localhost:8080", Usage: "Base URL for the generated run config"},
		&cli.StringFlag{Name: "browser", Value: "chrome", Usage: "Browser name for the generated capability"},
		&cli.IntFlag{Name: "workers", Value: 1, Usage: "Worker count for the generated run config"},
	},
	Action: func(c *cli.Context) error {
		return scaffold.Generate(c.String("dir"), scaffold.Options{
			BaseURL:     c.String("base-url"),
			BrowserName: c.String("browser"),
			MaxWorkers:  c.Int("workers"),
		})
	},
}

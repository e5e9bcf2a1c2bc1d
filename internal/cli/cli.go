package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"anspacker/internal/app"
	"anspacker/internal/config"
	"anspacker/internal/logger"
)

// env is shared by every subcommand once Before has run.
type env struct {
	logger    logger.Logger
	packerCfg config.Packer
	stdout    io.Writer
	stderr    io.Writer
}

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var loggerCfg config.Logger
	e := &env{
		logger: logger.NoOpLogger{},
		stdout: stdout,
		stderr: stderr,
	}

	cmd := &cli.Command{
		Name:      "anspacker",
		Usage:     "Package Python scripts with PyInstaller",
		Version:   app.AppVersion,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     append(loggerCfg.Flags(), e.packerCfg.Flags()...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			log, err := loggerCfg.Configure(stderr)
			if err != nil {
				return nil, err
			}
			e.logger = log
			return ctx, nil
		},
		Action: e.openGUI,
		Commands: []*cli.Command{
			cmdBuild(e),
			cmdProfile(e),
			cmdPresets(e),
		},
	}

	if err := cmd.Run(ctx, args); err != nil {
		// Before failed, so there is no logger to report through
		if _, ok := e.logger.(logger.NoOpLogger); ok {
			fmt.Fprintf(stderr, "anspacker: %v\n", err)
			return err
		}
		e.logger.Error("CLI", err, nil)
		return err
	}
	return nil
}

func (e *env) openGUI(_ context.Context, _ *cli.Command) error {
	tool, opts, err := e.packerCfg.Configure(e.logger)
	if err != nil {
		return err
	}

	return app.NewApplication(app.Config{
		Logger:    e.logger,
		Tool:      tool,
		Installer: opts,
	}).Run()
}

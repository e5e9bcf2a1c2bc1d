package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"anspacker/internal/config"
	"anspacker/internal/packer"
	"anspacker/internal/shutdown"
	"anspacker/internal/sink"
	"anspacker/internal/timing"
)

func cmdBuild(e *env) *cli.Command {
	var buildCfg config.Build

	return &cli.Command{
		Name:      "build",
		Aliases:   []string{"b"},
		Usage:     "Package a script without opening the window",
		ArgsUsage: "[main.py]",
		Flags:     buildCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			packCfg, err := buildCfg.Configure(c)
			if err != nil {
				return goerr.Wrap(err, "failed to load configuration")
			}
			if packCfg.MainFile == "" && c.Args().Len() > 0 {
				packCfg.MainFile = c.Args().First()
			}

			tool, opts, err := e.packerCfg.Configure(e.logger)
			if err != nil {
				return err
			}

			orchestrator := packer.NewOrchestrator(tool,
				packer.WithLogger(e.logger),
				packer.WithInstaller(packer.NewInstaller(tool, opts...)),
			)

			shutdownMgr := shutdown.NewManager(e.logger)
			shutdownMgr.Register(orchestrator)
			stopListening := shutdownMgr.Listen()
			defer func() {
				stopListening()
				shutdownMgr.Shutdown()
			}()

			out := sink.Multi(
				sink.NewConsoleSink(e.stdout, buildCfg.NoColor),
				sink.NewLoggerSink(e.logger, map[string]interface{}{"main_file": packCfg.MainFile}),
			)

			err = orchestrator.Run(ctx, packCfg, out)
			printTimings(e.stdout, orchestrator.Timings())
			return err
		},
	}
}

// printTimings writes how long each phase of the run took. Phases that
// never started are left out.
func printTimings(w io.Writer, tracker *timing.Tracker) {
	all := tracker.All()
	for _, phase := range []string{packer.PhaseInstall, packer.PhaseBuild} {
		for _, d := range all[phase] {
			fmt.Fprintf(w, "Phase %s: %s\n", phase, d.Round(time.Millisecond))
		}
	}
}

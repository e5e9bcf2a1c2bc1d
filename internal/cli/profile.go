package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"anspacker/internal/config"
)

func cmdProfile(e *env) *cli.Command {
	var (
		buildCfg config.Build
		out      string
	)

	flags := append(buildCfg.Flags(), &cli.StringFlag{
		Name:        "write",
		Aliases:     []string{"w"},
		Usage:       "Destination of the TOML profile",
		Value:       "anspacker.toml",
		Destination: &out,
	})

	return &cli.Command{
		Name:  "profile",
		Usage: "Write the configuration given by flags to a TOML profile",
		Flags: flags,
		Action: func(_ context.Context, c *cli.Command) error {
			packCfg, err := buildCfg.Configure(c)
			if err != nil {
				return goerr.Wrap(err, "failed to load configuration")
			}
			if err := packCfg.SaveProfile(out); err != nil {
				return err
			}

			e.logger.Info("CLI", "profile written", map[string]interface{}{"path": out})
			fmt.Fprintf(e.stdout, "Profile written to %s\n", out)
			return nil
		},
	}
}

package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"anspacker/internal/models"
)

func cmdPresets(e *env) *cli.Command {
	var noColor bool

	return &cli.Command{
		Name:  "presets",
		Usage: "List common PyInstaller parameters",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "no-color",
				Usage:       "Disable colored output",
				Destination: &noColor,
				Sources:     cli.EnvVars("ANSPACKER_NO_COLOR"),
			},
		},
		Action: func(_ context.Context, _ *cli.Command) error {
			flagColor := color.New(color.FgCyan, color.Bold)
			if noColor {
				flagColor.DisableColor()
			}

			width := 0
			for _, p := range models.Presets {
				width = max(width, len(p.Flag))
			}
			for _, p := range models.Presets {
				padded := fmt.Sprintf("%-*s", width, p.Flag)
				fmt.Fprintf(e.stdout, "  %s  %s\n", flagColor.Sprint(padded), p.Description)
			}
			return nil
		},
	}
}

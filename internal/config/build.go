package config

import (
	"github.com/urfave/cli/v3"

	"anspacker/internal/models"
)

// Build mirrors models.PackConfig as flags of the build subcommand. Values
// given on the command line override those of a --profile file.
type Build struct {
	Main      string
	Output    string
	Icon      string
	Resources []string
	Name      string
	OneFile   bool
	NoConsole bool
	Debug     bool
	Clean     bool
	Extra     string
	Profile   string
	NoColor   bool
}

func (c *Build) Flags() []cli.Flag {
	defaults := models.NewPackConfig()

	return []cli.Flag{
		&cli.StringFlag{
			Name:        "main",
			Aliases:     []string{"m"},
			Usage:       "Main Python script to package",
			Destination: &c.Main,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Output directory (default: ./dist)",
			Destination: &c.Output,
		},
		&cli.StringFlag{
			Name:        "icon",
			Usage:       "Icon file",
			Destination: &c.Icon,
		},
		&cli.StringSliceFlag{
			Name:        "resource",
			Aliases:     []string{"r"},
			Usage:       "Extra file or directory bundled with --add-data (repeatable)",
			Destination: &c.Resources,
		},
		&cli.StringFlag{
			Name:        "name",
			Usage:       "Name of the packaged application",
			Destination: &c.Name,
		},
		&cli.BoolFlag{
			Name:        "onefile",
			Usage:       "Bundle into a single file",
			Value:       defaults.OneFile,
			Destination: &c.OneFile,
		},
		&cli.BoolFlag{
			Name:        "noconsole",
			Usage:       "Hide the console window",
			Value:       defaults.NoConsole,
			Destination: &c.NoConsole,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "Build with --debug=all",
			Value:       defaults.Debug,
			Destination: &c.Debug,
		},
		&cli.BoolFlag{
			Name:        "clean",
			Usage:       "Clean PyInstaller cache before building",
			Value:       defaults.Clean,
			Destination: &c.Clean,
		},
		&cli.StringFlag{
			Name:        "extra",
			Usage:       "Additional PyInstaller arguments, whitespace separated",
			Destination: &c.Extra,
		},
		&cli.StringFlag{
			Name:        "profile",
			Usage:       "TOML file pre-filling the configuration",
			Destination: &c.Profile,
			Sources:     cli.EnvVars("ANSPACKER_PROFILE"),
		},
		&cli.BoolFlag{
			Name:        "no-color",
			Usage:       "Disable colored output",
			Destination: &c.NoColor,
			Sources:     cli.EnvVars("ANSPACKER_NO_COLOR"),
		},
	}
}

// Configure builds the record for cmd. Only flags that were set override
// the profile or the defaults.
func (c *Build) Configure(cmd *cli.Command) (*models.PackConfig, error) {
	cfg := models.NewPackConfig()
	if c.Profile != "" {
		loaded, err := models.LoadProfile(c.Profile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	setString := func(flag string, dst *string, v string) {
		if cmd.IsSet(flag) {
			*dst = v
		}
	}
	setBool := func(flag string, dst *bool, v bool) {
		if cmd.IsSet(flag) {
			*dst = v
		}
	}

	setString("main", &cfg.MainFile, c.Main)
	setString("output", &cfg.OutputDir, c.Output)
	setString("icon", &cfg.IconFile, c.Icon)
	setString("name", &cfg.Name, c.Name)
	setString("extra", &cfg.ExtraParams, c.Extra)
	setBool("onefile", &cfg.OneFile, c.OneFile)
	setBool("noconsole", &cfg.NoConsole, c.NoConsole)
	setBool("debug", &cfg.Debug, c.Debug)
	setBool("clean", &cfg.Clean, c.Clean)
	if cmd.IsSet("resource") {
		cfg.Resources = append([]string(nil), c.Resources...)
	}

	return cfg, nil
}

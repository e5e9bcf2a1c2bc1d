package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"anspacker/internal/logger"
	"anspacker/internal/packer"
)

const DefaultInstallTimeout = 10 * time.Minute

// Packer selects the Python interpreter and the installer behavior
type Packer struct {
	Python         string
	Module         string
	Package        string
	InstallTimeout time.Duration
}

func (c *Packer) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "python",
			Usage:       "Python interpreter used to run PyInstaller (default: first of python3/python on PATH)",
			Destination: &c.Python,
			Sources:     cli.EnvVars("ANSPACKER_PYTHON"),
		},
		&cli.StringFlag{
			Name:        "module",
			Usage:       "Module run with -m",
			Value:       packer.DefaultModule,
			Destination: &c.Module,
			Sources:     cli.EnvVars("ANSPACKER_MODULE"),
		},
		&cli.StringFlag{
			Name:        "pip-package",
			Usage:       "Package installed with pip when the module is missing",
			Value:       packer.DefaultPackage,
			Destination: &c.Package,
			Sources:     cli.EnvVars("ANSPACKER_PIP_PACKAGE"),
		},
		&cli.DurationFlag{
			Name:        "install-timeout",
			Usage:       "Upper bound for the pip install step",
			Value:       DefaultInstallTimeout,
			Destination: &c.InstallTimeout,
			Sources:     cli.EnvVars("ANSPACKER_INSTALL_TIMEOUT"),
		},
	}
}

// Configure resolves the tool and the installer options
func (c *Packer) Configure(log logger.Logger) (packer.Tool, []packer.InstallerOption, error) {
	if c.InstallTimeout <= 0 {
		return packer.Tool{}, nil, goerr.New("install timeout must be positive",
			goerr.V("install_timeout", c.InstallTimeout.String()))
	}

	tool := packer.Tool{Interpreter: c.Python, Module: c.Module}
	if tool.Interpreter == "" {
		tool.Interpreter = packer.DetectInterpreter()
	}
	if tool.Module == "" {
		tool.Module = packer.DefaultModule
	}

	pkg := c.Package
	if pkg == "" {
		pkg = packer.DefaultPackage
	}

	opts := []packer.InstallerOption{
		packer.WithPackage(pkg),
		packer.WithInstallTimeout(c.InstallTimeout),
		packer.WithInstallerLogger(log),
	}
	return tool, opts, nil
}

package packer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"anspacker/internal/logger"
)

const (
	DefaultCheckTimeout   = 5 * time.Second
	DefaultInstallTimeout = 10 * time.Minute

	separator = "=================================================="
)

// Installer makes sure the packaging tool can be imported by the
// interpreter, installing it with pip when it cannot.
type Installer struct {
	tool           Tool
	pkg            string
	checkTimeout   time.Duration
	installTimeout time.Duration
	logger         logger.Logger
}

type InstallerOption func(*Installer)

func WithPackage(pkg string) InstallerOption {
	return func(i *Installer) { i.pkg = pkg }
}

func WithCheckTimeout(d time.Duration) InstallerOption {
	return func(i *Installer) { i.checkTimeout = d }
}

func WithInstallTimeout(d time.Duration) InstallerOption {
	return func(i *Installer) { i.installTimeout = d }
}

func WithInstallerLogger(l logger.Logger) InstallerOption {
	return func(i *Installer) { i.logger = l }
}

func NewInstaller(tool Tool, opts ...InstallerOption) *Installer {
	i := &Installer{
		tool:           tool,
		pkg:            DefaultPackage,
		checkTimeout:   DefaultCheckTimeout,
		installTimeout: DefaultInstallTimeout,
		logger:         logger.NoOpLogger{},
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Installed reports whether "<interpreter> -m <module> --version" exits 0.
func (i *Installer) Installed(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, i.checkTimeout)
	defer cancel()

	argv := i.tool.VersionCommand()
	err := newCommand(ctx, argv).Run()
	if err != nil {
		i.logger.Debug("Installer", "tool check failed", map[string]interface{}{
			"command": FormatCommand(argv),
			"error":   err.Error(),
		})
		return false
	}
	return true
}

// Ensure checks for the tool and installs it when missing. Progress goes to
// sink; a failed installation is reported and never retried.
func (i *Installer) Ensure(ctx context.Context, sink Sink) error {
	module := i.tool.module()
	sink.Log(fmt.Sprintf("Checking %s installation...", module), LevelInfo)

	if i.Installed(ctx) {
		sink.Log(fmt.Sprintf("✓ %s is installed", module), LevelSuccess)
		return nil
	}

	if ctx.Err() != nil {
		return goerr.Wrap(ErrCanceled, "check interrupted")
	}

	sink.Log(fmt.Sprintf("✗ %s is not installed", module), LevelWarning)
	sink.Log(fmt.Sprintf("Trying to install %s automatically...", module), LevelInfo)
	sink.Log("Note: this needs a network connection and a working pip configuration", LevelInfo)

	err := i.install(ctx, sink)
	if err != nil {
		i.report(err, sink)
		i.logger.Error("Installer", err, map[string]interface{}{"package": i.pkg})
		return err
	}

	sink.Log(separator, LevelSuccess)
	sink.Log(fmt.Sprintf("✓ %s installed successfully", module), LevelSuccess)
	sink.Log(separator, LevelSuccess)

	if !i.Installed(ctx) {
		sink.Log("✗ Verification failed, the package may not be installed correctly", LevelError)
		return goerr.Wrap(ErrInstallVerify, "tool unavailable after install", goerr.V("package", i.pkg))
	}
	sink.Log("✓ Installation verified", LevelSuccess)
	return nil
}

func (i *Installer) install(ctx context.Context, sink Sink) error {
	installCtx, cancel := context.WithTimeout(ctx, i.installTimeout)
	defer cancel()

	argv := i.tool.InstallCommand(i.pkg)
	sink.Log("Running: "+FormatCommand(argv), LevelInfo)
	sink.Log(separator, LevelInfo)
	sink.Log(fmt.Sprintf("Installing %s...", i.pkg), LevelInfo)
	sink.Log(separator, LevelInfo)

	proc, err := startCombined(newCommand(installCtx, argv))
	if err != nil {
		if ctx.Err() != nil {
			return goerr.Wrap(ErrCanceled, "installation canceled")
		}
		return classifySpawnError(err, argv)
	}

	proc.forEachLine(func(line string) {
		sink.Log("[PIP] "+line, LevelInfo)
	})
	waitErr := proc.wait()

	switch {
	case ctx.Err() != nil:
		return goerr.Wrap(ErrCanceled, "installation canceled")
	case errors.Is(installCtx.Err(), context.DeadlineExceeded):
		return goerr.Wrap(ErrInstallTimeout, "pip did not finish in time",
			goerr.V("timeout", i.installTimeout.String()))
	case waitErr == nil:
		return nil
	}

	if code, ok := exitCode(waitErr); ok {
		return goerr.Wrap(ErrInstallFailed, fmt.Sprintf("pip exited with code %d", code), goerr.V("exit_code", code))
	}
	return goerr.Wrap(ErrInstallUnknown, waitErr.Error(), goerr.V("type", fmt.Sprintf("%T", waitErr)))
}

func classifySpawnError(err error, argv []string) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return goerr.Wrap(ErrInterpreterNotFound, err.Error(), goerr.V("command", argv[0]))
	}
	return goerr.Wrap(ErrInstallUnknown, err.Error(), goerr.V("type", fmt.Sprintf("%T", err)))
}

// report writes the remediation hint matching the failure category.
func (i *Installer) report(err error, sink Sink) {
	sink.Log(separator, LevelError)
	switch {
	case errors.Is(err, ErrInterpreterNotFound):
		sink.Log("✗ Failed to run: Python or pip was not found", LevelError)
		sink.Log("Details: "+err.Error(), LevelError)
		sink.Log("Make sure Python is installed and on the system PATH", LevelWarning)
	case errors.Is(err, ErrInstallTimeout):
		sink.Log("✗ Timed out: the network is too slow or the installer is stuck", LevelError)
		sink.Log("Details: "+err.Error(), LevelError)
		sink.Log("Suggestions: 1. check the network connection 2. use a closer package index mirror", LevelWarning)
	case errors.Is(err, ErrInstallFailed):
		sink.Log(fmt.Sprintf("✗ %s installation failed", i.pkg), LevelError)
		sink.Log("Details: "+err.Error(), LevelError)
	case errors.Is(err, ErrCanceled):
		sink.Log("✗ Installation canceled", LevelWarning)
	default:
		sink.Log(fmt.Sprintf("✗ Unexpected error while installing %s", i.pkg), LevelError)
		sink.Log("Details: "+err.Error(), LevelError)
		sink.Log("Common causes:", LevelWarning)
		for n, cause := range commonInstallCauses {
			sink.Log(fmt.Sprintf("%d. %s", n+1, cause), LevelWarning)
		}
	}
	sink.Log(separator, LevelError)
}

var commonInstallCauses = []string{
	"Network connection problems",
	"Broken pip configuration",
	"Insufficient permissions (try running as administrator)",
	"A firewall or proxy blocking access",
	"A damaged Python environment",
}

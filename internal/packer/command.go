package packer

import (
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"anspacker/internal/models"
)

const (
	DefaultModule  = "PyInstaller"
	DefaultPackage = "pyinstaller"
)

// Tool locates the packaging tool: it is run as "<Interpreter> -m <Module>".
type Tool struct {
	Interpreter string
	Module      string
}

// DetectInterpreter returns the first known interpreter name found on PATH,
// or the platform's conventional name when none is found so the spawn
// failure names something recognizable.
func DetectInterpreter() string {
	candidates := []string{"python3", "python"}
	if runtime.GOOS == "windows" {
		candidates = []string{"python", "py", "python3"}
	}
	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return candidates[0]
}

func (t Tool) module() string {
	if t.Module == "" {
		return DefaultModule
	}
	return t.Module
}

// Invocation is the argv prefix that starts the tool.
func (t Tool) Invocation() []string {
	return []string{t.Interpreter, "-m", t.module()}
}

func (t Tool) VersionCommand() []string {
	return append(t.Invocation(), "--version")
}

func (t Tool) InstallCommand(pkg string) []string {
	return []string{t.Interpreter, "-m", "pip", "install", pkg}
}

// BuildCommand returns the full argv for one run: the tool invocation
// followed by Args.
func BuildCommand(tool Tool, cfg *models.PackConfig, goos string) []string {
	return append(tool.Invocation(), Args(cfg, goos)...)
}

// Args maps a record to tool arguments. The order is fixed: mode flags,
// name, icon, one --add-data per resource, extra params, output paths and
// finally the main file.
func Args(cfg *models.PackConfig, goos string) []string {
	var args []string

	if cfg.OneFile {
		args = append(args, "--onefile")
	}
	if cfg.NoConsole {
		args = append(args, "--noconsole")
	}
	if cfg.Debug {
		args = append(args, "--debug=all")
	}
	if cfg.Clean {
		args = append(args, "--clean")
	}

	if cfg.Name != "" {
		args = append(args, "--name", cfg.Name)
	}
	if cfg.IconFile != "" {
		args = append(args, "--icon", cfg.IconFile)
	}

	sep := dataSeparator(goos)
	for _, resource := range cfg.Resources {
		args = append(args, "--add-data", resource+sep+".")
	}

	// no quoting support, same as the free-text field in the form
	args = append(args, strings.Fields(cfg.ExtraParams)...)

	if cfg.OutputDir != "" {
		args = append(args,
			"--distpath", joinPath(goos, cfg.OutputDir, "dist"),
			"--workpath", joinPath(goos, cfg.OutputDir, "build"),
			"--specpath", cfg.OutputDir,
		)
	}

	return append(args, cfg.MainFile)
}

func dataSeparator(goos string) string {
	if goos == "windows" {
		return ";"
	}
	return ":"
}

// joinPath joins for the target platform rather than the host, so command
// assembly stays a pure function of its inputs.
func joinPath(goos, dir, elem string) string {
	if goos == runtime.GOOS {
		return filepath.Join(dir, elem)
	}
	sep := "/"
	if goos == "windows" {
		sep = `\`
	}
	return strings.TrimRight(dir, `/\`) + sep + elem
}

// FormatCommand renders argv for display, quoting arguments with spaces.
func FormatCommand(argv []string) string {
	parts := make([]string, len(argv))
	for i, arg := range argv {
		if strings.ContainsAny(arg, " \t") {
			parts[i] = `"` + arg + `"`
		} else {
			parts[i] = arg
		}
	}
	return strings.Join(parts, " ")
}

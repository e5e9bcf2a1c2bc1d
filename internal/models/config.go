package models

import (
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrMainFileRequired = goerr.New("main file is required")
	ErrMainFileMissing  = goerr.New("main file does not exist")
	ErrIconMissing      = goerr.New("icon file does not exist")
	ErrResourceMissing  = goerr.New("resource does not exist")
	ErrOutputDirMissing = goerr.New("output directory does not exist")
)

// PackConfig is the set of options for a single packaging run. It is built
// fresh for each run and thrown away once turned into command arguments.
type PackConfig struct {
	MainFile    string   `toml:"main_file"`
	OutputDir   string   `toml:"output_dir,omitempty"`
	IconFile    string   `toml:"icon_file,omitempty"`
	Resources   []string `toml:"resources,omitempty"`
	Name        string   `toml:"name,omitempty"`
	OneFile     bool     `toml:"onefile"`
	NoConsole   bool     `toml:"noconsole"`
	Debug       bool     `toml:"debug"`
	Clean       bool     `toml:"clean"`
	ExtraParams string   `toml:"extra_params,omitempty"`
}

// NewPackConfig returns a record holding the form defaults.
func NewPackConfig() *PackConfig {
	cfg := &PackConfig{}
	cfg.Reset()
	return cfg
}

// Reset clears every path and text field and restores the default flags.
func (c *PackConfig) Reset() {
	*c = PackConfig{
		OneFile:   true,
		NoConsole: true,
		Debug:     false,
		Clean:     true,
	}
}

// Validate checks every path before anything is spawned. The first failing
// check is returned.
func (c *PackConfig) Validate() error {
	if c.MainFile == "" {
		return ErrMainFileRequired
	}
	if !isFile(c.MainFile) {
		return goerr.Wrap(ErrMainFileMissing, "invalid main file "+c.MainFile, goerr.V("path", c.MainFile))
	}

	if c.IconFile != "" && !isFile(c.IconFile) {
		return goerr.Wrap(ErrIconMissing, "invalid icon file "+c.IconFile, goerr.V("path", c.IconFile))
	}

	for _, resource := range c.Resources {
		if _, err := os.Stat(resource); err != nil {
			return goerr.Wrap(ErrResourceMissing, "invalid resource "+resource, goerr.V("path", resource))
		}
	}

	if c.OutputDir != "" && !isDir(c.OutputDir) {
		return goerr.Wrap(ErrOutputDirMissing, "invalid output directory "+c.OutputDir, goerr.V("path", c.OutputDir))
	}

	return nil
}

// AppendParam joins param onto a free-text argument string.
func AppendParam(current, param string) string {
	param = strings.TrimSpace(param)
	current = strings.TrimSpace(current)
	switch {
	case param == "":
		return current
	case current == "":
		return param
	}
	return current + " " + param
}

// Clone returns a deep copy so a run never shares the Resources slice with
// the form that produced it.
func (c *PackConfig) Clone() *PackConfig {
	clone := *c
	if c.Resources != nil {
		clone.Resources = append([]string(nil), c.Resources...)
	}
	return &clone
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

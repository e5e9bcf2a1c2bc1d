package models

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

// LoadProfile reads a TOML profile on top of the defaults. Keys missing
// from the file keep their default value.
func LoadProfile(path string) (*PackConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read profile", goerr.V("path", path))
	}

	cfg := NewPackConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse profile", goerr.V("path", path))
	}
	return cfg, nil
}

func (c *PackConfig) SaveProfile(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return goerr.Wrap(err, "failed to encode profile")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write profile", goerr.V("path", path))
	}
	return nil
}

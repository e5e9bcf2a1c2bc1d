package config

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"anspacker/internal/logger"
)

// Logger holds logger configuration
type Logger struct {
	Level string
	JSON  bool
}

// Flags returns CLI flags for logger configuration
func (c *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &c.Level,
			Sources:     cli.EnvVars("ANSPACKER_LOG_LEVEL"),
		},
		&cli.BoolFlag{
			Name:        "log-json",
			Usage:       "Output logs in JSON format",
			Value:       false,
			Destination: &c.JSON,
			Sources:     cli.EnvVars("ANSPACKER_LOG_JSON"),
		},
	}
}

// Configure builds a logger writing to w
func (c *Logger) Configure(w io.Writer) (logger.Logger, error) {
	level, err := logger.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	if c.JSON {
		return logger.NewZerolog(w, level), nil
	}
	return logger.NewZerolog(zerolog.ConsoleWriter{Out: w}, level), nil
}

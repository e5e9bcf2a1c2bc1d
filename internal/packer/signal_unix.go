//go:build !windows

package packer

import (
	"os"
)

func interrupt(p *os.Process) error {
	return p.Signal(os.Interrupt)
}

//go:build windows

package packer

import (
	"os"
)

// interrupt is a no-op: os.Interrupt cannot be delivered to another
// process on Windows, Kill is the only way to stop it.
func interrupt(p *os.Process) error {
	return nil
}

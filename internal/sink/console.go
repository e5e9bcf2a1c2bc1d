package sink

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"anspacker/internal/packer"
)

// ConsoleSink prints leveled lines to a terminal, one color per level.
type ConsoleSink struct {
	mu     sync.Mutex
	out    io.Writer
	colors map[packer.Level]*color.Color
}

func NewConsoleSink(out io.Writer, noColor bool) *ConsoleSink {
	colors := map[packer.Level]*color.Color{
		packer.LevelInfo:    color.New(color.FgCyan),
		packer.LevelWarning: color.New(color.FgYellow),
		packer.LevelError:   color.New(color.FgRed, color.Bold),
		packer.LevelSuccess: color.New(color.FgGreen),
	}
	for _, c := range colors {
		if noColor {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
	}

	return &ConsoleSink{out: out, colors: colors}
}

func (s *ConsoleSink) Log(message string, level packer.Level) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.colors[level]; ok {
		c.Fprintln(s.out, message)
		return
	}
	fmt.Fprintln(s.out, message)
}

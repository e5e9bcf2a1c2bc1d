package packer

import (
	"bufio"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"sync"
)

const maxLineSize = 1024 * 1024

// process is a child whose stdout and stderr share one pipe, so lines
// arrive in the order the child wrote them.
type process struct {
	cmd       *exec.Cmd
	out       *os.File
	closeOnce sync.Once
}

func newCommand(ctx context.Context, argv []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	// environment and working directory are inherited
	return cmd
}

func startCombined(cmd *exec.Cmd) (*process, error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, err
	}
	// the child holds its own copy of the write end
	pw.Close()

	return &process{cmd: cmd, out: pr}, nil
}

// forEachLine calls fn for every non-blank line until the child closes its
// output or the reader is closed by closeOutput. Lines longer than
// maxLineSize are truncated and the rest of the line is discarded, so the
// pipe keeps draining.
func (p *process) forEachLine(fn func(line string)) {
	reader := bufio.NewReaderSize(p.out, 64*1024)
	var buf []byte
	truncated := false
	emit := func() {
		line := strings.TrimSpace(strings.ToValidUTF8(string(buf), "\uFFFD"))
		buf = buf[:0]
		truncated = false
		if line != "" {
			fn(line)
		}
	}
	for {
		chunk, err := reader.ReadSlice('\n')
		if !truncated {
			if room := maxLineSize - len(buf); len(chunk) > room {
				chunk = chunk[:room]
				truncated = true
			}
			buf = append(buf, chunk...)
		}
		switch {
		case err == nil:
			emit()
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		default:
			if len(buf) > 0 {
				emit()
			}
			return
		}
	}
}

func (p *process) wait() error {
	err := p.cmd.Wait()
	p.closeOutput()
	return err
}

func (p *process) closeOutput() {
	p.closeOnce.Do(func() {
		p.out.Close()
	})
}

// terminate asks the child to exit and then kills it straight away.
func (p *process) terminate() error {
	if p.cmd.Process == nil {
		return nil
	}
	_ = interrupt(p.cmd.Process)
	err := p.cmd.Process.Kill()
	p.closeOutput()
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

func exitCode(err error) (int, bool) {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), true
	}
	return 0, false
}

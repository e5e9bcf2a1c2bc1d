package packer_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"anspacker/internal/packer"
	"anspacker/internal/sink"
)

// fakeInterpreter writes a shell script standing in for python. The script
// sees the same argv the real interpreter would: $1 is -m, $2 the module.
func fakeInterpreter(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake interpreter scripts need a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "python")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

const versionOK = `if [ "$3" = "--version" ]; then echo "6.0.0"; exit 0; fi
`

func mainFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.py")
	require.NoError(t, os.WriteFile(path, []byte("print('hi')\n"), 0o600))
	return path
}

func waitClosed(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(10 * time.Second):
		t.Fatal("run did not finish in time")
	}
}

// logged reports whether rec holds a line containing substr at level.
func logged(rec *sink.Recorder, substr string, level packer.Level) bool {
	for _, e := range rec.Entries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

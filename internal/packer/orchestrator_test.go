package packer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anspacker/internal/events"
	"anspacker/internal/models"
	"anspacker/internal/packer"
	"anspacker/internal/sink"
)

func newConfig(t *testing.T) *models.PackConfig {
	cfg := models.NewPackConfig()
	cfg.MainFile = mainFile(t)
	return cfg
}

func TestOrchestrator_SuccessfulRun(t *testing.T) {
	interp := fakeInterpreter(t, versionOK+`
echo "123 INFO: Analyzing app.py"
echo "Error: module not found" >&2
echo "plain output"
echo "Build complete"
exit 0
`)
	o := packer.NewOrchestrator(packer.Tool{Interpreter: interp})
	rec := &sink.Recorder{}

	require.NoError(t, o.Start(context.Background(), newConfig(t), rec))
	waitClosed(t, o.Done())

	assert.False(t, o.IsRunning())
	assert.True(t, logged(rec, "123 INFO: Analyzing app.py", packer.LevelInfo))
	assert.True(t, logged(rec, "Error: module not found", packer.LevelError))
	assert.True(t, logged(rec, "plain output", packer.LevelPlain))
	assert.True(t, logged(rec, "Build complete", packer.LevelSuccess))
	assert.True(t, logged(rec, "Packaging completed successfully", packer.LevelSuccess))
	assert.True(t, logged(rec, "Output directory: dist", packer.LevelSuccess))
	assert.True(t, logged(rec, "Command: "+interp+" -m PyInstaller --onefile --noconsole --clean", packer.LevelInfo))

	assert.Len(t, o.Timings().Timings(packer.PhaseInstall), 1)
	assert.Len(t, o.Timings().Timings(packer.PhaseBuild), 1)
}

func TestOrchestrator_OutputLinesInOrder(t *testing.T) {
	interp := fakeInterpreter(t, versionOK+`
echo one
echo two >&2
echo three
`)
	o := packer.NewOrchestrator(packer.Tool{Interpreter: interp})
	rec := &sink.Recorder{}

	require.NoError(t, o.Start(context.Background(), newConfig(t), rec))
	waitClosed(t, o.Done())

	var got []string
	for _, e := range rec.Entries() {
		if e.Message == "one" || e.Message == "two" || e.Message == "three" {
			got = append(got, e.Message)
		}
	}
	assert.Equal(t, []string{"one", "two", "three"}, got)
}

func TestOrchestrator_ReportsOutputDir(t *testing.T) {
	interp := fakeInterpreter(t, versionOK+"exit 0\n")
	o := packer.NewOrchestrator(packer.Tool{Interpreter: interp})
	rec := &sink.Recorder{}
	cfg := newConfig(t)
	cfg.OutputDir = t.TempDir()

	require.NoError(t, o.Start(context.Background(), cfg, rec))
	waitClosed(t, o.Done())

	assert.True(t, logged(rec, "Output directory: "+filepath.Join(cfg.OutputDir, "dist"), packer.LevelSuccess))
}

func TestOrchestrator_NonZeroExit(t *testing.T) {
	interp := fakeInterpreter(t, versionOK+`
echo "something went sideways"
exit 3
`)
	o := packer.NewOrchestrator(packer.Tool{Interpreter: interp})
	rec := &sink.Recorder{}

	require.NoError(t, o.Start(context.Background(), newConfig(t), rec))
	waitClosed(t, o.Done())

	assert.False(t, o.IsRunning())
	assert.True(t, logged(rec, "Packaging failed! Exit code: 3", packer.LevelError))
	assert.False(t, logged(rec, "completed successfully", packer.LevelSuccess))
}

func TestOrchestrator_ValidationBeforeSpawn(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "spawned")
	interp := fakeInterpreter(t, `touch "`+marker+`"
exit 0
`)
	o := packer.NewOrchestrator(packer.Tool{Interpreter: interp})

	tests := []struct {
		name    string
		mutate  func(c *models.PackConfig)
		wantErr error
	}{
		{name: "no main file", mutate: func(c *models.PackConfig) { c.MainFile = "" }, wantErr: models.ErrMainFileRequired},
		{name: "missing main file", mutate: func(c *models.PackConfig) { c.MainFile = "/definitely/not/here.py" }, wantErr: models.ErrMainFileMissing},
		{name: "missing icon", mutate: func(c *models.PackConfig) { c.IconFile = "/nope.ico" }, wantErr: models.ErrIconMissing},
		{name: "missing resource", mutate: func(c *models.PackConfig) { c.Resources = []string{"/nope"} }, wantErr: models.ErrResourceMissing},
		{name: "missing output dir", mutate: func(c *models.PackConfig) { c.OutputDir = "/nope/out" }, wantErr: models.ErrOutputDirMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newConfig(t)
			tt.mutate(cfg)
			rec := &sink.Recorder{}

			err := o.Start(context.Background(), cfg, rec)

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.False(t, o.IsRunning())
			require.Len(t, rec.Entries(), 1)
			assert.Equal(t, packer.LevelError, rec.Entries()[0].Level)
		})
	}

	o.Wait()
	_, statErr := os.Stat(marker)
	assert.True(t, os.IsNotExist(statErr), "no process may be spawned for an invalid record")
}

func TestOrchestrator_RejectsSecondStart(t *testing.T) {
	interp := fakeInterpreter(t, versionOK+`
echo "Analyzing"
exec sleep 30
`)
	o := packer.NewOrchestrator(packer.Tool{Interpreter: interp})
	first := &sink.Recorder{}
	second := &sink.Recorder{}

	require.NoError(t, o.Start(context.Background(), newConfig(t), first))
	running := o.Done()

	err := o.Start(context.Background(), newConfig(t), second)

	require.ErrorIs(t, err, packer.ErrRunActive)
	assert.True(t, o.IsRunning())
	assert.True(t, logged(second, "already in progress", packer.LevelWarning))
	select {
	case <-running:
		t.Fatal("first run must keep running")
	default:
	}

	require.True(t, o.Stop())
	o.Wait()
}

func TestOrchestrator_StopAllowsImmediateRestart(t *testing.T) {
	interp := fakeInterpreter(t, versionOK+`
echo "Processing"
exec sleep 30
`)
	o := packer.NewOrchestrator(packer.Tool{Interpreter: interp})
	rec := &sink.Recorder{}

	require.NoError(t, o.Start(context.Background(), newConfig(t), rec))
	require.Eventually(t, func() bool {
		return logged(rec, "Processing", packer.LevelInfo)
	}, 5*time.Second, 10*time.Millisecond)

	start := time.Now()
	assert.True(t, o.Stop())
	assert.False(t, o.IsRunning())

	require.NoError(t, o.Start(context.Background(), newConfig(t), &sink.Recorder{}))
	assert.True(t, o.IsRunning())
	assert.True(t, o.Stop())

	o.Wait()
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.False(t, o.IsRunning())
	assert.True(t, logged(rec, "Packaging stopped", packer.LevelWarning))
	assert.False(t, logged(rec, "Packaging failed", packer.LevelError))
}

func TestOrchestrator_OversizedLineKeepsDraining(t *testing.T) {
	interp := fakeInterpreter(t, versionOK+`
head -c 2000000 /dev/zero | tr '\0' 'a'; echo
i=0
while [ $i -lt 20000 ]; do echo "line $i"; i=$((i+1)); done
echo "Build complete"
`)
	o := packer.NewOrchestrator(packer.Tool{Interpreter: interp})
	rec := &sink.Recorder{}

	require.NoError(t, o.Start(context.Background(), newConfig(t), rec))
	waitClosed(t, o.Done())

	assert.False(t, o.IsRunning())
	assert.True(t, logged(rec, "line 19999", packer.LevelPlain))
	assert.True(t, logged(rec, "Build complete", packer.LevelSuccess))
	assert.True(t, logged(rec, "Packaging completed successfully", packer.LevelSuccess))

	var longest int
	for _, e := range rec.Entries() {
		longest = max(longest, len(e.Message))
	}
	assert.Equal(t, 1<<20, longest)
}

func TestOrchestrator_StoppedRunDoesNotWriteIntoNextRun(t *testing.T) {
	ready := filepath.Join(t.TempDir(), "installed")
	interp := fakeInterpreter(t, `
if [ "$3" = "--version" ]; then
	if [ -f "`+ready+`" ]; then echo "6.0.0"; exit 0; fi
	exit 1
fi
if [ "$2" = "pip" ]; then echo "Collecting"; exec sleep 30; fi
echo "Build complete"
`)
	o := packer.NewOrchestrator(packer.Tool{Interpreter: interp})
	rec := &sink.Recorder{}

	require.NoError(t, o.Start(context.Background(), newConfig(t), rec))
	require.Eventually(t, func() bool {
		return logged(rec, "[PIP] Collecting", packer.LevelInfo)
	}, 5*time.Second, 10*time.Millisecond)

	require.True(t, o.Stop())
	assert.True(t, logged(rec, "Packaging stopped", packer.LevelWarning))

	require.NoError(t, os.WriteFile(ready, nil, 0o600))
	rec.Reset()
	require.NoError(t, o.Start(context.Background(), newConfig(t), rec))
	waitClosed(t, o.Done())
	o.Wait()

	entries := rec.Entries()
	require.NotEmpty(t, entries)
	assert.True(t, logged(rec, "Packaging completed successfully", packer.LevelSuccess))
	assert.False(t, logged(rec, "Installation canceled", packer.LevelWarning))
	assert.False(t, logged(rec, "Packaging stopped", packer.LevelWarning))
	for _, e := range entries {
		assert.NotContains(t, e.Message, "[PIP]")
	}
}

func TestOrchestrator_StopWhenIdle(t *testing.T) {
	o := packer.NewOrchestrator(packer.Tool{Interpreter: "python3"})

	assert.False(t, o.Stop())
	assert.False(t, o.IsRunning())
	waitClosed(t, o.Done())
}

func TestOrchestrator_StopDuringInstall(t *testing.T) {
	interp := fakeInterpreter(t, `
if [ "$3" = "--version" ]; then exit 1; fi
if [ "$2" = "pip" ]; then echo "Collecting"; exec sleep 30; fi
echo "packaging should never start"
`)
	o := packer.NewOrchestrator(packer.Tool{Interpreter: interp})
	rec := &sink.Recorder{}

	require.NoError(t, o.Start(context.Background(), newConfig(t), rec))
	require.Eventually(t, func() bool {
		return logged(rec, "[PIP] Collecting", packer.LevelInfo)
	}, 5*time.Second, 10*time.Millisecond)

	assert.True(t, o.Stop())
	o.Wait()

	assert.False(t, logged(rec, "packaging should never start", packer.LevelPlain))
	assert.False(t, logged(rec, "Cannot continue", packer.LevelError))
}

func TestOrchestrator_InstallFailureAborts(t *testing.T) {
	interp := fakeInterpreter(t, `
if [ "$3" = "--version" ]; then exit 1; fi
if [ "$2" = "pip" ]; then exit 1; fi
echo "packaging should never start"
`)
	o := packer.NewOrchestrator(packer.Tool{Interpreter: interp})
	rec := &sink.Recorder{}

	require.NoError(t, o.Start(context.Background(), newConfig(t), rec))
	waitClosed(t, o.Done())

	assert.False(t, o.IsRunning())
	assert.True(t, logged(rec, "Cannot continue packaging", packer.LevelError))
	assert.False(t, logged(rec, "packaging should never start", packer.LevelPlain))
}

func TestOrchestrator_SpawnFailure(t *testing.T) {
	interp := fakeInterpreter(t, versionOK+"exit 0\n")
	installer := packer.NewInstaller(packer.Tool{Interpreter: interp})
	// the check passes through a working interpreter, the run itself
	// points at one that does not exist
	o := packer.NewOrchestrator(
		packer.Tool{Interpreter: filepath.Join(t.TempDir(), "gone")},
		packer.WithInstaller(installer),
	)
	rec := &sink.Recorder{}

	require.NoError(t, o.Start(context.Background(), newConfig(t), rec))
	waitClosed(t, o.Done())

	assert.False(t, o.IsRunning())
	assert.True(t, logged(rec, "was not found", packer.LevelError))
}

func TestOrchestrator_PublishesEvents(t *testing.T) {
	interp := fakeInterpreter(t, versionOK+"exit 0\n")
	bus := events.NewBus(16)
	defer bus.Shutdown()

	var mu sync.Mutex
	var got []string
	seen := make(chan struct{}, 4)
	record := events.HandlerFunc{ID: "test", Fn: func(e events.Event) {
		mu.Lock()
		got = append(got, e.Type)
		mu.Unlock()
		seen <- struct{}{}
	}}
	bus.Subscribe(events.RunStarted, record)
	bus.Subscribe(events.RunSucceeded, record)

	o := packer.NewOrchestrator(packer.Tool{Interpreter: interp}, packer.WithEventBus(bus))
	require.NoError(t, o.Start(context.Background(), newConfig(t), &sink.Recorder{}))
	waitClosed(t, o.Done())

	for i := 0; i < 2; i++ {
		select {
		case <-seen:
		case <-time.After(5 * time.Second):
			t.Fatal("event not delivered")
		}
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{events.RunStarted, events.RunSucceeded}, got)
}

func TestOrchestrator_ContextCancelKillsRun(t *testing.T) {
	interp := fakeInterpreter(t, versionOK+`
echo "Analyzing"
exec sleep 30
`)
	o := packer.NewOrchestrator(packer.Tool{Interpreter: interp})
	rec := &sink.Recorder{}
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, o.Start(ctx, newConfig(t), rec))
	require.Eventually(t, func() bool {
		return logged(rec, "Analyzing", packer.LevelInfo)
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	waitClosed(t, o.Done())
	assert.False(t, o.IsRunning())
	assert.True(t, logged(rec, "Packaging stopped", packer.LevelWarning))
	assert.False(t, logged(rec, "Packaging failed", packer.LevelError))
}

func TestOrchestrator_Shutdown(t *testing.T) {
	interp := fakeInterpreter(t, versionOK+`
echo "Processing"
exec sleep 30
`)
	o := packer.NewOrchestrator(packer.Tool{Interpreter: interp})
	rec := &sink.Recorder{}

	require.NoError(t, o.Start(context.Background(), newConfig(t), rec))
	require.Eventually(t, func() bool {
		return logged(rec, "Processing", packer.LevelInfo)
	}, 5*time.Second, 10*time.Millisecond)

	o.Shutdown()
	assert.False(t, o.IsRunning())
	waitClosed(t, o.Done())

	o.Shutdown()
}

func TestOrchestrator_RunResult(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		interp := fakeInterpreter(t, versionOK+"echo done\n")
		o := packer.NewOrchestrator(packer.Tool{Interpreter: interp})

		require.NoError(t, o.Run(context.Background(), newConfig(t), &sink.Recorder{}))
		assert.False(t, o.IsRunning())
	})

	t.Run("non-zero exit", func(t *testing.T) {
		interp := fakeInterpreter(t, versionOK+"exit 3\n")
		o := packer.NewOrchestrator(packer.Tool{Interpreter: interp})

		err := o.Run(context.Background(), newConfig(t), &sink.Recorder{})
		require.ErrorIs(t, err, packer.ErrBuildFailed)
		assert.Contains(t, err.Error(), "exit code 3")
	})

	t.Run("invalid config", func(t *testing.T) {
		o := packer.NewOrchestrator(packer.Tool{Interpreter: "python3"})

		err := o.Run(context.Background(), models.NewPackConfig(), &sink.Recorder{})
		require.ErrorIs(t, err, models.ErrMainFileRequired)
	})

	t.Run("tool not found", func(t *testing.T) {
		working := fakeInterpreter(t, versionOK)
		tool := packer.Tool{Interpreter: filepath.Join(t.TempDir(), "gone")}
		o := packer.NewOrchestrator(tool,
			packer.WithInstaller(packer.NewInstaller(packer.Tool{Interpreter: working})))

		err := o.Run(context.Background(), newConfig(t), &sink.Recorder{})
		require.ErrorIs(t, err, packer.ErrToolNotFound)
	})

	t.Run("canceled", func(t *testing.T) {
		interp := fakeInterpreter(t, versionOK+"echo Processing\nexec sleep 30\n")
		o := packer.NewOrchestrator(packer.Tool{Interpreter: interp})
		rec := &sink.Recorder{}

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			for !logged(rec, "Processing", packer.LevelInfo) {
				time.Sleep(10 * time.Millisecond)
			}
			cancel()
		}()

		err := o.Run(ctx, newConfig(t), rec)
		require.ErrorIs(t, err, packer.ErrCanceled)
	})
}

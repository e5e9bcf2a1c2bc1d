package packer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"anspacker/internal/events"
	"anspacker/internal/logger"
	"anspacker/internal/models"
	"anspacker/internal/timing"
)

const (
	PhaseInstall = "install"
	PhaseBuild   = "build"
)

// Orchestrator turns a PackConfig into one child process at a time and
// narrates the outcome to a Sink.
type Orchestrator struct {
	tool      Tool
	installer *Installer
	logger    logger.Logger
	bus       *events.Bus
	timings   *timing.Tracker

	running atomic.Bool
	wg      sync.WaitGroup

	mu      sync.Mutex
	current *run
}

// run is owned by its worker goroutine; Stop only touches it under
// Orchestrator.mu.
type run struct {
	id      string
	cfg     *models.PackConfig
	ctx     context.Context
	cancel  context.CancelFunc
	proc    *process
	out     *gate
	stopped bool
	done    chan struct{}
	err     error
}

type Option func(*Orchestrator)

func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

func WithEventBus(bus *events.Bus) Option {
	return func(o *Orchestrator) { o.bus = bus }
}

func WithInstaller(i *Installer) Option {
	return func(o *Orchestrator) { o.installer = i }
}

func NewOrchestrator(tool Tool, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		tool:    tool,
		logger:  logger.NoOpLogger{},
		timings: timing.NewTracker(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.installer == nil {
		o.installer = NewInstaller(tool, WithInstallerLogger(o.logger))
	}
	return o
}

func (o *Orchestrator) Tool() Tool {
	return o.tool
}

// Timings holds the duration of every install and build phase run so far.
func (o *Orchestrator) Timings() *timing.Tracker {
	return o.timings
}

// IsRunning reports whether a run is active.
func (o *Orchestrator) IsRunning() bool {
	return o.running.Load()
}

// Done is closed when the worker of the current run exits. With no run in
// progress the returned channel is already closed.
func (o *Orchestrator) Done() <-chan struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.current == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return o.current.done
}

// Wait blocks until every worker goroutine, including those of stopped
// runs still draining output, has returned.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Start validates cfg and launches the run in the background. A second
// request while a run is active is rejected with ErrRunActive and a
// warning; it is never queued.
func (o *Orchestrator) Start(ctx context.Context, cfg *models.PackConfig, sink Sink) error {
	_, err := o.start(ctx, cfg, sink)
	return err
}

// Run is Start followed by waiting for the worker. The result is nil on
// success, ErrCanceled after Stop, ErrBuildFailed for a non-zero exit, or
// the installer or spawn error that ended the run.
func (o *Orchestrator) Run(ctx context.Context, cfg *models.PackConfig, sink Sink) error {
	r, err := o.start(ctx, cfg, sink)
	if err != nil {
		return err
	}
	<-r.done
	return r.err
}

func (o *Orchestrator) start(ctx context.Context, cfg *models.PackConfig, sink Sink) (*run, error) {
	if o.running.Load() {
		sink.Log("A packaging run is already in progress!", LevelWarning)
		return nil, ErrRunActive
	}

	if err := cfg.Validate(); err != nil {
		sink.Log(err.Error(), LevelError)
		o.logger.Warning("Orchestrator", "configuration rejected", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	if !o.running.CompareAndSwap(false, true) {
		sink.Log("A packaging run is already in progress!", LevelWarning)
		return nil, ErrRunActive
	}

	runCtx, cancel := context.WithCancel(ctx)
	r := &run{
		id:     uuid.NewString(),
		cfg:    cfg.Clone(),
		ctx:    runCtx,
		cancel: cancel,
		out:    &gate{sink: sink},
		done:   make(chan struct{}),
	}

	o.mu.Lock()
	o.current = r
	o.mu.Unlock()

	o.publish(events.RunStarted, r, nil)
	o.logger.Info("Orchestrator", "run started", map[string]interface{}{
		"run_id":    r.id,
		"main_file": r.cfg.MainFile,
	})

	o.wg.Add(1)
	go o.execute(r, r.out)
	return r, nil
}

// Stop terminates the active run: interrupt, then kill immediately. The
// orchestrator accepts a new Start as soon as Stop returns; anything the
// stopped worker still writes is dropped so it cannot leak into the next
// run's log.
func (o *Orchestrator) Stop() bool {
	o.mu.Lock()
	r := o.current
	if r == nil || !o.running.Load() {
		o.mu.Unlock()
		return false
	}

	r.stopped = true
	r.cancel()
	var err error
	if r.proc != nil {
		err = r.proc.terminate()
	}
	r.out.closeWith("Packaging stopped", LevelWarning)
	o.current = nil
	o.running.Store(false)
	o.mu.Unlock()

	if err != nil {
		o.logger.Error("Orchestrator", goerr.Wrap(err, "failed to stop process"), map[string]interface{}{
			"run_id": r.id,
		})
	}
	o.logger.Info("Orchestrator", "run stopped", map[string]interface{}{"run_id": r.id})
	o.publish(events.RunStopped, r, nil)
	return true
}

// Shutdown stops any active run and waits for its worker to exit.
func (o *Orchestrator) Shutdown() {
	if o.Stop() {
		o.logger.Info("Orchestrator", "active run stopped on shutdown", nil)
	}
	o.Wait()
}

func (o *Orchestrator) execute(r *run, sink Sink) {
	defer o.wg.Done()
	defer close(r.done)
	defer o.release(r)
	defer func() {
		if rec := recover(); rec != nil {
			r.err = goerr.Wrap(ErrUnexpected, "panic in run", goerr.V("panic", fmt.Sprint(rec)))
			sink.Log(fmt.Sprintf("Unexpected error: %v", rec), LevelError)
			sink.Log(fmt.Sprintf("Error type: %T", rec), LevelError)
			o.logger.Error("Orchestrator", fmt.Errorf("panic in run: %v", rec), map[string]interface{}{
				"run_id": r.id,
			})
			o.publish(events.RunFailed, r, map[string]interface{}{"error": fmt.Sprint(rec)})
		}
	}()

	stopInstall := o.timings.Start(PhaseInstall)
	err := o.installer.Ensure(r.ctx, sink)
	stopInstall()
	if err != nil {
		r.err = err
		switch {
		case o.wasStopped(r):
			r.err = ErrCanceled
		case errors.Is(err, ErrCanceled):
			o.publish(events.RunStopped, r, nil)
		default:
			sink.Log("Cannot continue packaging, please install "+o.tool.module()+" manually", LevelError)
			o.publish(events.RunFailed, r, map[string]interface{}{"error": err.Error()})
		}
		return
	}

	argv := BuildCommand(o.tool, r.cfg, runtime.GOOS)
	sink.Log(separator, LevelInfo)
	sink.Log("Building "+o.tool.module()+" command...", LevelInfo)
	sink.Log("Command: "+FormatCommand(argv), LevelInfo)
	sink.Log(separator, LevelInfo)

	stopBuild := o.timings.Start(PhaseBuild)
	proc, err := o.spawn(r, argv)
	if err != nil {
		if errors.Is(err, ErrCanceled) {
			r.err = ErrCanceled
			return
		}
		r.err = o.reportSpawnError(r, err, sink)
		return
	}

	proc.forEachLine(func(line string) {
		sink.Log(line, Classify(line))
	})
	waitErr := proc.wait()
	elapsed := stopBuild()

	if o.wasStopped(r) {
		r.err = ErrCanceled
		return
	}
	// A canceled parent context ends the run like Stop does.
	if r.ctx.Err() != nil {
		r.err = ErrCanceled
		sink.Log("Packaging stopped", LevelWarning)
		o.publish(events.RunStopped, r, nil)
		return
	}

	if waitErr == nil {
		sink.Log(separator, LevelSuccess)
		sink.Log("Packaging completed successfully!", LevelSuccess)
		sink.Log("Output directory: "+outputLocation(r.cfg), LevelSuccess)
		sink.Log(separator, LevelSuccess)
		o.logger.Info("Orchestrator", "run succeeded", map[string]interface{}{
			"run_id":      r.id,
			"duration_ms": elapsed.Milliseconds(),
		})
		o.publish(events.RunSucceeded, r, map[string]interface{}{
			"output":   outputLocation(r.cfg),
			"duration": elapsed,
			"average":  o.timings.Average(PhaseBuild),
		})
		return
	}

	if code, ok := exitCode(waitErr); ok {
		r.err = goerr.Wrap(ErrBuildFailed, fmt.Sprintf("exit code %d", code), goerr.V("exit_code", code))
		sink.Log(separator, LevelError)
		sink.Log(fmt.Sprintf("Packaging failed! Exit code: %d", code), LevelError)
		sink.Log(separator, LevelError)
		o.logger.Warning("Orchestrator", "run failed", map[string]interface{}{
			"run_id":    r.id,
			"exit_code": code,
		})
		o.publish(events.RunFailed, r, map[string]interface{}{"exit_code": code})
		return
	}

	r.err = goerr.Wrap(ErrUnexpected, waitErr.Error())
	sink.Log("Unexpected error: "+waitErr.Error(), LevelError)
	sink.Log(fmt.Sprintf("Error type: %T", waitErr), LevelError)
	o.logger.Error("Orchestrator", waitErr, map[string]interface{}{"run_id": r.id})
	o.publish(events.RunFailed, r, map[string]interface{}{"error": waitErr.Error()})
}

// spawn starts the child under the lock so Stop either sees the process
// or prevents it from being started at all.
func (o *Orchestrator) spawn(r *run, argv []string) (*process, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if r.stopped {
		return nil, ErrCanceled
	}

	proc, err := startCombined(newCommand(r.ctx, argv))
	if err != nil {
		return nil, err
	}
	r.proc = proc

	o.logger.Debug("Orchestrator", "process spawned", map[string]interface{}{
		"run_id": r.id,
		"pid":    proc.cmd.Process.Pid,
	})
	return proc, nil
}

func (o *Orchestrator) reportSpawnError(r *run, err error, sink Sink) error {
	result := goerr.Wrap(ErrUnexpected, err.Error())
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		result = goerr.Wrap(ErrToolNotFound, err.Error(), goerr.V("interpreter", o.tool.Interpreter))
		sink.Log("Error: "+o.tool.module()+" or Python was not found, please check the installation", LevelError)
	} else {
		sink.Log("Unexpected error: "+err.Error(), LevelError)
		sink.Log(fmt.Sprintf("Error type: %T", err), LevelError)
	}
	o.logger.Error("Orchestrator", goerr.Wrap(err, "failed to spawn tool"), map[string]interface{}{
		"run_id":      r.id,
		"interpreter": o.tool.Interpreter,
	})
	o.publish(events.RunFailed, r, map[string]interface{}{"error": err.Error()})
	return result
}

func (o *Orchestrator) wasStopped(r *run) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return r.stopped
}

// release clears the active flag unless a Stop (and possibly a newer run)
// already took over.
func (o *Orchestrator) release(r *run) {
	o.mu.Lock()
	defer o.mu.Unlock()

	r.cancel()
	if o.current == r {
		o.current = nil
		o.running.Store(false)
	}
}

// gate forwards lines to the caller's sink until the run is stopped.
type gate struct {
	mu     sync.Mutex
	sink   Sink
	closed bool
}

func (g *gate) Log(message string, level Level) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.closed {
		g.sink.Log(message, level)
	}
}

// closeWith writes a final line and drops everything after it.
func (g *gate) closeWith(message string, level Level) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.closed {
		g.sink.Log(message, level)
		g.closed = true
	}
}

func (o *Orchestrator) publish(eventType string, r *run, data map[string]interface{}) {
	if o.bus == nil {
		return
	}
	o.bus.Publish(events.Event{Type: eventType, RunID: r.id, Data: data})
}

func outputLocation(cfg *models.PackConfig) string {
	if cfg.OutputDir == "" {
		return "dist"
	}
	return filepath.Join(cfg.OutputDir, "dist")
}

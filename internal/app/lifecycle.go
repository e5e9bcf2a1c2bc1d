package app

import (
	"sync"

	"anspacker/internal/events"
	"anspacker/internal/gui"
	"anspacker/internal/logger"
	"anspacker/internal/packer"
	"anspacker/internal/shutdown"
)

type Lifecycle struct {
	manager *shutdown.Manager
	logger  logger.Logger
	once    sync.Once
}

// NewLifecycle registers components so that shutdown runs in reverse:
// orchestrator first, then the GUI manager, then the event bus.
func NewLifecycle(log logger.Logger, o *packer.Orchestrator, gm *gui.Manager, bus *events.Bus) *Lifecycle {
	manager := shutdown.NewManager(log)
	manager.Register(bus)
	manager.Register(gm)
	manager.Register(o)

	return &Lifecycle{
		manager: manager,
		logger:  log,
	}
}

func (l *Lifecycle) Shutdown() {
	l.once.Do(func() {
		l.logger.Info("Lifecycle", "shutdown sequence initiated", nil)
		l.manager.Shutdown()
		l.logger.Info("Lifecycle", "shutdown sequence completed", nil)
	})
}

func (l *Lifecycle) Done() <-chan struct{} {
	return l.manager.Done()
}

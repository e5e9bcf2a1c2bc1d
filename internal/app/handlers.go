package app

import (
	"context"
	"errors"

	"anspacker/internal/gui"
	"anspacker/internal/logger"
	"anspacker/internal/models"
	"anspacker/internal/packer"
	"anspacker/internal/sink"
)

type Handlers struct {
	orchestrator *packer.Orchestrator
	guiManager   *gui.Manager
	logger       logger.Logger
}

func NewHandlers(o *packer.Orchestrator, gm *gui.Manager, log logger.Logger) *Handlers {
	return &Handlers{
		orchestrator: o,
		guiManager:   gm,
		logger:       log,
	}
}

// HandleStart clears the log of the previous run and launches a new one.
// Output goes to the log view and, mirrored, to the structured logger.
func (h *Handlers) HandleStart(cfg *models.PackConfig) {
	logView := h.guiManager.LogView()
	if !h.orchestrator.IsRunning() {
		logView.Clear()
	}

	out := sink.Multi(logView, sink.NewLoggerSink(h.logger, map[string]interface{}{
		"main_file": cfg.MainFile,
	}))

	err := h.orchestrator.Start(context.Background(), cfg, out)
	switch {
	case err == nil:
	case errors.Is(err, packer.ErrRunActive):
		h.guiManager.UpdateStatus("A packaging run is already in progress")
	default:
		h.guiManager.ShowError("Failed to start packaging", err)
	}
}

func (h *Handlers) HandleStop() {
	if !h.orchestrator.Stop() {
		h.logger.Debug("Handlers", "stop requested with no active run", nil)
	}
}

package gui

import (
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"anspacker/internal/events"
	"anspacker/internal/gui/components"
	"anspacker/internal/logger"
	"anspacker/internal/models"
)

const ProjectURL = "https://github.com/Ancylx/AnsPacker"

type Manager struct {
	window     fyne.Window
	logger     logger.Logger
	isShutdown atomic.Bool

	form      *components.FileForm
	logView   *components.LogView
	controls  *components.Controls
	statusBar *components.StatusBar

	startHandler func(*models.PackConfig)
	stopHandler  func()
	openURL      func(*url.URL) error
}

func NewManager(window fyne.Window, log logger.Logger) *Manager {
	m := &Manager{
		window:    window,
		logger:    log,
		form:      components.NewFileForm(window),
		logView:   components.NewLogView(),
		controls:  components.NewControls(),
		statusBar: components.NewStatusBar(),
		openURL: func(u *url.URL) error {
			return fyne.CurrentApp().OpenURL(u)
		},
	}

	m.controls.SetStartHandler(m.onStart)
	m.controls.SetStopHandler(m.onStop)
	m.controls.SetClearHandler(m.onClear)
	m.controls.SetAboutHandler(m.onAbout)

	log.Info("GUIManager", "initialized", nil)
	return m
}

func (m *Manager) GetMainContainer() fyne.CanvasObject {
	clearLog := widget.NewButtonWithIcon("Clear Log", theme.DeleteIcon(), m.logView.Clear)
	copyLog := widget.NewButtonWithIcon("Copy Log", theme.ContentCopyIcon(), m.copyLog)

	logPanel := widget.NewCard("Output", "", container.NewBorder(
		nil, container.NewHBox(clearLog, copyLog), nil, nil,
		m.logView.GetContainer(),
	))

	left := container.NewBorder(
		nil, m.controls.GetContainer(), nil, nil,
		container.NewVScroll(m.form.GetContainer()),
	)

	split := container.NewHSplit(left, logPanel)
	split.SetOffset(0.45)

	return container.NewBorder(nil, m.statusBar.GetContainer(), nil, nil, split)
}

func (m *Manager) GetWindow() fyne.Window {
	return m.window
}

func (m *Manager) Form() *components.FileForm {
	return m.form
}

func (m *Manager) Controls() *components.Controls {
	return m.controls
}

func (m *Manager) StatusBar() *components.StatusBar {
	return m.statusBar
}

// LogView is the sink the GUI hands to the orchestrator.
func (m *Manager) LogView() *components.LogView {
	return m.logView
}

// SetStartHandler receives configurations that passed pre-flight validation.
func (m *Manager) SetStartHandler(handler func(*models.PackConfig)) {
	m.startHandler = handler
}

func (m *Manager) SetStopHandler(handler func()) {
	m.stopHandler = handler
}

func (m *Manager) SetURLOpener(open func(*url.URL) error) {
	m.openURL = open
}

func (m *Manager) onStart() {
	cfg := m.form.Gather()
	if err := cfg.Validate(); err != nil {
		m.logger.Warning("GUIManager", "configuration rejected", map[string]interface{}{
			"error": err.Error(),
		})
		m.ShowError("Invalid configuration", err)
		return
	}

	m.logger.Debug("GUIManager", "start requested", map[string]interface{}{
		"main_file": cfg.MainFile,
	})
	if m.startHandler != nil {
		m.startHandler(cfg)
	}
}

func (m *Manager) onStop() {
	m.logger.Debug("GUIManager", "stop requested", nil)
	if m.stopHandler != nil {
		m.stopHandler()
	}
}

func (m *Manager) onClear() {
	dialog.ShowConfirm("Confirm", "Clear all configuration?", func(ok bool) {
		if ok {
			m.ClearConfiguration()
		}
	}, m.window)
}

// ClearConfiguration resets the form to defaults and empties the log.
func (m *Manager) ClearConfiguration() {
	m.form.Reset()
	m.logView.Clear()
	m.logger.Info("GUIManager", "configuration cleared", nil)
}

func (m *Manager) onAbout() {
	u, err := url.Parse(ProjectURL)
	if err != nil {
		m.ShowError("About", err)
		return
	}
	if err := m.openURL(u); err != nil {
		m.logger.Error("GUIManager", err, map[string]interface{}{"url": ProjectURL})
		m.ShowError("About", err)
	}
}

func (m *Manager) copyLog() {
	fyne.CurrentApp().Clipboard().SetContent(m.logView.Text())
	m.UpdateStatus("Log copied to clipboard")
}

func (m *Manager) ShowError(title string, err error) {
	m.logger.Error("GUIManager", err, map[string]interface{}{"title": title})
	fyne.Do(func() {
		dialog.ShowError(fmt.Errorf("%s: %w", title, err), m.window)
	})
}

func (m *Manager) UpdateStatus(status string) {
	fyne.Do(func() {
		m.statusBar.SetStatus(status)
	})
}

// SetRunning flips controls and the activity indicator together.
func (m *Manager) SetRunning(running bool, runID string) {
	fyne.Do(func() {
		m.controls.SetRunning(running)
		m.statusBar.SetRunning(running, runID)
	})
}

// Subscribe registers the manager for every run lifecycle event on bus.
func (m *Manager) Subscribe(bus *events.Bus) {
	for _, t := range []string{events.RunStarted, events.RunSucceeded, events.RunFailed, events.RunStopped} {
		bus.Subscribe(t, m)
	}
}

func (m *Manager) GetID() string {
	return "gui-manager"
}

func (m *Manager) Handle(event events.Event) {
	if m.isShutdown.Load() {
		return
	}

	switch event.Type {
	case events.RunStarted:
		m.SetRunning(true, event.RunID)
		m.UpdateStatus("Packaging...")
	case events.RunSucceeded:
		m.SetRunning(false, "")
		if d, ok := event.Data["duration"].(time.Duration); ok {
			took := d.Round(100 * time.Millisecond).String()
			if avg, ok := event.Data["average"].(time.Duration); ok && avg > 0 {
				took += fmt.Sprintf(" (average %s)", avg.Round(100*time.Millisecond))
			}
			m.UpdateStatus(fmt.Sprintf("Completed in %s: %v", took, event.Data["output"]))
		} else {
			m.UpdateStatus(fmt.Sprintf("Completed: %v", event.Data["output"]))
		}
	case events.RunFailed:
		m.SetRunning(false, "")
		if code, ok := event.Data["exit_code"]; ok {
			m.UpdateStatus(fmt.Sprintf("Failed (exit code %v)", code))
		} else {
			m.UpdateStatus("Failed")
		}
	case events.RunStopped:
		m.SetRunning(false, "")
		m.UpdateStatus("Stopped")
	}

	m.logger.Debug("GUIManager", "run event handled", map[string]interface{}{
		"type":   event.Type,
		"run_id": event.RunID,
	})
}

func (m *Manager) Shutdown() {
	if !m.isShutdown.CompareAndSwap(false, true) {
		return
	}
	m.logger.Info("GUIManager", "shutdown completed", nil)
}

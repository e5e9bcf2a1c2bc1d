package app

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"anspacker/internal/events"
	"anspacker/internal/gui"
	"anspacker/internal/logger"
	"anspacker/internal/packer"
)

const (
	AppName         = "AnsPacker"
	AppID           = "io.github.ancylx.anspacker"
	AppVersion      = "1.0.0"
	MinWindowWidth  = 1100
	MinWindowHeight = 720
	EventBufferSize = 64
)

// Config carries what the command line resolved before the window opens.
type Config struct {
	Logger    logger.Logger
	Tool      packer.Tool
	Installer []packer.InstallerOption
}

type Application struct {
	fyneApp      fyne.App
	window       fyne.Window
	guiManager   *gui.Manager
	orchestrator *packer.Orchestrator
	bus          *events.Bus
	logger       logger.Logger
	lifecycle    *Lifecycle
}

func NewApplication(cfg Config) *Application {
	return newApplication(app.NewWithID(AppID), cfg)
}

func newApplication(fyneApp fyne.App, cfg Config) *Application {
	log := cfg.Logger
	if log == nil {
		log = logger.NoOpLogger{}
	}

	window := fyneApp.NewWindow(AppName)
	window.Resize(fyne.NewSize(MinWindowWidth, MinWindowHeight))
	window.CenterOnScreen()
	window.SetMaster()

	log.Info("Application", "starting application", map[string]interface{}{
		"version":     AppVersion,
		"interpreter": cfg.Tool.Interpreter,
	})

	bus := events.NewBus(EventBufferSize)
	installer := packer.NewInstaller(cfg.Tool, append([]packer.InstallerOption{
		packer.WithInstallerLogger(log),
	}, cfg.Installer...)...)
	orchestrator := packer.NewOrchestrator(cfg.Tool,
		packer.WithLogger(log),
		packer.WithEventBus(bus),
		packer.WithInstaller(installer),
	)

	guiManager := gui.NewManager(window, log)
	guiManager.Subscribe(bus)

	a := &Application{
		fyneApp:      fyneApp,
		window:       window,
		guiManager:   guiManager,
		orchestrator: orchestrator,
		bus:          bus,
		logger:       log,
		lifecycle:    NewLifecycle(log, orchestrator, guiManager, bus),
	}
	a.setupHandlers()

	log.Info("Application", "initialization complete", nil)
	return a
}

func (a *Application) setupHandlers() {
	handlers := NewHandlers(a.orchestrator, a.guiManager, a.logger)

	a.guiManager.SetStartHandler(handlers.HandleStart)
	a.guiManager.SetStopHandler(handlers.HandleStop)
}

func (a *Application) Run() error {
	a.window.SetCloseIntercept(func() {
		a.logger.Info("Application", "shutdown requested", nil)
		a.lifecycle.Shutdown()
		a.window.Close()
	})

	a.window.SetContent(a.guiManager.GetMainContainer())
	a.window.Show()

	a.logger.Info("Application", "GUI displayed", nil)
	a.fyneApp.Run()

	a.lifecycle.Shutdown()
	return nil
}

func (a *Application) Lifecycle() *Lifecycle {
	return a.lifecycle
}

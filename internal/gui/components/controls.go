package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Controls is the row of run buttons under the form.
type Controls struct {
	container   *fyne.Container
	StartButton *widget.Button
	StopButton  *widget.Button
	ClearButton *widget.Button
	AboutButton *widget.Button

	startHandler func()
	stopHandler  func()
	clearHandler func()
	aboutHandler func()
}

func NewControls() *Controls {
	c := &Controls{}

	c.StartButton = widget.NewButtonWithIcon("Start Packaging", theme.MediaPlayIcon(), c.onStart)
	c.StartButton.Importance = widget.HighImportance

	c.StopButton = widget.NewButtonWithIcon("Stop", theme.MediaStopIcon(), c.onStop)
	c.StopButton.Importance = widget.DangerImportance
	c.StopButton.Disable()

	c.ClearButton = widget.NewButtonWithIcon("Clear Configuration", theme.ContentClearIcon(), c.onClear)
	c.AboutButton = widget.NewButtonWithIcon("About", theme.InfoIcon(), c.onAbout)

	c.container = container.NewHBox(
		c.StartButton,
		c.StopButton,
		widget.NewSeparator(),
		c.ClearButton,
		c.AboutButton,
	)
	return c
}

func (c *Controls) GetContainer() *fyne.Container {
	return c.container
}

func (c *Controls) SetStartHandler(handler func()) {
	c.startHandler = handler
}

func (c *Controls) SetStopHandler(handler func()) {
	c.stopHandler = handler
}

func (c *Controls) SetClearHandler(handler func()) {
	c.clearHandler = handler
}

func (c *Controls) SetAboutHandler(handler func()) {
	c.aboutHandler = handler
}

// SetRunning swaps which of Start and Stop is clickable.
func (c *Controls) SetRunning(running bool) {
	if running {
		c.StartButton.Disable()
		c.StopButton.Enable()
		c.ClearButton.Disable()
		return
	}
	c.StartButton.Enable()
	c.StopButton.Disable()
	c.ClearButton.Enable()
}

func (c *Controls) onStart() {
	if c.startHandler != nil {
		c.startHandler()
	}
}

func (c *Controls) onStop() {
	if c.stopHandler != nil {
		c.stopHandler()
	}
}

func (c *Controls) onClear() {
	if c.clearHandler != nil {
		c.clearHandler()
	}
}

func (c *Controls) onAbout() {
	if c.aboutHandler != nil {
		c.aboutHandler()
	}
}

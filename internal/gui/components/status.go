package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

type StatusBar struct {
	container   *fyne.Container
	statusLabel *widget.Label
	runLabel    *widget.Label
	activity    *widget.ProgressBarInfinite
}

func NewStatusBar() *StatusBar {
	statusLabel := widget.NewLabel("Ready")
	runLabel := widget.NewLabel("")
	runLabel.TextStyle = fyne.TextStyle{Monospace: true}

	activity := widget.NewProgressBarInfinite()
	activity.Stop()
	activity.Hide()

	mainContainer := container.NewBorder(
		nil, nil,
		statusLabel,
		runLabel,
		activity,
	)

	return &StatusBar{
		container:   mainContainer,
		statusLabel: statusLabel,
		runLabel:    runLabel,
		activity:    activity,
	}
}

func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}

func (sb *StatusBar) SetStatus(status string) {
	sb.statusLabel.SetText(status)
}

func (sb *StatusBar) Status() string {
	return sb.statusLabel.Text
}

// SetRunning toggles the activity bar and shows a short form of runID.
func (sb *StatusBar) SetRunning(running bool, runID string) {
	if running {
		sb.runLabel.SetText(shortID(runID))
		sb.activity.Show()
		sb.activity.Start()
		return
	}
	sb.activity.Stop()
	sb.activity.Hide()
	sb.runLabel.SetText("")
}

func (sb *StatusBar) Running() bool {
	return sb.activity.Visible()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

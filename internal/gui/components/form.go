package components

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"anspacker/internal/models"
)

const presetPlaceholder = "Select a common parameter..."

// FileForm collects every field of a models.PackConfig.
type FileForm struct {
	window    fyne.Window
	container *fyne.Container

	MainEntry   *widget.Entry
	OutputEntry *widget.Entry
	IconEntry   *widget.Entry
	NameEntry   *widget.Entry
	ExtraEntry  *widget.Entry

	OneFileCheck   *widget.Check
	NoConsoleCheck *widget.Check
	DebugCheck     *widget.Check
	CleanCheck     *widget.Check

	PresetSelect *widget.Select
	PresetLabel  *widget.Label

	ResourceList *widget.List
	resources    []string
	selected     int
}

func NewFileForm(window fyne.Window) *FileForm {
	f := &FileForm{window: window, selected: -1}
	f.setupFields()
	f.Reset()
	return f
}

func (f *FileForm) setupFields() {
	f.MainEntry = newEntry("Path to the main .py script")
	f.OutputEntry = newEntry("Default: ./dist")
	f.IconEntry = newEntry("Optional .ico file")
	f.NameEntry = newEntry("Defaults to the script name")
	f.ExtraEntry = newEntry("Additional PyInstaller arguments")

	f.OneFileCheck = widget.NewCheck("Single file (--onefile)", nil)
	f.NoConsoleCheck = widget.NewCheck("Hide console (--noconsole)", nil)
	f.DebugCheck = widget.NewCheck("Debug mode (--debug=all)", nil)
	f.CleanCheck = widget.NewCheck("Clean temp files (--clean)", nil)

	f.PresetLabel = widget.NewLabel("")
	f.PresetLabel.Wrapping = fyne.TextWrapWord
	f.PresetSelect = widget.NewSelect(models.PresetFlags(), f.onPresetSelected)
	f.PresetSelect.PlaceHolder = presetPlaceholder

	f.ResourceList = widget.NewList(
		func() int { return len(f.resources) },
		func() fyne.CanvasObject { return widget.NewLabel("resource") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(f.resources[id])
		},
	)
	f.ResourceList.OnSelected = func(id widget.ListItemID) { f.selected = id }
	f.ResourceList.OnUnselected = func(widget.ListItemID) { f.selected = -1 }

	addButton := widget.NewButtonWithIcon("Add", theme.ContentAddIcon(), f.browseResource)
	removeButton := widget.NewButtonWithIcon("Remove", theme.ContentRemoveIcon(), f.RemoveSelectedResource)

	resourceScroll := container.NewVScroll(f.ResourceList)
	resourceScroll.SetMinSize(fyne.NewSize(0, 90))

	form := widget.NewForm(
		widget.NewFormItem("Main file", withBrowse(f.MainEntry, f.browseMainFile)),
		widget.NewFormItem("Icon", withBrowse(f.IconEntry, f.browseIcon)),
		widget.NewFormItem("Output dir", withBrowse(f.OutputEntry, f.browseOutputDir)),
		widget.NewFormItem("Name", f.NameEntry),
		widget.NewFormItem("Resources", container.NewBorder(
			nil, container.NewHBox(addButton, removeButton), nil, nil, resourceScroll,
		)),
	)

	options := container.NewGridWithColumns(2,
		f.OneFileCheck, f.NoConsoleCheck,
		f.DebugCheck, f.CleanCheck,
	)

	extra := widget.NewForm(
		widget.NewFormItem("Presets", f.PresetSelect),
		widget.NewFormItem("Extra args", f.ExtraEntry),
	)

	f.container = container.NewVBox(
		widget.NewCard("Files", "", form),
		widget.NewCard("Options", "", container.NewVBox(options, extra, f.PresetLabel)),
	)
}

func (f *FileForm) GetContainer() *fyne.Container {
	return f.container
}

// Gather snapshots the widgets into a fresh record.
func (f *FileForm) Gather() *models.PackConfig {
	cfg := models.NewPackConfig()
	cfg.MainFile = strings.TrimSpace(f.MainEntry.Text)
	cfg.OutputDir = strings.TrimSpace(f.OutputEntry.Text)
	cfg.IconFile = strings.TrimSpace(f.IconEntry.Text)
	cfg.Name = strings.TrimSpace(f.NameEntry.Text)
	cfg.ExtraParams = strings.TrimSpace(f.ExtraEntry.Text)
	cfg.Resources = f.Resources()
	cfg.OneFile = f.OneFileCheck.Checked
	cfg.NoConsole = f.NoConsoleCheck.Checked
	cfg.Debug = f.DebugCheck.Checked
	cfg.Clean = f.CleanCheck.Checked
	return cfg
}

// Apply copies cfg into the widgets.
func (f *FileForm) Apply(cfg *models.PackConfig) {
	f.MainEntry.SetText(cfg.MainFile)
	f.OutputEntry.SetText(cfg.OutputDir)
	f.IconEntry.SetText(cfg.IconFile)
	f.NameEntry.SetText(cfg.Name)
	f.ExtraEntry.SetText(cfg.ExtraParams)
	f.OneFileCheck.SetChecked(cfg.OneFile)
	f.NoConsoleCheck.SetChecked(cfg.NoConsole)
	f.DebugCheck.SetChecked(cfg.Debug)
	f.CleanCheck.SetChecked(cfg.Clean)

	f.resources = append([]string(nil), cfg.Resources...)
	f.selected = -1
	f.ResourceList.UnselectAll()
	f.ResourceList.Refresh()
}

// Reset restores the defaults of a new record and clears the preset hint.
func (f *FileForm) Reset() {
	f.Apply(models.NewPackConfig())
	f.PresetSelect.ClearSelected()
	f.PresetLabel.SetText("")
}

func (f *FileForm) Resources() []string {
	return append([]string(nil), f.resources...)
}

func (f *FileForm) AddResources(paths ...string) {
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			f.resources = append(f.resources, p)
		}
	}
	f.ResourceList.Refresh()
}

// RemoveSelectedResource drops the highlighted list row, if any.
func (f *FileForm) RemoveSelectedResource() {
	if f.selected < 0 || f.selected >= len(f.resources) {
		return
	}
	f.resources = append(f.resources[:f.selected], f.resources[f.selected+1:]...)
	f.selected = -1
	f.ResourceList.UnselectAll()
	f.ResourceList.Refresh()
}

func (f *FileForm) onPresetSelected(flag string) {
	desc, ok := models.PresetDescription(flag)
	if !ok {
		return
	}
	f.ExtraEntry.SetText(models.AppendParam(f.ExtraEntry.Text, flag))
	f.PresetLabel.SetText("Description: " + desc)
}

func (f *FileForm) browseMainFile() {
	f.openFile([]string{".py", ".pyw"}, f.MainEntry.SetText)
}

func (f *FileForm) browseIcon() {
	f.openFile([]string{".ico"}, f.IconEntry.SetText)
}

func (f *FileForm) browseResource() {
	f.openFile(nil, func(path string) { f.AddResources(path) })
}

func (f *FileForm) browseOutputDir() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, f.window)
			return
		}
		if uri == nil {
			return
		}
		f.OutputEntry.SetText(uri.Path())
	}, f.window)
}

func (f *FileForm) openFile(extensions []string, set func(string)) {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, f.window)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		set(path)
	}, f.window)
	if len(extensions) > 0 {
		fd.SetFilter(storage.NewExtensionFileFilter(extensions))
	}
	fd.Show()
}

func newEntry(placeholder string) *widget.Entry {
	e := widget.NewEntry()
	e.SetPlaceHolder(placeholder)
	return e
}

func withBrowse(entry *widget.Entry, browse func()) fyne.CanvasObject {
	button := widget.NewButtonWithIcon("", theme.FolderOpenIcon(), browse)
	return container.NewBorder(nil, nil, nil, button, entry)
}

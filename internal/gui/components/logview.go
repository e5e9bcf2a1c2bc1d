package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"anspacker/internal/packer"
	"anspacker/internal/sink"
)

const DefaultLogLimit = 5000

// LogView renders leveled run output. It satisfies packer.Sink and may be
// written to from any goroutine.
type LogView struct {
	text     *widget.RichText
	scroll   *container.Scroll
	recorder *sink.Recorder
	limit    int
}

func NewLogView() *LogView {
	text := widget.NewRichText()
	text.Wrapping = fyne.TextWrapWord

	scroll := container.NewVScroll(text)
	scroll.SetMinSize(fyne.NewSize(480, 360))

	return &LogView{
		text:     text,
		scroll:   scroll,
		recorder: &sink.Recorder{},
		limit:    DefaultLogLimit,
	}
}

func (lv *LogView) GetContainer() fyne.CanvasObject {
	return lv.scroll
}

func (lv *LogView) Log(message string, level packer.Level) {
	lv.recorder.Log(message, level)

	fyne.Do(func() {
		lv.text.Segments = append(lv.text.Segments, &widget.TextSegment{
			Text:  message,
			Style: segmentStyle(level),
		})
		if extra := len(lv.text.Segments) - lv.limit; extra > 0 {
			lv.text.Segments = lv.text.Segments[extra:]
		}
		lv.text.Refresh()
		lv.scroll.ScrollToBottom()
	})
}

func (lv *LogView) Clear() {
	lv.recorder.Reset()

	fyne.Do(func() {
		lv.text.Segments = nil
		lv.text.Refresh()
		lv.scroll.ScrollToTop()
	})
}

// Text returns everything logged since the last Clear, one line per entry.
func (lv *LogView) Text() string {
	return lv.recorder.Text()
}

func (lv *LogView) Entries() []sink.Entry {
	return lv.recorder.Entries()
}

// LineCount is the number of rendered segments.
func (lv *LogView) LineCount() int {
	return len(lv.text.Segments)
}

func segmentStyle(level packer.Level) widget.RichTextStyle {
	style := widget.RichTextStyle{
		ColorName: levelColor(level),
		SizeName:  theme.SizeNameText,
		TextStyle: fyne.TextStyle{Monospace: true},
	}
	if level == packer.LevelError {
		style.TextStyle.Bold = true
	}
	return style
}

func levelColor(level packer.Level) fyne.ThemeColorName {
	switch level {
	case packer.LevelError:
		return theme.ColorNameError
	case packer.LevelWarning:
		return theme.ColorNameWarning
	case packer.LevelSuccess:
		return theme.ColorNameSuccess
	case packer.LevelInfo:
		return theme.ColorNamePrimary
	default:
		return theme.ColorNameForeground
	}
}

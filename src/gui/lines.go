package gui

import (
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// selectAllHighlight is how long Select all keeps every line highlighted.
const selectAllHighlight = time.Second

// newLineRow is the list template: a label over a background that lights up
// while the lines are selected.
func newLineRow() fyne.CanvasObject {
	bg := canvas.NewRectangle(color.Transparent)
	return container.NewStack(bg, widget.NewLabel(""))
}

func updateLineRow(obj fyne.CanvasObject, text string, highlighted bool) {
	row := obj.(*fyne.Container)
	bg := row.Objects[0].(*canvas.Rectangle)
	label := row.Objects[1].(*widget.Label)

	fill := color.Color(color.Transparent)
	if highlighted {
		fill = theme.Color(theme.ColorNameSelection)
	}
	if bg.FillColor != fill {
		bg.FillColor = fill
		bg.Refresh()
	}
	label.SetText(text)
}

// selectAll highlights every recognized line for a moment.
func (u *UI) selectAll() {
	if len(u.lines) == 0 {
		return
	}
	u.highlight.Show("all")
}

// setHighlighted must run on the UI thread.
func (u *UI) setHighlighted(on bool) {
	if u.highlighted == on {
		return
	}
	u.highlighted = on
	u.linesList.Refresh()
}

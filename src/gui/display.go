package gui

import (
	"context"
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"odins-eye/src/capture"
)

// PickDisplay asks which display to capture. It blocks the calling goroutine,
// never the UI thread, and returns capture.ErrCancelled when dismissed.
func (u *UI) PickDisplay(ctx context.Context, displays []image.Rectangle) (int, error) {
	labels := displayLabels(displays)
	picked := make(chan int, 1)

	fyne.Do(func() {
		sel := widget.NewSelect(labels, nil)
		sel.SetSelectedIndex(0)
		d := dialog.NewCustomConfirm("Capture display", "Capture", "Cancel", sel, func(ok bool) {
			if ok {
				picked <- sel.SelectedIndex()
				return
			}
			picked <- -1
		}, u.win)
		d.Show()
	})

	select {
	case idx := <-picked:
		if idx < 0 {
			return 0, capture.ErrCancelled
		}
		return idx, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func displayLabels(displays []image.Rectangle) []string {
	labels := make([]string, len(displays))
	for i, b := range displays {
		labels[i] = fmt.Sprintf("Display %d (%dx%d at %d,%d)", i+1, b.Dx(), b.Dy(), b.Min.X, b.Min.Y)
	}
	return labels
}

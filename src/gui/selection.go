package gui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"odins-eye/src/eventloop"
	"odins-eye/src/region"
)

// Poster is the event loop as seen by widgets.
type Poster interface {
	Post(ev eventloop.Event) bool
}

// selectionArea shows the rendered overlay and turns mouse gestures into
// preview-space pointer events.
type selectionArea struct {
	widget.BaseWidget
	img     *canvas.Image
	preview image.Point
	post    func(eventloop.Event)
}

func newSelectionArea(post func(eventloop.Event)) *selectionArea {
	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillStretch
	img.ScaleMode = canvas.ImageScaleFastest
	a := &selectionArea{img: img, post: post}
	a.ExtendBaseWidget(a)
	return a
}

func (a *selectionArea) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(a.img)
}

// setFrame swaps in a freshly rendered overlay. Must run on the UI thread.
func (a *selectionArea) setFrame(frame image.Image) {
	a.preview = frame.Bounds().Size()
	a.img.Image = frame
	a.img.Refresh()
}

// MouseDown implements desktop.Mouseable.
func (a *selectionArea) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	a.post(eventloop.PointerDown{At: a.toPreview(ev.Position)})
}

// MouseUp implements desktop.Mouseable.
func (a *selectionArea) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	a.post(eventloop.PointerUp{})
}

// Dragged implements fyne.Draggable.
func (a *selectionArea) Dragged(ev *fyne.DragEvent) {
	a.post(eventloop.PointerMove{At: a.toPreview(ev.Position)})
}

// DragEnd implements fyne.Draggable. A second PointerUp after MouseUp is a no-op.
func (a *selectionArea) DragEnd() {
	a.post(eventloop.PointerUp{})
}

// Cursor implements desktop.Cursorable.
func (a *selectionArea) Cursor() desktop.Cursor {
	return desktop.CrosshairCursor
}

func (a *selectionArea) toPreview(pos fyne.Position) region.Point {
	return previewPoint(pos, a.Size(), a.preview)
}

// previewPoint maps a widget position to preview pixels. The preview is
// stretched over the widget, so each axis scales on its own.
func previewPoint(pos fyne.Position, size fyne.Size, preview image.Point) region.Point {
	if size.Width <= 0 || size.Height <= 0 {
		return region.Point{X: float64(pos.X), Y: float64(pos.Y)}
	}
	x := float64(pos.X) * float64(preview.X) / float64(size.Width)
	y := float64(pos.Y) * float64(preview.Y) / float64(size.Height)
	return region.Point{
		X: clamp(x, 0, float64(preview.X)),
		Y: clamp(y, 0, float64(preview.Y)),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

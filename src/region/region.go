// Package region converts a selection dragged on the downscaled preview into
// a pixel rectangle on the full-resolution frame.
package region

import (
	"fmt"
	"image"
	"math"
)

// MinUsableSize is the smallest crop edge, in source pixels, worth sending to OCR.
const MinUsableSize = 10

// Point is a pointer position in preview (display) coordinates.
type Point struct {
	X, Y float64
}

// Selection is the rectangle spanned by the drag start and the current pointer.
// It is never stored normalized; Bounds derives the box on demand.
type Selection struct {
	Start   Point
	Current Point
}

// Bounds returns the normalized box: per-axis min and max of Start and Current.
func (s Selection) Bounds() (x1, y1, x2, y2 float64) {
	x1 = math.Min(s.Start.X, s.Current.X)
	y1 = math.Min(s.Start.Y, s.Current.Y)
	x2 = math.Max(s.Start.X, s.Current.X)
	y2 = math.Max(s.Start.Y, s.Current.Y)
	return x1, y1, x2, y2
}

// Empty reports whether the selection has zero area in display space.
func (s Selection) Empty() bool {
	x1, y1, x2, y2 := s.Bounds()
	return x2 <= x1 || y2 <= y1
}

// Rect is a rectangle in frame (source) pixel space.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Image returns r as an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Usable reports whether both edges reach min pixels.
func (r Rect) Usable(min int) bool {
	return r.Width >= min && r.Height >= min
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d@%d,%d", r.Width, r.Height, r.X, r.Y)
}

// Scale holds the independent per-axis factors from preview to frame space:
// ScaleX = frame width / preview width, ScaleY = frame height / preview height.
type Scale struct {
	X, Y float64
}

// MapToSource converts a display-space selection into frame pixels.
//
// The top-left corner is floored and the bottom-right corner is ceiled, so the
// result never drops a pixel the user visibly included. The rectangle is
// clamped to [0,frameW] x [0,frameH]. ok is false when nothing remains.
func MapToSource(sel Selection, scale Scale, frameW, frameH int) (Rect, bool) {
	x1, y1, x2, y2 := sel.Bounds()

	sx1 := max(0, int(math.Floor(x1*scale.X)))
	sy1 := max(0, int(math.Floor(y1*scale.Y)))
	sx2 := min(frameW, int(math.Ceil(x2*scale.X)))
	sy2 := min(frameH, int(math.Ceil(y2*scale.Y)))

	if sx2 <= sx1 || sy2 <= sy1 {
		return Rect{}, false
	}
	return Rect{X: sx1, Y: sy1, Width: sx2 - sx1, Height: sy2 - sy1}, true
}

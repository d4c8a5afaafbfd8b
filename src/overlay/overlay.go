// Package overlay paints the region-selection overlay: the preview image, a
// dimming mask outside the selection and a dashed outline around it.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"odins-eye/src/session"
)

const (
	DefaultOutline   = "#c9a227"
	DefaultMask      = "#000000"
	DefaultMaskAlpha = 0.35
)

// Style controls how the selection is drawn.
type Style struct {
	Outline      color.NRGBA
	OutlineWidth int
	// Dash alternates on and off run lengths along the outline.
	Dash []int
	Mask color.NRGBA
}

// DefaultStyle is a gold dashed outline over a 35% black mask.
func DefaultStyle() Style {
	s, err := ParseStyle(DefaultOutline, DefaultMask, DefaultMaskAlpha)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseStyle builds a Style from hex colours and a mask opacity in [0,1].
func ParseStyle(outlineHex, maskHex string, maskAlpha float64) (Style, error) {
	outline, err := colorful.Hex(outlineHex)
	if err != nil {
		return Style{}, fmt.Errorf("outline colour: %w", err)
	}
	mask, err := colorful.Hex(maskHex)
	if err != nil {
		return Style{}, fmt.Errorf("mask colour: %w", err)
	}
	if maskAlpha < 0 || maskAlpha > 1 {
		return Style{}, fmt.Errorf("mask alpha %.2f outside [0,1]", maskAlpha)
	}
	or, og, ob := outline.RGB255()
	mr, mg, mb := mask.RGB255()
	return Style{
		Outline:      color.NRGBA{R: or, G: og, B: ob, A: 255},
		OutlineWidth: 2,
		Dash:         []int{6, 4},
		Mask:         color.NRGBA{R: mr, G: mg, B: mb, A: uint8(math.Round(maskAlpha * 255))},
	}, nil
}

// Renderer repaints the whole overlay on every call. It keeps one canvas and
// the preview fitted to that canvas between calls, so high-frequency pointer
// moves only cost a copy plus the mask. Not safe for concurrent use.
type Renderer struct {
	style   Style
	canvas  *image.RGBA
	fitted  image.Image
	fitFrom image.Image
	mask    *image.Uniform
	outline *image.Uniform
}

func NewRenderer(style Style) *Renderer {
	if style.OutlineWidth <= 0 {
		style.OutlineWidth = 1
	}
	return &Renderer{
		style:   style,
		mask:    image.NewUniform(style.Mask),
		outline: image.NewUniform(style.Outline),
	}
}

// Render paints snap onto a canvas of the given size. Selection coordinates
// are in preview space and are stretched to the canvas. The returned image is
// reused by the next call.
func (r *Renderer) Render(snap session.Snapshot, size image.Point) *image.RGBA {
	if size.X <= 0 || size.Y <= 0 {
		return image.NewRGBA(image.Rectangle{})
	}
	if r.canvas == nil || r.canvas.Bounds().Size() != size {
		r.canvas = image.NewRGBA(image.Rectangle{Max: size})
	}
	bounds := r.canvas.Bounds()

	if snap.Preview == nil {
		draw.Draw(r.canvas, bounds, image.Transparent, image.Point{}, draw.Src)
		return r.canvas
	}
	fitted := r.fit(snap.Preview, size)
	draw.Draw(r.canvas, bounds, fitted, fitted.Bounds().Min, draw.Src)

	if !snap.HasSelection {
		return r.canvas
	}

	pb := snap.Preview.Bounds()
	fx := float64(size.X) / float64(pb.Dx())
	fy := float64(size.Y) / float64(pb.Dy())
	x1, y1, x2, y2 := snap.Selection.Bounds()
	sel := clampRect(image.Rect(
		int(math.Round(x1*fx)), int(math.Round(y1*fy)),
		int(math.Round(x2*fx)), int(math.Round(y2*fy)),
	), bounds)

	r.paintMask(sel)
	r.strokeDashed(sel)
	return r.canvas
}

// clampRect pins sel inside b corner by corner. Unlike Intersect it keeps a
// zero-width or zero-height drag where it is, so the outline still shows as a line.
func clampRect(sel, b image.Rectangle) image.Rectangle {
	return image.Rectangle{
		Min: image.Pt(clampInt(sel.Min.X, b.Min.X, b.Max.X), clampInt(sel.Min.Y, b.Min.Y, b.Max.Y)),
		Max: image.Pt(clampInt(sel.Max.X, b.Min.X, b.Max.X), clampInt(sel.Max.Y, b.Min.Y, b.Max.Y)),
	}
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func (r *Renderer) fit(preview image.Image, size image.Point) image.Image {
	if preview.Bounds().Size() == size {
		return preview
	}
	if r.fitFrom == preview && r.fitted != nil && r.fitted.Bounds().Size() == size {
		return r.fitted
	}
	r.fitted = imaging.Resize(preview, size.X, size.Y, imaging.Linear)
	r.fitFrom = preview
	return r.fitted
}

// paintMask dims the four bands around sel: above, left, right, below.
func (r *Renderer) paintMask(sel image.Rectangle) {
	b := r.canvas.Bounds()
	bands := []image.Rectangle{
		image.Rect(b.Min.X, b.Min.Y, b.Max.X, sel.Min.Y),
		image.Rect(b.Min.X, sel.Min.Y, sel.Min.X, sel.Max.Y),
		image.Rect(sel.Max.X, sel.Min.Y, b.Max.X, sel.Max.Y),
		image.Rect(b.Min.X, sel.Max.Y, b.Max.X, b.Max.Y),
	}
	for _, band := range bands {
		if band.Empty() {
			continue
		}
		draw.Draw(r.canvas, band, r.mask, image.Point{}, draw.Over)
	}
}

// strokeDashed walks the outline clockwise from the top-left corner, keeping
// the dash phase continuous around corners. The stroke is centred on the edge.
func (r *Renderer) strokeDashed(sel image.Rectangle) {
	corners := []image.Point{
		sel.Min,
		{X: sel.Max.X, Y: sel.Min.Y},
		sel.Max,
		{X: sel.Min.X, Y: sel.Max.Y},
	}
	phase := 0
	for i := range corners {
		phase = r.dashEdge(corners[i], corners[(i+1)%len(corners)], phase)
	}
}

func (r *Renderer) dashEdge(from, to image.Point, phase int) int {
	dx, dy := sign(to.X-from.X), sign(to.Y-from.Y)
	length := abs(to.X-from.X) + abs(to.Y-from.Y)
	w := r.style.OutlineWidth
	half := w / 2

	for t := 0; t < length; {
		on, run := dashAt(r.style.Dash, phase+t)
		seg := min(run, length-t)
		if on {
			a := image.Point{X: from.X + dx*t, Y: from.Y + dy*t}
			b := image.Point{X: from.X + dx*(t+seg), Y: from.Y + dy*(t+seg)}
			stroke := image.Rectangle{Min: a, Max: b}.Canon()
			if dy == 0 {
				stroke.Min.Y, stroke.Max.Y = a.Y-half, a.Y-half+w
			} else {
				stroke.Min.X, stroke.Max.X = a.X-half, a.X-half+w
			}
			draw.Draw(r.canvas, stroke.Intersect(r.canvas.Bounds()), r.outline, image.Point{}, draw.Src)
		}
		t += seg
	}
	return phase + length
}

// dashAt reports whether offset p along the path is inside a dash, and how
// many pixels remain in the current run.
func dashAt(pattern []int, p int) (on bool, run int) {
	total := 0
	for _, d := range pattern {
		total += d
	}
	if total <= 0 {
		return true, math.MaxInt32
	}
	p %= total
	for i, d := range pattern {
		if p < d {
			return i%2 == 0, d - p
		}
		p -= d
	}
	return true, 1
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

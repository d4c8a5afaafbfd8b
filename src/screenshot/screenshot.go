package screenshot

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/kbinani/screenshot"

	"odins-eye/src/region"
)

// VirtualDisplay selects the union of all active displays.
const VirtualDisplay = -1

// ErrNoDisplays is returned when the platform reports no active display.
var ErrNoDisplays = errors.New("no active displays found")

// Format is an output container for encoded frames.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpg"
)

// Displays returns the bounds of every active display, in virtual-screen coordinates.
func Displays() []image.Rectangle {
	n := screenshot.NumActiveDisplays()
	out := make([]image.Rectangle, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, screenshot.GetDisplayBounds(i))
	}
	return out
}

// DisplayBounds returns the bounds of display i, or of the whole virtual
// screen when i is VirtualDisplay.
func DisplayBounds(i int) (image.Rectangle, error) {
	displays := Displays()
	if len(displays) == 0 {
		return image.Rectangle{}, ErrNoDisplays
	}
	if i == VirtualDisplay {
		union := displays[0]
		for _, b := range displays[1:] {
			union = union.Union(b)
		}
		return union, nil
	}
	if i < 0 || i >= len(displays) {
		return image.Rectangle{}, fmt.Errorf("display %d out of range (have %d)", i, len(displays))
	}
	return displays[i], nil
}

// CaptureBounds grabs one still frame of the given virtual-screen rectangle
// at native resolution. The returned image is zero-origin.
func CaptureBounds(bounds image.Rectangle) (*image.RGBA, error) {
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("invalid capture bounds: width=%d, height=%d", bounds.Dx(), bounds.Dy())
	}
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture screen: %w", err)
	}
	return img, nil
}

// Crop copies exactly r out of frame. r is relative to the frame's origin
// and must lie entirely inside it.
func Crop(frame image.Image, r region.Rect) (*image.NRGBA, error) {
	if frame == nil {
		return nil, errors.New("no frame to crop")
	}
	if r.Width <= 0 || r.Height <= 0 {
		return nil, fmt.Errorf("invalid crop dimensions: width=%d, height=%d", r.Width, r.Height)
	}
	b := frame.Bounds()
	abs := r.Image().Add(b.Min)
	if !abs.In(b) {
		return nil, fmt.Errorf("crop %v exceeds frame bounds %dx%d", r, b.Dx(), b.Dy())
	}
	return imaging.Crop(frame, abs), nil
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case JPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(95))
	case PNG, "":
		return imaging.Encode(w, img, imaging.PNG)
	default:
		return fmt.Errorf("unsupported image format %q", format)
	}
}

// EncodePNG returns img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}

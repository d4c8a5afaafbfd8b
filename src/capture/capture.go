// Package capture grabs a single still frame from a screen stream, derives an
// interactive preview for it and opens a selection session over the pair.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"

	"odins-eye/src/region"
	"odins-eye/src/session"
)

// ErrCancelled is returned when the user dismisses the capture prompt. It is
// not a failure and must not be reported to the user.
var ErrCancelled = errors.New("capture cancelled by user")

// Stream is a live capture of one screen or window.
type Stream interface {
	// Ready blocks until the first frame's dimensions are known.
	Ready(ctx context.Context) (image.Point, error)
	// Grab draws one frame at the stream's native resolution.
	Grab(ctx context.Context) (*image.RGBA, error)
	// Stop releases the stream. It is safe to call more than once.
	Stop()
}

// Source opens capture streams. Open returns ErrCancelled when the user
// declines to pick a screen.
type Source interface {
	Open(ctx context.Context) (Stream, error)
}

// Viewport is the space available for the preview, with the margins kept free
// for surrounding controls.
type Viewport struct {
	Width, Height    int
	MarginX, MarginY int
}

// DefaultViewport leaves 40px horizontally and 120px vertically for controls.
func DefaultViewport(width, height int) Viewport {
	return Viewport{Width: width, Height: height, MarginX: 40, MarginY: 120}
}

// FitPreview returns the preview size for a frame of frameW x frameH inside vp
// and the per-axis factors mapping preview pixels back to frame pixels.
//
// The frame is never upscaled. Width and height are rounded independently,
// so scale.X and scale.Y may differ slightly.
func FitPreview(frameW, frameH int, vp Viewport) (image.Point, region.Scale) {
	if frameW <= 0 || frameH <= 0 {
		return image.Point{}, region.Scale{}
	}
	maxW := float64(min(vp.Width-vp.MarginX, frameW))
	maxH := float64(min(vp.Height-vp.MarginY, frameH))
	scale := math.Min(maxW/float64(frameW), maxH/float64(frameH))
	if scale <= 0 || math.IsNaN(scale) {
		scale = 1 / math.Max(float64(frameW), float64(frameH))
	}

	w := max(1, int(math.Round(float64(frameW)*scale)))
	h := max(1, int(math.Round(float64(frameH)*scale)))
	return image.Pt(w, h), region.Scale{
		X: float64(frameW) / float64(w),
		Y: float64(frameH) / float64(h),
	}
}

// Still is one grabbed frame with its preview.
type Still struct {
	Frame   *image.RGBA
	Preview image.Image
	Scale   region.Scale
}

// Orchestrator turns a capture source into selection sessions.
type Orchestrator struct {
	source   Source
	viewport func() Viewport
	timeout  time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTimeout bounds how long Grab waits for the stream.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// New creates an Orchestrator. viewport is queried on every capture so the
// preview follows the current window size.
func New(source Source, viewport func() Viewport, opts ...Option) *Orchestrator {
	o := &Orchestrator{source: source, viewport: viewport, timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Grab opens a stream, waits for its first frame, copies that frame and
// releases the stream before computing the preview. It does not touch any
// session and may run off the event loop.
func (o *Orchestrator) Grab(ctx context.Context) (*Still, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	stream, err := o.source.Open(ctx)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return nil, err
		}
		return nil, fmt.Errorf("open capture stream: %w", err)
	}

	frame, err := grabOne(ctx, stream)
	stream.Stop()
	if err != nil {
		return nil, err
	}

	vp := o.viewport()
	size, scale := FitPreview(frame.Rect.Dx(), frame.Rect.Dy(), vp)
	var preview image.Image = frame
	if size != frame.Rect.Size() {
		preview = imaging.Resize(frame, size.X, size.Y, imaging.Lanczos)
	}
	log.Info().
		Int("frame_w", frame.Rect.Dx()).
		Int("frame_h", frame.Rect.Dy()).
		Int("preview_w", size.X).
		Int("preview_h", size.Y).
		Msg("Frame captured")
	return &Still{Frame: frame, Preview: preview, Scale: scale}, nil
}

func grabOne(ctx context.Context, stream Stream) (*image.RGBA, error) {
	dims, err := stream.Ready(ctx)
	if err != nil {
		return nil, fmt.Errorf("wait for frame: %w", err)
	}
	frame, err := stream.Grab(ctx)
	if err != nil {
		return nil, fmt.Errorf("grab frame: %w", err)
	}
	if frame.Rect.Size() != dims {
		log.Debug().
			Str("announced", dims.String()).
			Str("grabbed", frame.Rect.Size().String()).
			Msg("Stream resolution changed between metadata and grab")
	}
	return frame, nil
}

// Open starts a selection session over still.
func Open(ctrl *session.Controller, still *Still) (*session.Session, error) {
	s, _, err := ctrl.Open(still.Frame, still.Preview, still.Scale)
	return s, err
}

// Begin grabs a frame and opens a session over it in one call. Callers running
// an event loop should use Grab off-loop and Open on the loop instead.
func (o *Orchestrator) Begin(ctx context.Context, ctrl *session.Controller) (*session.Session, error) {
	still, err := o.Grab(ctx)
	if err != nil {
		return nil, err
	}
	return Open(ctrl, still)
}

package capture

import (
	"context"
	"errors"
	"image"
	"sync"

	"odins-eye/src/screenshot"
)

// PickFunc lets the user choose one of several displays. It returns
// ErrCancelled when the choice is dismissed.
type PickFunc func(ctx context.Context, displays []image.Rectangle) (int, error)

// DisplaySource streams a physical display, or the whole virtual desktop when
// Display is screenshot.VirtualDisplay.
type DisplaySource struct {
	Display int
	// Pick, when set, is asked to choose a display if more than one is active.
	Pick PickFunc
}

func (d DisplaySource) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx := d.Display
	if d.Pick != nil {
		if displays := screenshot.Displays(); len(displays) > 1 {
			picked, err := d.Pick(ctx, displays)
			if err != nil {
				return nil, err
			}
			idx = picked
		}
	}
	bounds, err := screenshot.DisplayBounds(idx)
	if err != nil {
		return nil, err
	}
	return &rectStream{bounds: bounds}, nil
}

// RectSource streams a fixed virtual-screen rectangle, such as a window's bounds.
type RectSource struct {
	Bounds image.Rectangle
}

func (r RectSource) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Bounds.Empty() {
		return nil, errors.New("empty capture rectangle")
	}
	return &rectStream{bounds: r.Bounds}, nil
}

var errStreamStopped = errors.New("capture stream stopped")

type rectStream struct {
	mu      sync.Mutex
	bounds  image.Rectangle
	stopped bool
}

func (s *rectStream) Ready(ctx context.Context) (image.Point, error) {
	if err := ctx.Err(); err != nil {
		return image.Point{}, err
	}
	return s.bounds.Size(), nil
}

func (s *rectStream) Grab(ctx context.Context) (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, errStreamStopped
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return screenshot.CaptureBounds(s.bounds)
}

func (s *rectStream) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

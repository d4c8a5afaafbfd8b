// Package session tracks one capture-and-select interaction: the captured
// frame, its preview, and the rectangle the user drags over the preview.
//
// Sessions are not safe for concurrent use. Every method MUST be called from
// the single event-loop goroutine that owns the Controller.
package session

import (
	"errors"
	"fmt"
	"image"

	"github.com/rs/zerolog/log"

	"odins-eye/src/region"
	"odins-eye/src/screenshot"
)

// State is a Session lifecycle state.
type State int

const (
	Idle State = iota
	Open
	Dragging
	Locked
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Open:
		return "open"
	case Dragging:
		return "dragging"
	case Locked:
		return "locked"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrNoSelection means no usable rectangle has been dragged yet.
	ErrNoSelection = errors.New("Select an area first (drag on the image).")
	ErrNoFrame     = errors.New("no captured frame")
	ErrClosed      = errors.New("capture session is closed")
)

// Snapshot is the geometry a renderer needs for one full repaint.
type Snapshot struct {
	Preview      image.Image
	Selection    region.Selection
	HasSelection bool
	State        State
}

// RedrawFunc repaints the overlay. It is called after every transition that
// changes what is on screen, except Cancel and the confirm transitions.
type RedrawFunc func(Snapshot)

// Session owns a captured frame and its preview until it is confirmed or cancelled.
type Session struct {
	id      uint64
	frame   image.Image
	preview image.Image
	scale   region.Scale
	sel     region.Selection
	hasSel  bool
	state   State
	minSize int
	redraw  RedrawFunc
	onClose func(*Session)
}

// ID identifies the session within its Controller.
func (s *Session) ID() uint64 { return s.id }

func (s *Session) State() State { return s.state }

// Frame returns the full-resolution capture, nil once closed.
func (s *Session) Frame() image.Image { return s.frame }

// Preview returns the downscaled image shown to the user, nil once closed.
func (s *Session) Preview() image.Image { return s.preview }

func (s *Session) Scale() region.Scale { return s.scale }

// Selection returns the current display-space selection, if any.
func (s *Session) Selection() (region.Selection, bool) { return s.sel, s.hasSel }

// SourceRect maps the current selection to frame pixels.
func (s *Session) SourceRect() (region.Rect, bool) {
	if !s.hasSel || s.frame == nil {
		return region.Rect{}, false
	}
	b := s.frame.Bounds()
	return region.MapToSource(s.sel, s.scale, b.Dx(), b.Dy())
}

func (s *Session) live() bool {
	return s.state != Idle && s.state != Closed
}

// PointerDown starts a new drag at p, replacing any previous rectangle.
func (s *Session) PointerDown(p region.Point) {
	if !s.live() {
		return
	}
	s.sel = region.Selection{Start: p, Current: p}
	s.hasSel = true
	s.state = Dragging
	s.render()
}

// PointerMove extends the drag to p. It is a no-op unless dragging.
func (s *Session) PointerMove(p region.Point) {
	if s.state != Dragging {
		return
	}
	s.sel.Current = p
	s.render()
}

// PointerUp freezes the rectangle.
func (s *Session) PointerUp() {
	if s.state != Dragging {
		return
	}
	s.state = Locked
	s.render()
}

// ConfirmCrop extracts the selected rectangle from the frame and closes the
// session. A missing or too-small selection returns ErrNoSelection and leaves
// the session as it was.
func (s *Session) ConfirmCrop() (*image.NRGBA, region.Rect, error) {
	if !s.live() {
		return nil, region.Rect{}, ErrClosed
	}
	r, ok := s.SourceRect()
	if !ok || !r.Usable(s.minSize) {
		log.Debug().Str("state", s.state.String()).Str("rect", r.String()).Msg("Crop rejected: selection too small")
		return nil, region.Rect{}, ErrNoSelection
	}
	img, err := screenshot.Crop(s.frame, r)
	if err != nil {
		return nil, region.Rect{}, fmt.Errorf("crop selection: %w", err)
	}
	log.Info().Str("rect", r.String()).Uint64("session", s.id).Msg("Selection confirmed")
	s.close()
	return img, r, nil
}

// ConfirmFullFrame returns the whole frame unmodified and closes the session.
func (s *Session) ConfirmFullFrame() (image.Image, error) {
	if !s.live() {
		return nil, ErrClosed
	}
	if s.frame == nil {
		return nil, ErrNoFrame
	}
	frame := s.frame
	log.Info().Uint64("session", s.id).Msg("Full frame confirmed")
	s.close()
	return frame, nil
}

// Cancel discards the session without output.
func (s *Session) Cancel() {
	if s.state == Closed {
		return
	}
	log.Debug().Uint64("session", s.id).Str("state", s.state.String()).Msg("Session cancelled")
	s.close()
}

func (s *Session) close() {
	s.frame = nil
	s.preview = nil
	s.sel = region.Selection{}
	s.hasSel = false
	s.state = Closed
	if s.onClose != nil {
		s.onClose(s)
	}
}

func (s *Session) render() {
	if s.redraw == nil {
		return
	}
	s.redraw(Snapshot{
		Preview:      s.preview,
		Selection:    s.sel,
		HasSelection: s.hasSel,
		State:        s.state,
	})
}

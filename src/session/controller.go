package session

import (
	"errors"
	"image"

	"github.com/rs/zerolog/log"

	"odins-eye/src/region"
)

// Controller holds the single active Session. Opening a new one discards the
// previous unconfirmed session.
type Controller struct {
	active  *Session
	redraw  RedrawFunc
	minSize int
	nextID  uint64
}

// NewController creates a controller whose sessions repaint through redraw.
// minSize <= 0 selects region.MinUsableSize.
func NewController(redraw RedrawFunc, minSize int) *Controller {
	if minSize <= 0 {
		minSize = region.MinUsableSize
	}
	return &Controller{redraw: redraw, minSize: minSize}
}

// Active returns the open session, or nil.
func (c *Controller) Active() *Session { return c.active }

// Open starts a session over frame and preview. discarded reports whether an
// unconfirmed session had to be dropped to make room.
func (c *Controller) Open(frame, preview image.Image, scale region.Scale) (s *Session, discarded bool, err error) {
	if frame == nil || preview == nil {
		return nil, false, ErrNoFrame
	}
	if scale.X <= 0 || scale.Y <= 0 {
		return nil, false, errors.New("preview scale must be positive")
	}

	if prev := c.active; prev != nil {
		log.Warn().
			Uint64("session", prev.id).
			Str("state", prev.state.String()).
			Bool("had_selection", prev.hasSel).
			Msg("Discarding unconfirmed capture for a new one")
		prev.Cancel()
		discarded = true
	}

	c.nextID++
	s = &Session{
		id:      c.nextID,
		frame:   frame,
		preview: preview,
		scale:   scale,
		state:   Open,
		minSize: c.minSize,
		redraw:  c.redraw,
		onClose: c.release,
	}
	c.active = s
	log.Debug().
		Uint64("session", s.id).
		Float64("scale_x", scale.X).
		Float64("scale_y", scale.Y).
		Msg("Capture session opened")
	s.render()
	return s, discarded, nil
}

// Cancel cancels the active session, if any.
func (c *Controller) Cancel() {
	if c.active != nil {
		c.active.Cancel()
	}
}

func (c *Controller) release(s *Session) {
	if c.active == s {
		c.active = nil
	}
}

package eventloop

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog/log"

	"odins-eye/src/capture"
	"odins-eye/src/clipboard"
	"odins-eye/src/hotkey"
	"odins-eye/src/notification"
	"odins-eye/src/ocr"
	"odins-eye/src/screenshot"
	"odins-eye/src/session"
	"odins-eye/src/worker"
)

const (
	msgScanning  = "Scanning…"
	msgNoText    = "No text recognized."
	msgBusy      = "Busy, please retry"
	msgNotImage  = "Please drop an image file (PNG, JPG, etc.)."
	msgNoCapture = "Capture a screen area first."
	notifyTitle  = "Odin's Eye"
)

// Grabber produces one still frame per call.
type Grabber interface {
	Grab(ctx context.Context) (*capture.Still, error)
}

// Loop is the single-threaded coordinator. Every session transition and
// every View call happens on the goroutine running Run.
type Loop struct {
	view     View
	grabber  Grabber
	pool     *worker.Pool
	clip     clipboard.Writer
	notify   notification.Sender
	ctrl     *session.Controller
	events   chan Event
	done     chan struct{}
	ctx      context.Context
	deadline time.Duration
	minSize  int

	busy       [actionCount]bool
	gens       [panelCount]uint64
	captureGen uint64
	quick      bool

	last        image.Image
	imageText   string
	screenLines []string
}

// Option configures a Loop.
type Option func(*Loop)

// WithDeadline bounds each recognition job. d<=0 keeps the 20s default.
func WithDeadline(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.deadline = d
		}
	}
}

// WithMinSelection sets the smallest croppable area in source pixels.
func WithMinSelection(px int) Option {
	return func(l *Loop) { l.minSize = px }
}

// WithNotifier replaces the desktop notification used by quick captures.
func WithNotifier(n notification.Sender) Option {
	return func(l *Loop) { l.notify = n }
}

// New creates a loop. It owns pool and closes it when Run returns.
func New(view View, grabber Grabber, pool *worker.Pool, clip clipboard.Writer, opts ...Option) *Loop {
	l := &Loop{
		view:     view,
		grabber:  grabber,
		pool:     pool,
		clip:     clip,
		notify:   notification.Notify,
		events:   make(chan Event, 64),
		done:     make(chan struct{}),
		ctx:      context.Background(),
		deadline: 20 * time.Second,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.ctrl = session.NewController(l.redraw, l.minSize)
	return l
}

// Post queues ev in arrival order. It returns false once the loop has stopped.
func (l *Loop) Post(ev Event) bool {
	select {
	case l.events <- ev:
		return true
	case <-l.done:
		return false
	}
}

// StartHotkey registers a global hotkey that posts quick captures into the loop.
func (l *Loop) StartHotkey(combo string) error {
	if combo == "" {
		return nil
	}
	return hotkey.Listen(combo, func() {
		select {
		case l.events <- CaptureRequested{Quick: true}:
		case <-l.done:
		default:
			log.Warn().Msg("Event queue full, dropping hotkey press")
		}
	})
}

// Run processes events until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.ctx = ctx
	defer func() {
		close(l.done)
		l.ctrl.Cancel()
		l.pool.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-l.events:
			l.handle(ev)
		}
	}
}

func (l *Loop) handle(ev Event) {
	switch e := ev.(type) {
	case CaptureRequested:
		l.startCapture(e.Quick)
	case captureDone:
		l.finishCapture(e)
	case PointerDown:
		if s := l.ctrl.Active(); s != nil {
			s.PointerDown(e.At)
		}
	case PointerMove:
		if s := l.ctrl.Active(); s != nil {
			s.PointerMove(e.At)
		}
	case PointerUp:
		if s := l.ctrl.Active(); s != nil {
			s.PointerUp()
		}
	case ConfirmCrop:
		l.confirm(false)
	case ConfirmFullFrame:
		l.confirm(true)
	case CancelCapture:
		l.cancelCapture()
	case OpenPath:
		l.recognize(PanelImage, ActionOpen, ocr.Input{Path: e.Path})
	case DropData:
		l.drop(e)
	case Scan:
		l.scan()
	case CopyLine:
		l.copyLine(e.Index)
	case CopyAll:
		l.copyAll(e.Panel)
	case recognized:
		l.finishRecognition(e)
	default:
		log.Warn().Str("event", fmt.Sprintf("%T", ev)).Msg("Unhandled event")
	}
}

func (l *Loop) redraw(snap session.Snapshot) {
	l.view.ShowOverlay(snap)
}

func (l *Loop) setBusy(a Action, b bool) {
	l.busy[a] = b
	l.view.SetBusy(a, b)
}

func (l *Loop) startCapture(quick bool) {
	if l.busy[ActionCapture] {
		log.Debug().Bool("quick", quick).Msg("Capture already in progress, ignoring request")
		return
	}
	if s := l.ctrl.Active(); s != nil {
		// A new request discards the unconfirmed session and its bitmaps.
		log.Info().Uint64("session", s.ID()).Str("state", s.State().String()).Msg("Discarding unconfirmed capture")
		l.ctrl.Cancel()
		l.quick = false
		l.view.HideOverlay()
	}
	l.setBusy(ActionCapture, true)
	l.captureGen++
	gen := l.captureGen
	ctx := l.ctx
	go func() {
		still, err := l.grabber.Grab(ctx)
		l.Post(captureDone{gen: gen, quick: quick, still: still, err: err})
	}()
}

func (l *Loop) finishCapture(e captureDone) {
	if e.gen != l.captureGen {
		return
	}
	l.setBusy(ActionCapture, false)
	if e.err != nil {
		if errors.Is(e.err, capture.ErrCancelled) {
			log.Debug().Msg("Capture cancelled by user")
			return
		}
		log.Error().Err(e.err).Msg("Capture failed")
		msg := "Could not capture: " + e.err.Error()
		if e.quick {
			l.notify(notifyTitle, msg)
			return
		}
		l.view.ShowMessage(PanelScreen, msg)
		return
	}
	_, discarded, err := l.ctrl.Open(e.still.Frame, e.still.Preview, e.still.Scale)
	if err != nil {
		l.view.ShowMessage(PanelScreen, "Could not capture: "+err.Error())
		return
	}
	if discarded {
		log.Info().Msg("Previous unconfirmed capture replaced")
	}
	l.quick = e.quick
}

func (l *Loop) cancelCapture() {
	if l.busy[ActionCapture] {
		// The grab in flight is dropped when it reports back.
		l.captureGen++
		l.setBusy(ActionCapture, false)
	}
	l.ctrl.Cancel()
	l.quick = false
	l.view.HideOverlay()
}

func (l *Loop) confirm(full bool) {
	s := l.ctrl.Active()
	if s == nil {
		return
	}
	var (
		img image.Image
		err error
	)
	if full {
		img, err = s.ConfirmFullFrame()
	} else {
		var crop *image.NRGBA
		crop, _, err = s.ConfirmCrop()
		if crop != nil {
			img = crop
		}
	}
	if err != nil {
		// The session stays open so the user can drag again.
		l.view.ShowMessage(PanelScreen, err.Error())
		return
	}
	l.view.HideOverlay()

	quick := l.quick
	l.quick = false
	l.last = img
	l.screenLines = nil
	// Any scan still running belongs to the previous capture.
	l.gens[PanelScreen]++
	l.view.ShowCapture(img)
	if quick {
		data, err := screenshot.EncodePNG(img)
		if err != nil {
			l.notify(notifyTitle, "Error: "+err.Error())
			return
		}
		l.recognize(PanelQuick, ActionQuick, ocr.Input{Data: data})
	}
}

func (l *Loop) drop(e DropData) {
	head := e.Data
	if len(head) > 512 {
		head = head[:512]
	}
	if !ocr.IsImage(e.Name, head) {
		l.view.ShowStatus(PanelImage, msgNotImage)
		l.view.ShowMessage(PanelImage, msgNotImage)
		return
	}
	l.recognize(PanelImage, ActionOpen, ocr.Input{Data: e.Data})
}

func (l *Loop) scan() {
	if l.last == nil {
		l.view.ShowMessage(PanelScreen, msgNoCapture)
		return
	}
	data, err := screenshot.EncodePNG(l.last)
	if err != nil {
		l.view.ShowStatus(PanelScreen, "Error: "+err.Error())
		return
	}
	l.recognize(PanelScreen, ActionScan, ocr.Input{Data: data})
}

func (l *Loop) recognize(p Panel, a Action, in ocr.Input) {
	if l.busy[a] {
		log.Debug().Str("panel", p.String()).Msg("Request already outstanding, ignoring")
		return
	}
	l.gens[p]++
	gen := l.gens[p]
	ctx, cancel := context.WithTimeout(l.ctx, l.deadline)

	l.setBusy(a, true)
	submitted := l.pool.Submit(ctx, in, func(res ocr.Result) {
		if !l.Post(recognized{panel: p, action: a, gen: gen, res: res, cancel: cancel}) {
			cancel()
		}
	})
	if !submitted {
		cancel()
		l.setBusy(a, false)
		log.Warn().Str("panel", p.String()).Msg("Worker busy, request dropped")
		if p == PanelQuick {
			l.notify(notifyTitle, msgBusy)
			return
		}
		l.view.ShowMessage(p, msgBusy)
		return
	}
	switch p {
	case PanelImage:
		l.imageText = ""
		l.view.ShowStatus(p, msgScanning)
	case PanelScreen:
		l.screenLines = nil
		l.view.ShowStatus(p, msgScanning)
	}
}

func (l *Loop) finishRecognition(e recognized) {
	e.cancel()
	l.setBusy(e.action, false)
	if e.gen != l.gens[e.panel] {
		log.Debug().Str("panel", e.panel.String()).Uint64("gen", e.gen).Msg("Dropping stale recognition result")
		return
	}
	res := e.res
	switch e.panel {
	case PanelImage:
		if !res.OK {
			l.view.ShowStatus(PanelImage, "Error: "+res.Error)
			return
		}
		l.imageText = res.Text
		l.view.ShowText(res.Text)
	case PanelScreen:
		if !res.OK {
			msg := "OCR failed: " + res.Error
			l.view.ShowStatus(PanelScreen, msg)
			l.view.ShowMessage(PanelScreen, msg)
			return
		}
		lines := res.LineTexts()
		if len(lines) == 0 {
			l.view.ShowStatus(PanelScreen, msgNoText)
			return
		}
		l.screenLines = lines
		l.view.ShowLines(lines)
	case PanelQuick:
		l.deliverQuick(res)
	}
}

func (l *Loop) deliverQuick(res ocr.Result) {
	if !res.OK {
		l.notify(notifyTitle, "OCR failed: "+res.Error)
		return
	}
	lines := res.LineTexts()
	if len(lines) == 0 {
		l.notify(notifyTitle, msgNoText)
		return
	}
	if err := clipboard.WriteLines(l.clip, lines); err != nil {
		log.Error().Err(err).Msg("Clipboard write failed")
		l.notify(notifyTitle, "Clipboard error")
		return
	}
	l.notify(notifyTitle, fmt.Sprintf("Copied %d lines", len(lines)))
}

func (l *Loop) copyLine(i int) {
	if i < 0 || i >= len(l.screenLines) {
		log.Debug().Int("index", i).Msg("Copy of missing line ignored")
		return
	}
	if err := l.clip.Write(l.screenLines[i]); err != nil {
		l.view.ShowMessage(PanelScreen, "Clipboard error")
		return
	}
	l.view.ShowCopied(PanelScreen)
}

func (l *Loop) copyAll(p Panel) {
	var err error
	switch p {
	case PanelImage:
		if l.imageText == "" {
			return
		}
		err = l.clip.Write(l.imageText)
	case PanelScreen:
		if len(l.screenLines) == 0 {
			return
		}
		err = clipboard.WriteLines(l.clip, l.screenLines)
	default:
		return
	}
	if err != nil {
		l.view.ShowMessage(p, "Clipboard error")
		return
	}
	l.view.ShowCopied(p)
}

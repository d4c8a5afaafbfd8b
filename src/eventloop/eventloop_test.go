package eventloop

import (
	"context"
	"errors"
	"image"
	"image/color"
	"reflect"
	"sync"
	"testing"
	"time"

	"odins-eye/src/capture"
	"odins-eye/src/ocr"
	"odins-eye/src/region"
	"odins-eye/src/session"
	"odins-eye/src/worker"
)

type fakeView struct {
	mu       sync.Mutex
	overlays []session.Snapshot
	hidden   int
	captures []image.Image
	status   map[Panel]string
	text     string
	lines    []string
	messages map[Panel][]string
	copied   map[Panel]int
	busy     map[Action]bool
}

func newFakeView() *fakeView {
	return &fakeView{
		status:   map[Panel]string{},
		messages: map[Panel][]string{},
		copied:   map[Panel]int{},
		busy:     map[Action]bool{},
	}
}

func (v *fakeView) ShowOverlay(snap session.Snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.overlays = append(v.overlays, snap)
}
func (v *fakeView) HideOverlay() { v.mu.Lock(); v.hidden++; v.mu.Unlock() }
func (v *fakeView) ShowCapture(img image.Image) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.captures = append(v.captures, img)
}
func (v *fakeView) ShowStatus(p Panel, text string) { v.mu.Lock(); v.status[p] = text; v.mu.Unlock() }
func (v *fakeView) ShowText(text string)            { v.mu.Lock(); v.text = text; v.mu.Unlock() }
func (v *fakeView) ShowLines(lines []string)        { v.mu.Lock(); v.lines = lines; v.mu.Unlock() }
func (v *fakeView) ShowMessage(p Panel, msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.messages[p] = append(v.messages[p], msg)
}
func (v *fakeView) ShowCopied(p Panel)          { v.mu.Lock(); v.copied[p]++; v.mu.Unlock() }
func (v *fakeView) SetBusy(a Action, busy bool) { v.mu.Lock(); v.busy[a] = busy; v.mu.Unlock() }

type fakeGrabber struct {
	still *capture.Still
	err   error
}

func (g fakeGrabber) Grab(context.Context) (*capture.Still, error) { return g.still, g.err }

type fakeRecognizer struct {
	mu    sync.Mutex
	res   ocr.Result
	gate  chan struct{}
	calls int
}

func (r *fakeRecognizer) Recognize(_ context.Context, _ ocr.Input) ocr.Result {
	r.mu.Lock()
	r.calls++
	gate := r.gate
	res := r.res
	r.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return res
}

type fakeClipboard struct{ writes []string }

func (c *fakeClipboard) Write(text string) error {
	c.writes = append(c.writes, text)
	return nil
}

type notice struct{ title, msg string }

type harness struct {
	loop    *Loop
	view    *fakeView
	rec     *fakeRecognizer
	clip    *fakeClipboard
	notices []notice
}

func newStill(frameW, frameH, previewW, previewH int) *capture.Still {
	frame := image.NewRGBA(image.Rect(0, 0, frameW, frameH))
	for y := 0; y < frameH; y += 7 {
		for x := 0; x < frameW; x += 5 {
			frame.Set(x, y, color.RGBA{uint8(x), uint8(y), 0, 255})
		}
	}
	return &capture.Still{
		Frame:   frame,
		Preview: image.NewRGBA(image.Rect(0, 0, previewW, previewH)),
		Scale:   region.Scale{X: float64(frameW) / float64(previewW), Y: float64(frameH) / float64(previewH)},
	}
}

func newHarness(t *testing.T, g Grabber) *harness {
	t.Helper()
	h := &harness{
		view: newFakeView(),
		rec:  &fakeRecognizer{res: ocr.Result{OK: true, Text: "Hello\nWorld"}},
		clip: &fakeClipboard{},
	}
	pool := worker.New(h.rec, 1)
	h.loop = New(h.view, g, pool, h.clip,
		WithDeadline(2*time.Second),
		WithNotifier(func(title, msg string) { h.notices = append(h.notices, notice{title, msg}) }),
	)
	t.Cleanup(pool.Close)
	return h
}

// pump handles the next event produced by off-loop work.
func (h *harness) pump(t *testing.T) {
	t.Helper()
	select {
	case ev := <-h.loop.events:
		h.loop.handle(ev)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func (h *harness) captureAndSelect(t *testing.T, quick bool, from, to region.Point) {
	t.Helper()
	h.loop.handle(CaptureRequested{Quick: quick})
	h.pump(t)
	h.loop.handle(PointerDown{At: from})
	h.loop.handle(PointerMove{At: to})
	h.loop.handle(PointerUp{})
}

func TestCaptureSelectCropScanCopy(t *testing.T) {
	h := newHarness(t, fakeGrabber{still: newStill(1920, 1080, 960, 540)})

	h.captureAndSelect(t, false, region.Point{X: 100, Y: 100}, region.Point{X: 300, Y: 250})
	if len(h.view.overlays) != 4 {
		t.Fatalf("Expected 4 overlay repaints (open, down, move, up), got %d", len(h.view.overlays))
	}
	if h.view.busy[ActionCapture] {
		t.Error("Capture control should be re-enabled")
	}

	h.loop.handle(ConfirmCrop{})
	if h.view.hidden != 1 {
		t.Errorf("Expected overlay hidden once, got %d", h.view.hidden)
	}
	if len(h.view.captures) != 1 {
		t.Fatalf("Expected one capture shown, got %d", len(h.view.captures))
	}
	if got := h.view.captures[0].Bounds().Size(); got != image.Pt(400, 300) {
		t.Errorf("Expected 400x300 crop, got %v", got)
	}
	if h.loop.ctrl.Active() != nil {
		t.Error("Session should be closed after confirm")
	}

	h.loop.handle(Scan{})
	if h.view.status[PanelScreen] != msgScanning || !h.view.busy[ActionScan] {
		t.Errorf("Expected scanning state, got %q busy=%v", h.view.status[PanelScreen], h.view.busy[ActionScan])
	}
	h.pump(t)
	if !reflect.DeepEqual(h.view.lines, []string{"Hello", "World"}) {
		t.Errorf("Unexpected lines %q", h.view.lines)
	}
	if h.view.busy[ActionScan] {
		t.Error("Scan control should be re-enabled")
	}

	h.loop.handle(CopyLine{Index: 1})
	h.loop.handle(CopyLine{Index: 7})
	h.loop.handle(CopyAll{Panel: PanelScreen})
	if !reflect.DeepEqual(h.clip.writes, []string{"World", "Hello\nWorld"}) {
		t.Errorf("Unexpected clipboard writes %q", h.clip.writes)
	}
	if h.view.copied[PanelScreen] != 2 {
		t.Errorf("Expected two copy confirmations, got %d", h.view.copied[PanelScreen])
	}
}

func TestTinySelectionKeepsSessionLocked(t *testing.T) {
	h := newHarness(t, fakeGrabber{still: newStill(800, 600, 800, 600)})
	h.captureAndSelect(t, false, region.Point{X: 10, Y: 10}, region.Point{X: 13, Y: 13})

	h.loop.handle(ConfirmCrop{})
	msgs := h.view.messages[PanelScreen]
	if len(msgs) != 1 || msgs[0] != session.ErrNoSelection.Error() {
		t.Fatalf("Expected selection message, got %q", msgs)
	}
	s := h.loop.ctrl.Active()
	if s == nil || s.State() != session.Locked {
		t.Fatal("Session should stay locked")
	}
	if h.view.hidden != 0 {
		t.Error("Overlay should stay visible")
	}
}

func TestConfirmFullFrame(t *testing.T) {
	h := newHarness(t, fakeGrabber{still: newStill(640, 480, 320, 240)})
	h.loop.handle(CaptureRequested{})
	h.pump(t)
	h.loop.handle(ConfirmFullFrame{})
	if len(h.view.captures) != 1 || h.view.captures[0].Bounds().Size() != image.Pt(640, 480) {
		t.Fatalf("Expected the full frame, got %v", h.view.captures)
	}
}

func TestCaptureCancelledIsSilent(t *testing.T) {
	h := newHarness(t, fakeGrabber{err: capture.ErrCancelled})
	h.loop.handle(CaptureRequested{})
	h.pump(t)
	if len(h.view.messages[PanelScreen]) != 0 {
		t.Errorf("Expected no message, got %q", h.view.messages[PanelScreen])
	}
	if h.view.busy[ActionCapture] {
		t.Error("Capture control should be re-enabled")
	}
}

func TestCaptureFailureIsReported(t *testing.T) {
	h := newHarness(t, fakeGrabber{err: errors.New("no display")})
	h.loop.handle(CaptureRequested{})
	h.pump(t)
	msgs := h.view.messages[PanelScreen]
	if len(msgs) != 1 || msgs[0] != "Could not capture: no display" {
		t.Errorf("Unexpected messages %q", msgs)
	}
}

func TestCancelCaptureHidesOverlay(t *testing.T) {
	h := newHarness(t, fakeGrabber{still: newStill(100, 100, 100, 100)})
	h.loop.handle(CaptureRequested{})
	h.pump(t)
	h.loop.handle(CancelCapture{})
	if h.loop.ctrl.Active() != nil || h.view.hidden != 1 {
		t.Error("Expected session closed and overlay hidden")
	}
	// Pointer events after cancel are ignored.
	n := len(h.view.overlays)
	h.loop.handle(PointerDown{At: region.Point{X: 1, Y: 1}})
	if len(h.view.overlays) != n {
		t.Error("Pointer after cancel should not repaint")
	}
}

func TestCancelDuringGrabDropsFrame(t *testing.T) {
	h := newHarness(t, fakeGrabber{still: newStill(100, 100, 100, 100)})
	h.loop.handle(CaptureRequested{})
	h.loop.handle(CancelCapture{})
	h.pump(t)
	if h.loop.ctrl.Active() != nil || len(h.view.overlays) != 0 {
		t.Error("A frame grabbed after cancel should not open a session")
	}
}

func TestNewCaptureDiscardsUnconfirmedSession(t *testing.T) {
	h := newHarness(t, fakeGrabber{still: newStill(800, 600, 400, 300)})
	h.captureAndSelect(t, false, region.Point{X: 10, Y: 10}, region.Point{X: 200, Y: 150})
	if h.loop.ctrl.Active() == nil {
		t.Fatal("Expected an open session before the second request")
	}

	h.loop.grabber = fakeGrabber{err: capture.ErrCancelled}
	h.loop.handle(CaptureRequested{})
	if h.loop.ctrl.Active() != nil {
		t.Error("Expected the unconfirmed session to be discarded on a new request")
	}
	if h.view.hidden != 1 {
		t.Errorf("Expected overlay hidden once, got %d", h.view.hidden)
	}
	h.pump(t)
	if h.loop.ctrl.Active() != nil {
		t.Error("Expected no session after the second capture was cancelled")
	}
	if len(h.view.messages[PanelScreen]) != 0 {
		t.Errorf("Expected silent cancel, got %q", h.view.messages[PanelScreen])
	}
	if h.view.busy[ActionCapture] {
		t.Error("Capture control should be re-enabled")
	}
}

func TestDropRejectsNonImage(t *testing.T) {
	h := newHarness(t, nil)
	h.loop.handle(DropData{Name: "notes.txt", Data: []byte("just some text")})
	if h.view.status[PanelImage] != msgNotImage {
		t.Errorf("Expected rejection, got %q", h.view.status[PanelImage])
	}
	if h.rec.calls != 0 {
		t.Error("Recognizer should not be called")
	}
}

func TestOpenPathShowsTextOrError(t *testing.T) {
	h := newHarness(t, nil)
	h.loop.handle(OpenPath{Path: "shot.png"})
	h.pump(t)
	if h.view.text != "Hello\nWorld" {
		t.Errorf("Unexpected text %q", h.view.text)
	}
	h.loop.handle(CopyAll{Panel: PanelImage})
	if len(h.clip.writes) != 1 || h.clip.writes[0] != "Hello\nWorld" {
		t.Errorf("Unexpected clipboard writes %q", h.clip.writes)
	}

	h.rec.mu.Lock()
	h.rec.res = ocr.Failure(ocr.ErrFileNotFound)
	h.rec.mu.Unlock()
	h.loop.handle(OpenPath{Path: "missing.png"})
	h.pump(t)
	if h.view.status[PanelImage] != "Error: File not found" {
		t.Errorf("Unexpected status %q", h.view.status[PanelImage])
	}
}

func TestScanFailureAndEmptyResult(t *testing.T) {
	h := newHarness(t, fakeGrabber{still: newStill(200, 200, 200, 200)})
	h.loop.handle(CaptureRequested{})
	h.pump(t)
	h.loop.handle(ConfirmFullFrame{})

	h.rec.res = ocr.Failure(errors.New("engine exploded"))
	h.loop.handle(Scan{})
	h.pump(t)
	if h.view.status[PanelScreen] != "OCR failed: engine exploded" {
		t.Errorf("Unexpected status %q", h.view.status[PanelScreen])
	}

	h.rec.mu.Lock()
	h.rec.res = ocr.Result{OK: true, Text: " \n "}
	h.rec.mu.Unlock()
	h.loop.handle(Scan{})
	h.pump(t)
	if h.view.status[PanelScreen] != msgNoText {
		t.Errorf("Unexpected status %q", h.view.status[PanelScreen])
	}
}

func TestScanWithoutCapture(t *testing.T) {
	h := newHarness(t, nil)
	h.loop.handle(Scan{})
	msgs := h.view.messages[PanelScreen]
	if len(msgs) != 1 || msgs[0] != msgNoCapture {
		t.Errorf("Unexpected messages %q", msgs)
	}
}

func TestBusyControlIgnoresRepeat(t *testing.T) {
	h := newHarness(t, nil)
	h.rec.gate = make(chan struct{})
	h.loop.handle(OpenPath{Path: "a.png"})
	h.loop.handle(OpenPath{Path: "b.png"})
	close(h.rec.gate)
	h.pump(t)
	h.rec.mu.Lock()
	calls := h.rec.calls
	h.rec.mu.Unlock()
	if calls != 1 {
		t.Errorf("Expected one recognition, got %d", calls)
	}
}

func TestStaleScanResultIsDropped(t *testing.T) {
	h := newHarness(t, fakeGrabber{still: newStill(200, 200, 200, 200)})
	h.loop.handle(CaptureRequested{})
	h.pump(t)
	h.loop.handle(ConfirmFullFrame{})

	h.rec.mu.Lock()
	h.rec.gate = make(chan struct{})
	h.rec.mu.Unlock()
	h.loop.handle(Scan{})

	// A new capture is confirmed while the scan is still running.
	h.loop.handle(CaptureRequested{})
	h.pump(t)
	h.loop.handle(ConfirmFullFrame{})

	close(h.rec.gate)
	h.pump(t)
	if h.view.lines != nil {
		t.Errorf("Stale lines should not be shown, got %q", h.view.lines)
	}
	if h.view.busy[ActionScan] {
		t.Error("Scan control should be re-enabled")
	}
}

func TestQuickCaptureCopiesAndNotifies(t *testing.T) {
	h := newHarness(t, fakeGrabber{still: newStill(400, 400, 200, 200)})
	h.rec.res = ocr.Result{OK: true, Lines: []ocr.Line{{Text: "one", Confidence: 91}, {Text: "two", Confidence: 88}}}

	h.captureAndSelect(t, true, region.Point{X: 10, Y: 10}, region.Point{X: 110, Y: 60})
	h.loop.handle(ConfirmCrop{})
	h.pump(t)

	if !reflect.DeepEqual(h.clip.writes, []string{"one\ntwo"}) {
		t.Errorf("Unexpected clipboard writes %q", h.clip.writes)
	}
	if len(h.notices) != 1 || h.notices[0].msg != "Copied 2 lines" {
		t.Errorf("Unexpected notifications %+v", h.notices)
	}
	if h.view.lines != nil {
		t.Error("Quick capture should not fill the screen panel")
	}
}

func TestPostAfterStopReturnsFalse(t *testing.T) {
	h := newHarness(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- h.loop.Run(ctx) }()
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if h.loop.Post(Scan{}) {
		// The buffered queue may still accept; it must never block.
		t.Log("post accepted into buffer after stop")
	}
}

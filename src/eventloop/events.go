package eventloop

import (
	"context"

	"odins-eye/src/capture"
	"odins-eye/src/ocr"
	"odins-eye/src/region"
)

// Event is anything the loop reacts to. UI callbacks post the exported
// events; completions of off-loop work come back as the unexported ones.
type Event interface{ event() }

// CaptureRequested starts a screen capture. Quick captures come from the
// hotkey: the confirmed area is recognized and copied without further clicks.
type CaptureRequested struct{ Quick bool }

// PointerDown, PointerMove and PointerUp carry preview-space coordinates.
type PointerDown struct{ At region.Point }
type PointerMove struct{ At region.Point }
type PointerUp struct{}

type ConfirmCrop struct{}
type ConfirmFullFrame struct{}
type CancelCapture struct{}

// OpenPath recognizes an image file chosen in the file dialog.
type OpenPath struct{ Path string }

// DropData recognizes a dropped file's content. Name is used for type checks.
type DropData struct {
	Name string
	Data []byte
}

// Scan recognizes the last confirmed capture.
type Scan struct{}

// CopyLine copies one recognized screen line.
type CopyLine struct{ Index int }

// CopyAll copies everything the panel shows.
type CopyAll struct{ Panel Panel }

type captureDone struct {
	gen   uint64
	quick bool
	still *capture.Still
	err   error
}

type recognized struct {
	panel  Panel
	action Action
	gen    uint64
	res    ocr.Result
	cancel context.CancelFunc
}

func (CaptureRequested) event() {}
func (PointerDown) event()      {}
func (PointerMove) event()      {}
func (PointerUp) event()        {}
func (ConfirmCrop) event()      {}
func (ConfirmFullFrame) event() {}
func (CancelCapture) event()    {}
func (OpenPath) event()         {}
func (DropData) event()         {}
func (Scan) event()             {}
func (CopyLine) event()         {}
func (CopyAll) event()          {}
func (captureDone) event()      {}
func (recognized) event()       {}

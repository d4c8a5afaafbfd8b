package eventloop

import (
	"image"

	"odins-eye/src/session"
)

// Panel is a result area.
type Panel int

const (
	// PanelImage shows the text of an opened or dropped image.
	PanelImage Panel = iota
	// PanelScreen shows the lines of a scanned capture.
	PanelScreen
	// PanelQuick has no widget: results go to the clipboard and a notification.
	PanelQuick
	panelCount
)

func (p Panel) String() string {
	switch p {
	case PanelImage:
		return "image"
	case PanelScreen:
		return "screen"
	case PanelQuick:
		return "quick"
	default:
		return "unknown"
	}
}

// Action is a triggering control that stays disabled while its request is outstanding.
type Action int

const (
	ActionOpen Action = iota
	ActionCapture
	ActionScan
	ActionQuick
	actionCount
)

// View is the UI as seen from the loop. The loop calls it from its own
// goroutine; implementations marshal to the UI thread themselves and must not block.
type View interface {
	// ShowOverlay shows the selection overlay and repaints it from snap.
	ShowOverlay(snap session.Snapshot)
	HideOverlay()
	// ShowCapture displays the last confirmed capture on the screen panel.
	ShowCapture(img image.Image)
	// ShowStatus replaces the panel's result area with a placeholder or error text.
	ShowStatus(p Panel, text string)
	ShowText(text string)
	ShowLines(lines []string)
	// ShowMessage shows a transient inline message that clears itself.
	ShowMessage(p Panel, msg string)
	ShowCopied(p Panel)
	SetBusy(a Action, busy bool)
}

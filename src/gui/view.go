package gui

import (
	"image"

	"fyne.io/fyne/v2"

	"odins-eye/src/eventloop"
	"odins-eye/src/session"
)

var _ eventloop.View = (*UI)(nil)

func (u *UI) ShowOverlay(snap session.Snapshot) {
	fyne.Do(func() {
		size := snap.Preview.Bounds().Size()
		u.area.setFrame(u.renderer.Render(snap, size))
		if u.overlayShown {
			return
		}
		u.overlayShown = true
		u.overlayWin.Resize(fyne.NewSize(float32(size.X), float32(size.Y)+48))
		u.overlayWin.CenterOnScreen()
		u.overlayWin.Show()
		u.overlayWin.RequestFocus()
	})
}

func (u *UI) HideOverlay() {
	fyne.Do(func() {
		u.overlayShown = false
		u.overlayWin.Hide()
	})
}

func (u *UI) ShowCapture(img image.Image) {
	fyne.Do(func() {
		u.capturePreview.Image = img
		u.capturePreview.Refresh()
		u.lines = nil
		u.highlighted = false
		u.linesList.Refresh()
		u.screenStatus.SetText("")
		u.screenCopyBtn.Disable()
		u.selectAllBtn.Disable()
		u.scanBtn.Enable()
	})
}

func (u *UI) ShowStatus(p eventloop.Panel, text string) {
	fyne.Do(func() {
		switch p {
		case eventloop.PanelImage:
			u.imageResult.SetText(text)
			u.imageCopyBtn.Disable()
		case eventloop.PanelScreen:
			u.lines = nil
			u.highlighted = false
			u.linesList.Refresh()
			u.screenStatus.SetText(text)
			u.screenCopyBtn.Disable()
			u.selectAllBtn.Disable()
		}
	})
}

func (u *UI) ShowText(text string) {
	fyne.Do(func() {
		u.imageResult.SetText(text)
		if text == "" {
			u.imageCopyBtn.Disable()
			return
		}
		u.imageCopyBtn.Enable()
	})
}

func (u *UI) ShowLines(lines []string) {
	fyne.Do(func() {
		u.lines = lines
		u.highlighted = false
		u.screenStatus.SetText("")
		u.linesList.Refresh()
		u.screenCopyBtn.Enable()
		u.selectAllBtn.Enable()
	})
}

// ShowMessage and ShowCopied go through popup.Transient, which marshals itself.
func (u *UI) ShowMessage(p eventloop.Panel, msg string) {
	switch p {
	case eventloop.PanelImage:
		u.imageMsg.Show(msg)
	case eventloop.PanelScreen:
		u.screenMsg.Show(msg)
	}
}

func (u *UI) ShowCopied(p eventloop.Panel) {
	switch p {
	case eventloop.PanelImage:
		u.imageFeedback.Show("Copied!")
	case eventloop.PanelScreen:
		u.screenFeedback.Show("Copied!")
	}
}

func (u *UI) SetBusy(a eventloop.Action, busy bool) {
	fyne.Do(func() {
		var btn interface {
			Enable()
			Disable()
		}
		switch a {
		case eventloop.ActionOpen:
			btn = u.browseBtn
		case eventloop.ActionCapture:
			btn = u.captureBtn
		case eventloop.ActionScan:
			btn = u.scanBtn
		default:
			return
		}
		if busy {
			btn.Disable()
			return
		}
		btn.Enable()
	})
}

package gui

import (
	"io"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog/log"

	"odins-eye/src/eventloop"
	"odins-eye/src/ocr"
	"odins-eye/src/overlay"
	"odins-eye/src/popup"
	"odins-eye/src/tray"
)

const copiedFeedback = 2 * time.Second

// Options configures the windows.
type Options struct {
	Title string
	// MessageClear is how long inline messages stay visible.
	MessageClear time.Duration
	Style        overlay.Style
	Hotkey       string
}

// UI is the fyne front end. It implements eventloop.View.
type UI struct {
	app    fyne.App
	win    fyne.Window
	poster Poster

	// File tab
	browseBtn     *widget.Button
	imageCopyBtn  *widget.Button
	imageResult   *widget.Entry
	imageMsg      *popup.Transient
	imageFeedback *popup.Transient

	// Screen tab
	captureBtn     *widget.Button
	scanBtn        *widget.Button
	screenCopyBtn  *widget.Button
	selectAllBtn   *widget.Button
	capturePreview *canvas.Image
	screenStatus   *widget.Label
	linesList      *widget.List
	lines          []string
	screenMsg      *popup.Transient
	screenFeedback *popup.Transient
	highlight      *popup.Transient
	highlighted    bool

	// Overlay window
	overlayWin   fyne.Window
	area         *selectionArea
	renderer     *overlay.Renderer
	overlayShown bool
}

// New builds the main window and the (hidden) overlay window.
func New(a fyne.App, opts Options) *UI {
	if opts.Title == "" {
		opts.Title = "Odin's Eye"
	}
	u := &UI{app: a, renderer: overlay.NewRenderer(opts.Style)}
	a.SetIcon(tray.Icon())

	u.win = a.NewWindow(opts.Title)
	u.win.SetContent(container.NewAppTabs(
		container.NewTabItem("Image", u.buildImageTab(opts)),
		container.NewTabItem("Screen", u.buildScreenTab(opts)),
	))
	u.win.Resize(fyne.NewSize(720, 560))
	u.win.SetOnDropped(u.dropped)
	u.win.SetMaster()

	u.buildOverlay()
	return u
}

// Bind connects the UI to the loop. It must be called before Run.
func (u *UI) Bind(p Poster) { u.poster = p }

// Window returns the main window.
func (u *UI) Window() fyne.Window { return u.win }

// InstallTray adds the tray icon; closing the window then only hides it.
func (u *UI) InstallTray() {
	ok := tray.Install(u.app, u.win.Show, func() { u.post(eventloop.CaptureRequested{}) })
	if ok {
		u.win.SetCloseIntercept(u.win.Hide)
	}
}

// ShowAndRun shows the main window and runs the fyne event loop until quit.
func (u *UI) ShowAndRun() {
	u.win.ShowAndRun()
}

func (u *UI) post(ev eventloop.Event) {
	if u.poster == nil {
		log.Warn().Msg("UI event before loop was bound")
		return
	}
	u.poster.Post(ev)
}

func (u *UI) buildImageTab(opts Options) fyne.CanvasObject {
	u.imageResult = widget.NewMultiLineEntry()
	u.imageResult.Wrapping = fyne.TextWrapWord
	u.imageResult.SetPlaceHolder("Open or drop an image to extract its text.")

	msg := widget.NewLabel("")
	msg.Importance = widget.DangerImportance
	u.imageMsg = popup.NewTransient(labelSetter(msg), opts.MessageClear)
	feedback := widget.NewLabel("")
	feedback.Importance = widget.SuccessImportance
	u.imageFeedback = popup.NewTransient(labelSetter(feedback), copiedFeedback)

	u.browseBtn = widget.NewButton("Open image…", u.openFile)
	u.imageCopyBtn = widget.NewButton("Copy all", func() { u.post(eventloop.CopyAll{Panel: eventloop.PanelImage}) })
	u.imageCopyBtn.Disable()

	top := container.NewHBox(u.browseBtn, u.imageCopyBtn, feedback)
	return container.NewBorder(top, msg, nil, nil, u.imageResult)
}

func (u *UI) buildScreenTab(opts Options) fyne.CanvasObject {
	u.capturePreview = canvas.NewImageFromImage(nil)
	u.capturePreview.FillMode = canvas.ImageFillContain
	u.capturePreview.SetMinSize(fyne.NewSize(320, 180))

	u.screenStatus = widget.NewLabel("")
	u.screenStatus.Wrapping = fyne.TextWrapWord
	u.linesList = widget.NewList(
		func() int { return len(u.lines) },
		newLineRow,
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(u.lines) {
				updateLineRow(obj, u.lines[id], u.highlighted)
			}
		},
	)
	u.linesList.OnSelected = func(id widget.ListItemID) {
		u.post(eventloop.CopyLine{Index: id})
		u.linesList.UnselectAll()
	}

	msg := widget.NewLabel("")
	msg.Importance = widget.DangerImportance
	msg.Wrapping = fyne.TextWrapWord
	u.screenMsg = popup.NewTransient(labelSetter(msg), opts.MessageClear)
	feedback := widget.NewLabel("")
	feedback.Importance = widget.SuccessImportance
	u.screenFeedback = popup.NewTransient(labelSetter(feedback), copiedFeedback)
	u.highlight = popup.NewTransient(func(text string) {
		fyne.Do(func() { u.setHighlighted(text != "") })
	}, selectAllHighlight)

	u.captureBtn = widget.NewButton("Capture screen", func() { u.post(eventloop.CaptureRequested{}) })
	u.scanBtn = widget.NewButton("Scan", func() { u.post(eventloop.Scan{}) })
	u.scanBtn.Disable()
	u.screenCopyBtn = widget.NewButton("Copy all", func() { u.post(eventloop.CopyAll{Panel: eventloop.PanelScreen}) })
	u.screenCopyBtn.Disable()
	u.selectAllBtn = widget.NewButton("Select all", u.selectAll)
	u.selectAllBtn.Disable()

	hint := widget.NewLabel("")
	if opts.Hotkey != "" {
		hint.SetText("Quick capture: " + opts.Hotkey)
	}
	top := container.NewHBox(u.captureBtn, u.scanBtn, u.selectAllBtn, u.screenCopyBtn, feedback)
	results := container.NewBorder(u.screenStatus, nil, nil, nil, u.linesList)
	body := container.NewVSplit(u.capturePreview, results)
	return container.NewBorder(top, container.NewVBox(msg, hint), nil, nil, body)
}

func (u *UI) buildOverlay() {
	u.overlayWin = u.app.NewWindow("Select an area")
	u.area = newSelectionArea(u.post)
	toolbar := container.NewHBox(
		widget.NewButton("Use selection", func() { u.post(eventloop.ConfirmCrop{}) }),
		widget.NewButton("Use full screen", func() { u.post(eventloop.ConfirmFullFrame{}) }),
		widget.NewButton("Cancel", func() { u.post(eventloop.CancelCapture{}) }),
		widget.NewLabel("Drag to select. Enter confirms, Esc cancels."),
	)
	u.overlayWin.SetContent(container.NewBorder(nil, toolbar, nil, nil, u.area))
	u.overlayWin.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyEscape:
			u.post(eventloop.CancelCapture{})
		case fyne.KeyReturn, fyne.KeyEnter:
			u.post(eventloop.ConfirmCrop{})
		}
	})
	u.overlayWin.SetCloseIntercept(func() { u.post(eventloop.CancelCapture{}) })
}

func (u *UI) openFile() {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			u.imageMsg.Show("Error: " + err.Error())
			return
		}
		if rc == nil {
			return
		}
		path := rc.URI().Path()
		_ = rc.Close()
		u.post(eventloop.OpenPath{Path: path})
	}, u.win)
	d.SetFilter(storage.NewExtensionFileFilter(dialogExtensions()))
	d.Show()
}

func (u *UI) dropped(_ fyne.Position, uris []fyne.URI) {
	if len(uris) == 0 {
		return
	}
	uri := uris[0]
	go func() {
		rc, err := storage.Reader(uri)
		if err != nil {
			u.imageMsg.Show("Error: " + err.Error() + ". Try using Open image instead.")
			return
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			u.imageMsg.Show("Error: " + err.Error() + ". Try using Open image instead.")
			return
		}
		u.post(eventloop.DropData{Name: uri.Name(), Data: data})
	}()
}

func dialogExtensions() []string {
	exts := ocr.ImageExtensions()
	out := make([]string, len(exts))
	for i, e := range exts {
		out[i] = "." + e
	}
	return out
}

// labelSetter updates a label from any goroutine.
func labelSetter(l *widget.Label) popup.Setter {
	return func(text string) {
		fyne.Do(func() { l.SetText(text) })
	}
}

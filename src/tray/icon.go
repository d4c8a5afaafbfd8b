package tray

import (
	_ "embed"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Embedded SVG icon data
//
//go:embed icon.svg
var iconSVG []byte

// Icon is the application and tray icon.
func Icon() fyne.Resource {
	return fyne.NewStaticResource("odins-eye.svg", iconSVG)
}

// Menu builds the tray menu. fyne appends its own Quit item.
func Menu(onShow, onCapture func()) *fyne.Menu {
	return fyne.NewMenu("Odin's Eye",
		fyne.NewMenuItem("Show", onShow),
		fyne.NewMenuItem("Capture Screen", onCapture),
	)
}

// Install puts the icon and menu into the system tray. It reports false on
// drivers without tray support.
func Install(a fyne.App, onShow, onCapture func()) bool {
	desk, ok := a.(desktop.App)
	if !ok {
		return false
	}
	desk.SetSystemTrayMenu(Menu(onShow, onCapture))
	desk.SetSystemTrayIcon(Icon())
	return true
}

//go:build windows

package main

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/windows"
)

// enableDPIAwareness sets per-monitor DPI awareness so captured frames and
// window sizes use physical pixels. Must run before any window exists.
func enableDPIAwareness() {
	shcore := windows.NewLazySystemDLL("Shcore.dll")
	setProcessDpiAwareness := shcore.NewProc("SetProcessDpiAwareness")
	const processPerMonitorDPIAware = 2
	if err := setProcessDpiAwareness.Find(); err == nil {
		ret, _, _ := setProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		if ret == 0 {
			log.Debug().Msg("DPI: per-monitor awareness enabled")
		} else {
			log.Warn().Uint64("code", uint64(ret)).Msg("DPI: failed to set per-monitor awareness")
		}
		return
	}

	log.Debug().Msg("DPI: Shcore.SetProcessDpiAwareness not available, trying fallback")
	user32 := windows.NewLazySystemDLL("user32.dll")
	setProcessDPIAware := user32.NewProc("SetProcessDPIAware")
	if err := setProcessDPIAware.Find(); err != nil {
		log.Debug().Msg("DPI: SetProcessDPIAware not available, no DPI awareness set")
		return
	}
	if ret, _, _ := setProcessDPIAware.Call(); ret == 0 {
		log.Warn().Msg("DPI: failed to set system DPI awareness")
	}
}

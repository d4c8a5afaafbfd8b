package hotkey

import (
	"fmt"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
	"github.com/rs/zerolog/log"
)

var (
	mu      sync.Mutex
	running bool
)

// Listen registers hotkeyConfig (e.g. "Ctrl+Alt+Q") globally and calls
// callback from the hook goroutine on every press. Only one listener may run.
func Listen(hotkeyConfig string, callback func()) error {
	keys, err := Keys(hotkeyConfig)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	if running {
		return fmt.Errorf("hotkey listener already running")
	}
	running = true

	log.Info().Str("hotkey", hotkeyConfig).Strs("keys", keys).Msg("Hotkey listener configured")
	gohook.Register(gohook.KeyDown, keys, func(gohook.Event) {
		log.Debug().Str("hotkey", hotkeyConfig).Msg("Hotkey activated")
		if callback != nil {
			callback()
		}
	})

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("PANIC in hotkey goroutine")
			}
		}()
		s := gohook.Start()
		<-gohook.Process(s)
		log.Debug().Msg("Hotkey event channel closed")
	}()
	return nil
}

// Stop ends the global hook started by Listen.
func Stop() {
	mu.Lock()
	defer mu.Unlock()
	if !running {
		return
	}
	gohook.End()
	running = false
}

// Keys parses and validates a hotkey string against the hook's key table.
func Keys(hotkeyConfig string) ([]string, error) {
	keys := parseHotkey(hotkeyConfig)
	if len(keys) == 0 {
		return nil, fmt.Errorf("empty hotkey")
	}
	for _, k := range keys {
		if !knownKey(k) {
			return nil, fmt.Errorf("unknown key %q in hotkey %q", k, hotkeyConfig)
		}
	}
	return keys, nil
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+q" to normalized key names
func parseHotkey(hotkeyConfig string) []string {
	parts := strings.Split(strings.ToLower(hotkeyConfig), "+")
	var keys []string

	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "ctrl", "control":
			keys = append(keys, "ctrl")
		case "alt", "option":
			keys = append(keys, "alt")
		case "shift":
			keys = append(keys, "shift")
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		default:
			keys = append(keys, part)
		}
	}

	return keys
}

func knownKey(name string) bool {
	_, ok := gohook.Keycode[name]
	return ok
}

package notification

import (
	"sync"

	"github.com/rs/zerolog/log"
)

const appID = "Odin's Eye"

// maxBody keeps toast bodies readable.
const maxBody = 200

// Sender delivers a desktop notification. The GUI installs one backed by the app.
type Sender func(title, message string)

var (
	mu       sync.RWMutex
	fallback Sender
)

// SetFallback installs the sender used where no native toast exists.
func SetFallback(s Sender) {
	mu.Lock()
	fallback = s
	mu.Unlock()
}

// Notify shows a notification asynchronously and never blocks the caller.
func Notify(title, message string) {
	message = truncate(message, maxBody)
	err := showNative(title, message)
	if err == nil {
		return
	}
	log.Debug().Err(err).Msg("native notification unavailable")
	mu.RLock()
	s := fallback
	mu.RUnlock()
	if s == nil {
		log.Info().Str("title", title).Str("message", message).Msg("notification")
		return
	}
	s(title, message)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

package popup

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Setter renders text into a label or similar. It is called from timer
// goroutines too, so UI-backed setters must marshal to the UI thread.
type Setter func(text string)

// Transient is a message slot that clears itself after a delay. A newer
// Show replaces the text and restarts the countdown.
type Transient struct {
	mu    sync.Mutex
	set   Setter
	after time.Duration
	timer *time.Timer
	gen   uint64
	text  string
}

// NewTransient returns a slot that clears after d. d<=0 disables auto-clear.
func NewTransient(set Setter, d time.Duration) *Transient {
	return &Transient{set: set, after: d}
}

// Show displays text and schedules the clear.
func (t *Transient) Show(text string) {
	log.Debug().Int("chars", len(text)).Str("text", truncateForLog(text, 50)).Msg("Popup.Show")
	t.mu.Lock()
	t.gen++
	gen := t.gen
	t.text = text
	if t.timer != nil {
		t.timer.Stop()
	}
	if t.after > 0 {
		t.timer = time.AfterFunc(t.after, func() { t.expire(gen) })
	}
	t.mu.Unlock()
	t.set(text)
}

// Close clears the slot immediately.
func (t *Transient) Close() {
	t.mu.Lock()
	t.gen++
	t.text = ""
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
	t.set("")
}

// Text returns what the slot currently shows.
func (t *Transient) Text() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.text
}

func (t *Transient) expire(gen uint64) {
	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.text = ""
	t.timer = nil
	t.mu.Unlock()
	t.set("")
}

func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

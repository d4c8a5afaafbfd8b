package clipboard

import (
	"fmt"
	"strings"
	"sync"

	"golang.design/x/clipboard"
)

var (
	writeMu sync.Mutex
	ready   bool
)

// Writer is what the event loop needs for copy actions.
type Writer interface {
	Write(text string) error
}

// System writes to the OS clipboard through the package functions.
type System struct{}

func (System) Write(text string) error { return Write(text) }

func Init() error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if err := clipboard.Init(); err != nil {
		return fmt.Errorf("clipboard unavailable: %w", err)
	}
	ready = true
	return nil
}

// Write performs a mutex-guarded clipboard write to prevent corruption under parallel writes.
func Write(text string) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if !ready {
		return fmt.Errorf("clipboard not initialized")
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// JoinLines renders recognized lines the way "Copy all" puts them on the clipboard.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// WriteLines copies all lines, newline separated.
func WriteLines(w Writer, lines []string) error {
	return w.Write(JoinLines(lines))
}

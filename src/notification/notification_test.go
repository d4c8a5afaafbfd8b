//go:build !windows

package notification

import (
	"strings"
	"testing"
)

func TestNotifyUsesFallback(t *testing.T) {
	var gotTitle, gotMsg string
	SetFallback(func(title, message string) { gotTitle, gotMsg = title, message })
	defer SetFallback(nil)

	Notify("Odin's Eye", "Copied 3 lines")
	if gotTitle != "Odin's Eye" || gotMsg != "Copied 3 lines" {
		t.Errorf("Unexpected notification %q / %q", gotTitle, gotMsg)
	}
}

func TestNotifyTruncatesLongBody(t *testing.T) {
	var gotMsg string
	SetFallback(func(_, message string) { gotMsg = message })
	defer SetFallback(nil)

	Notify("t", strings.Repeat("é", 250))
	if !strings.HasSuffix(gotMsg, "...") || len([]rune(gotMsg)) != maxBody+3 {
		t.Errorf("Expected truncation to %d runes, got %d", maxBody, len([]rune(gotMsg)))
	}
}

func TestNotifyWithoutFallbackDoesNotPanic(t *testing.T) {
	SetFallback(nil)
	Notify("t", "m")
}

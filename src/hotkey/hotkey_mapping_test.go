package hotkey

import (
	"testing"
)

func TestParseHotkey(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"Ctrl+Alt+Q", []string{"ctrl", "alt", "q"}},
		{"Ctrl+Shift+O", []string{"ctrl", "shift", "o"}},
		{"Ctrl+alt+e", []string{"ctrl", "alt", "e"}},
		{"Alt+F4", []string{"alt", "f4"}},
		{"Ctrl+Shift+F13", []string{"ctrl", "shift", "f13"}},
		{"Ctrl+Win+E", []string{"ctrl", "cmd", "e"}},
		{"Win+Shift+S", []string{"cmd", "shift", "s"}},
		{"Super+Alt+T", []string{"cmd", "alt", "t"}},
		{"Control + Option + Q", []string{"ctrl", "alt", "q"}},
		{"Ctrl++Q", []string{"ctrl", "q"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseHotkey(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("parseHotkey(%q) returned %d keys, expected %d",
					tt.input, len(result), len(tt.expected))
				return
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("parseHotkey(%q)[%d] = %q, expected %q",
						tt.input, i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestKeys(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"Ctrl+Alt+Q", false},
		{"Ctrl+Shift+O", false},
		{"Alt+F4", false},
		{"Ctrl+Hyper+Q", true},
		{"", true},
		{" + ", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Keys(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Keys(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

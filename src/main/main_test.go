package main

import (
	"image"
	"testing"

	"odins-eye/src/capture"
)

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		out  []string
	}{
		{
			name: "Normalizes long single dash flags",
			in:   []string{"odins-eye", "-engine", "vision", "-api-key-path", "/tmp/key"},
			out:  []string{"odins-eye", "--engine", "vision", "--api-key-path", "/tmp/key"},
		},
		{
			name: "Normalizes equals form",
			in:   []string{"odins-eye", "-no-tray=true", "-api-key-path=/tmp/key"},
			out:  []string{"odins-eye", "--no-tray=true", "--api-key-path=/tmp/key"},
		},
		{
			name: "Leaves other flags unchanged",
			in:   []string{"odins-eye", "--verbose", "-v", "--other"},
			out:  []string{"odins-eye", "--verbose", "-v", "--other"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeLegacyArgs(tt.in)
			if len(got) != len(tt.out) {
				t.Fatalf("Expected len=%d, got %d", len(tt.out), len(got))
			}
			for i := range got {
				if got[i] != tt.out[i] {
					t.Fatalf("Expected arg[%d]=%q, got %q", i, tt.out[i], got[i])
				}
			}
		})
	}
}

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--engine", "vision", "--api-key-path", "/tmp/key", "--no-tray", "-v"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.engine != "vision" {
		t.Fatalf("Expected engine=vision, got %q", opts.engine)
	}
	if opts.apiKeyPath != "/tmp/key" {
		t.Fatalf("Expected apiKeyPath=/tmp/key, got %q", opts.apiKeyPath)
	}
	if !opts.noTray || !opts.verbose || opts.noHotkey {
		t.Fatalf("Unexpected booleans %+v", *opts)
	}
}

func TestHostViewportUsesPrimaryDisplay(t *testing.T) {
	tests := []struct {
		name     string
		displays []image.Rectangle
		wantW    int
		wantH    int
	}{
		{"No displays", nil, 1280, 800},
		{"Empty primary", []image.Rectangle{{}}, 1280, 800},
		{"Single display", []image.Rectangle{image.Rect(0, 0, 2560, 1440)}, 2560, 1440},
		{"Side by side", []image.Rectangle{image.Rect(0, 0, 1920, 1080), image.Rect(1920, 0, 3840, 1080)}, 1920, 1080},
		{"Secondary left of primary", []image.Rectangle{image.Rect(0, 0, 1920, 1080), image.Rect(-1280, 0, 0, 1024)}, 1920, 1080},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vp := hostViewport(tt.displays)
			if vp.Width != tt.wantW || vp.Height != tt.wantH {
				t.Fatalf("Expected %dx%d viewport, got %+v", tt.wantW, tt.wantH, vp)
			}
		})
	}
}

func TestDesktopUnionPreviewFitsPrimaryDisplay(t *testing.T) {
	displays := []image.Rectangle{image.Rect(0, 0, 1920, 1080), image.Rect(1920, 0, 3840, 1080)}
	size, _ := capture.FitPreview(3840, 1080, hostViewport(displays))
	if size.X > 1920-40 || size.Y > 1080-120 {
		t.Errorf("Preview %v overflows the primary display", size)
	}
}

func TestHotkeyHint(t *testing.T) {
	if hotkeyHint("Ctrl+Alt+Q", true) != "" {
		t.Error("Disabled hotkey should not be advertised")
	}
	if hotkeyHint("Ctrl+Alt+Q", false) != "Ctrl+Alt+Q" {
		t.Error("Expected hotkey hint")
	}
}

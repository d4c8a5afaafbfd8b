package region

import (
	"math/rand"
	"testing"
)

func TestMapToSource(t *testing.T) {
	tests := []struct {
		name   string
		sel    Selection
		scale  Scale
		w, h   int
		want   Rect
		wantOK bool
	}{
		{
			name:   "Half size preview",
			sel:    Selection{Start: Point{100, 100}, Current: Point{300, 250}},
			scale:  Scale{2, 2},
			w:      1920,
			h:      1080,
			want:   Rect{X: 200, Y: 200, Width: 400, Height: 300},
			wantOK: true,
		},
		{
			name:   "Reversed drag normalizes",
			sel:    Selection{Start: Point{300, 250}, Current: Point{100, 100}},
			scale:  Scale{2, 2},
			w:      1920,
			h:      1080,
			want:   Rect{X: 200, Y: 200, Width: 400, Height: 300},
			wantOK: true,
		},
		{
			name:   "Identity scale keeps display rect",
			sel:    Selection{Start: Point{10, 20}, Current: Point{110, 70}},
			scale:  Scale{1, 1},
			w:      800,
			h:      600,
			want:   Rect{X: 10, Y: 20, Width: 100, Height: 50},
			wantOK: true,
		},
		{
			name:   "Fractional corners floor and ceil",
			sel:    Selection{Start: Point{10.4, 10.4}, Current: Point{20.2, 20.2}},
			scale:  Scale{1.5, 1.5},
			w:      800,
			h:      600,
			want:   Rect{X: 15, Y: 15, Width: 16, Height: 16},
			wantOK: true,
		},
		{
			name:   "Independent axes",
			sel:    Selection{Start: Point{0, 0}, Current: Point{100, 100}},
			scale:  Scale{2, 1.5},
			w:      800,
			h:      600,
			want:   Rect{X: 0, Y: 0, Width: 200, Height: 150},
			wantOK: true,
		},
		{
			name:   "Clamped to frame",
			sel:    Selection{Start: Point{-5, -5}, Current: Point{1000, 1000}},
			scale:  Scale{1, 1},
			w:      800,
			h:      600,
			want:   Rect{X: 0, Y: 0, Width: 800, Height: 600},
			wantOK: true,
		},
		{
			name:   "Zero area drag",
			sel:    Selection{Start: Point{50, 50}, Current: Point{50, 50}},
			scale:  Scale{2, 2},
			w:      800,
			h:      600,
			wantOK: false,
		},
		{
			name:   "Zero width drag",
			sel:    Selection{Start: Point{50, 10}, Current: Point{50, 90}},
			scale:  Scale{1, 1},
			w:      800,
			h:      600,
			wantOK: false,
		},
		{
			name:   "Entirely outside frame",
			sel:    Selection{Start: Point{900, 700}, Current: Point{950, 750}},
			scale:  Scale{1, 1},
			w:      800,
			h:      600,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MapToSource(tt.sel, tt.scale, tt.w, tt.h)
			if ok != tt.wantOK {
				t.Fatalf("Expected ok=%v, got %v (rect %v)", tt.wantOK, ok, got)
			}
			if ok && got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestMapToSourceStaysInsideFrame(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		frameW := 100 + rng.Intn(3000)
		frameH := 100 + rng.Intn(2000)
		previewW := 1 + rng.Intn(frameW)
		previewH := 1 + rng.Intn(frameH)
		scale := Scale{X: float64(frameW) / float64(previewW), Y: float64(frameH) / float64(previewH)}

		sel := Selection{
			Start:   Point{rng.Float64() * float64(previewW), rng.Float64() * float64(previewH)},
			Current: Point{rng.Float64() * float64(previewW), rng.Float64() * float64(previewH)},
		}
		r, ok := MapToSource(sel, scale, frameW, frameH)
		if !ok {
			continue
		}
		if r.X < 0 || r.Y < 0 || r.X+r.Width > frameW || r.Y+r.Height > frameH {
			t.Fatalf("Rect %v escapes %dx%d frame (sel %+v, scale %+v)", r, frameW, frameH, sel, scale)
		}
		if r.Width <= 0 || r.Height <= 0 {
			t.Fatalf("Expected positive size, got %v", r)
		}
	}
}

func TestSelectionEmpty(t *testing.T) {
	if !(Selection{Start: Point{3, 3}, Current: Point{3, 3}}).Empty() {
		t.Error("Expected zero-area selection to be empty")
	}
	if (Selection{Start: Point{3, 3}, Current: Point{4, 5}}).Empty() {
		t.Error("Expected 1x2 selection to be non-empty")
	}
}

func TestRectUsable(t *testing.T) {
	if (Rect{Width: 9, Height: 50}).Usable(MinUsableSize) {
		t.Error("Expected 9px wide rect to be rejected")
	}
	if !(Rect{Width: 10, Height: 10}).Usable(MinUsableSize) {
		t.Error("Expected 10x10 rect to be usable")
	}
}

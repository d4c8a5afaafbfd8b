package clipboard

import (
	"testing"
)

type recorder struct{ got []string }

func (r *recorder) Write(text string) error {
	r.got = append(r.got, text)
	return nil
}

func TestWrite(t *testing.T) {
	// Needs a display; only check that it doesn't panic.
	if err := Init(); err != nil {
		t.Skipf("clipboard unavailable: %v", err)
	}
	if err := Write("test text"); err != nil {
		t.Logf("Failed to write to clipboard: %v", err)
	}
}

func TestWriteLines(t *testing.T) {
	r := &recorder{}
	if err := WriteLines(r, []string{"Hello", "World"}); err != nil {
		t.Fatal(err)
	}
	if len(r.got) != 1 || r.got[0] != "Hello\nWorld" {
		t.Errorf("Expected joined lines, got %q", r.got)
	}
}

func TestJoinLinesEmpty(t *testing.T) {
	if got := JoinLines(nil); got != "" {
		t.Errorf("Expected empty string, got %q", got)
	}
}

package ocr

import (
	"errors"
	"strings"
)

// Errors reported for invalid gateway input. Their text is shown to the user verbatim.
var (
	ErrFileNotFound   = errors.New("File not found")
	ErrNoImageData    = errors.New("No image data")
	ErrEmptyImageData = errors.New("Empty image data")
)

// Line is one recognized line or paragraph.
type Line struct {
	Text string `json:"text"`
	// Confidence is the engine's score in percent; 0 when the engine gives none.
	Confidence float64 `json:"confidence"`
}

// Result is the gateway's answer for one image. Exactly one of Text/Lines or
// Error is meaningful, depending on OK.
type Result struct {
	OK    bool   `json:"ok"`
	Text  string `json:"text,omitempty"`
	Lines []Line `json:"lines,omitempty"`
	Error string `json:"error,omitempty"`
}

// Failure wraps err as a failed Result.
func Failure(err error) Result {
	msg := "Unknown"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return Result{OK: false, Error: msg}
}

// LineTexts returns the display lines: the structured lines when the engine
// produced any, otherwise Text split on newlines.
func (r Result) LineTexts() []string {
	if len(r.Lines) > 0 {
		out := make([]string, 0, len(r.Lines))
		for _, l := range r.Lines {
			out = append(out, l.Text)
		}
		return out
	}
	return SplitLines(r.Text)
}

// SplitLines splits text on newlines, trims each line and drops empty ones.
func SplitLines(text string) []string {
	var out []string
	for _, s := range strings.Split(text, "\n") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func normalizeLines(lines []Line) []Line {
	if len(lines) == 0 {
		return nil
	}
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.Text = strings.TrimSpace(l.Text); l.Text != "" {
			out = append(out, l)
		}
	}
	return out
}

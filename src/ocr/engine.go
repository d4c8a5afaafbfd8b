package ocr

import (
	"context"
	"errors"
)

// Output is what an engine recognized in one image.
type Output struct {
	Text  string
	Lines []Line
}

// Engine recognizes text in an image file. Implementations must be safe for
// concurrent use.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, path string) (Output, error)
	Close() error
}

// ErrTesseractUnavailable is returned by NewTesseract in builds without cgo.
var ErrTesseractUnavailable = errors.New("tesseract engine requires a cgo build")

// TesseractOptions configures the local engine.
type TesseractOptions struct {
	// Languages are tesseract language codes, e.g. "eng" or "deu".
	Languages []string
	// TessdataPrefix is the directory holding *.traineddata; empty uses the system default.
	TessdataPrefix string
}

//go:build !cgo

package ocr

import "context"

// Tesseract is unavailable without cgo; NewTesseract always fails.
type Tesseract struct{}

func NewTesseract(TesseractOptions) (*Tesseract, error) {
	return nil, ErrTesseractUnavailable
}

func (*Tesseract) Name() string { return "tesseract" }

func (*Tesseract) Recognize(context.Context, string) (Output, error) {
	return Output{}, ErrTesseractUnavailable
}

func (*Tesseract) Close() error { return nil }

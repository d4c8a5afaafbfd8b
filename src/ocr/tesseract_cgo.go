//go:build cgo

package ocr

import (
	"context"
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog/log"
)

// Tesseract runs recognition in-process through libtesseract. One client is
// created lazily and reused; calls are serialized.
type Tesseract struct {
	mu     sync.Mutex
	opts   TesseractOptions
	client *gosseract.Client
}

func NewTesseract(opts TesseractOptions) (*Tesseract, error) {
	if len(opts.Languages) == 0 {
		opts.Languages = []string{"eng"}
	}
	return &Tesseract{opts: opts}, nil
}

func (t *Tesseract) Name() string { return "tesseract" }

func (t *Tesseract) ensureClient() (*gosseract.Client, error) {
	if t.client != nil {
		return t.client, nil
	}
	client := gosseract.NewClient()
	if t.opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.opts.TessdataPrefix); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(t.opts.Languages...); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	log.Info().Strs("languages", t.opts.Languages).Str("tessdata", t.opts.TessdataPrefix).Msg("Tesseract client ready")
	t.client = client
	return client, nil
}

func (t *Tesseract) Recognize(ctx context.Context, path string) (Output, error) {
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	client, err := t.ensureClient()
	if err != nil {
		return Output{}, err
	}
	if err := client.SetImage(path); err != nil {
		return Output{}, fmt.Errorf("failed to set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return Output{}, fmt.Errorf("OCR failed: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_PARA)
	if err != nil {
		log.Debug().Err(err).Msg("Paragraph boxes unavailable, falling back to text lines")
		return Output{Text: text}, nil
	}
	lines := make([]Line, 0, len(boxes))
	for _, b := range boxes {
		lines = append(lines, Line{Text: b.Word, Confidence: b.Confidence})
	}
	return Output{Text: text, Lines: lines}, nil
}

func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}

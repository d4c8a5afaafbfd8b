package ocr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"odins-eye/src/llm"
)

// Vision delegates recognition to a vision language model. It returns plain
// text only; callers fall back to splitting it into lines.
type Vision struct {
	client *llm.Client
}

func NewVision(client *llm.Client) *Vision {
	return &Vision{client: client}
}

func (v *Vision) Name() string { return "vision" }

func (v *Vision) Recognize(ctx context.Context, path string) (Output, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Output{}, fmt.Errorf("read image: %w", err)
	}
	mimeType := http.DetectContentType(data)
	if mimeType == "application/octet-stream" {
		mimeType = DetectFormat(data).MIMEType()
	}
	text, err := v.client.QueryVision(ctx, data, mimeType)
	if errors.Is(err, llm.ErrNoText) {
		return Output{}, nil
	}
	if err != nil {
		return Output{}, err
	}
	return Output{Text: text}, nil
}

func (v *Vision) Close() error { return nil }

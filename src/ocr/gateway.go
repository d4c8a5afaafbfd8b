// Package ocr is the recognition gateway: it accepts an image as a path or as
// raw bytes, runs it through an Engine and reports a Result. Failures never
// escape as Go errors; they are folded into Result.Error.
package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Gateway is safe for concurrent use when its Engine is.
type Gateway struct {
	engine     Engine
	tempDir    string
	preprocess bool
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithTempDir sets where buffers are written before recognition.
func WithTempDir(dir string) GatewayOption {
	return func(g *Gateway) { g.tempDir = dir }
}

// WithPreprocess enables grayscale and contrast enhancement before recognition.
func WithPreprocess(enabled bool) GatewayOption {
	return func(g *Gateway) { g.preprocess = enabled }
}

func NewGateway(engine Engine, opts ...GatewayOption) *Gateway {
	g := &Gateway{engine: engine, tempDir: os.TempDir()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Engine returns the underlying engine name.
func (g *Gateway) Engine() string { return g.engine.Name() }

// Close releases the engine.
func (g *Gateway) Close() error { return g.engine.Close() }

// Input is either a file path or an in-memory image. Data wins when both are set.
type Input struct {
	Path string
	Data []byte
}

func (g *Gateway) Recognize(ctx context.Context, in Input) Result {
	if in.Data != nil {
		return g.RecognizeBytes(ctx, in.Data)
	}
	return g.RecognizePath(ctx, in.Path)
}

// RecognizePath recognizes an image file.
func (g *Gateway) RecognizePath(ctx context.Context, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Failure(ErrFileNotFound)
	}
	if st, err := os.Stat(path); err != nil || st.IsDir() {
		return Failure(ErrFileNotFound)
	}
	return g.run(ctx, path)
}

// RecognizeBytes writes data to a temporary file named after its detected
// format, recognizes it and removes the file.
func (g *Gateway) RecognizeBytes(ctx context.Context, data []byte) Result {
	if data == nil {
		return Failure(ErrNoImageData)
	}
	if len(data) == 0 {
		return Failure(ErrEmptyImageData)
	}
	path, err := g.writeTemp(data, DetectFormat(data))
	if err != nil {
		return Failure(err)
	}
	defer removeTemp(path)
	return g.run(ctx, path)
}

// RecognizePayload decodes base64 (optionally a data URL) and recognizes it.
// An empty payload decodes to an empty buffer.
func (g *Gateway) RecognizePayload(ctx context.Context, payload string) Result {
	data, err := DecodePayload(payload)
	if err != nil {
		return Failure(err)
	}
	if data == nil {
		data = []byte{}
	}
	return g.RecognizeBytes(ctx, data)
}

func (g *Gateway) run(ctx context.Context, path string) Result {
	target := path
	if g.preprocess {
		dst, err := g.tempPath(FormatPNG)
		if err == nil {
			err = preprocessFile(path, dst)
		}
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Preprocessing failed, recognizing original")
		} else {
			defer removeTemp(dst)
			target = dst
		}
	}

	start := time.Now()
	out, err := g.engine.Recognize(ctx, target)
	if err != nil {
		log.Error().Err(err).Str("engine", g.engine.Name()).Dur("took", time.Since(start)).Msg("Recognition failed")
		return Failure(err)
	}
	res := Result{OK: true, Text: out.Text, Lines: normalizeLines(out.Lines)}
	log.Info().
		Str("engine", g.engine.Name()).
		Int("chars", len(res.Text)).
		Int("lines", len(res.Lines)).
		Dur("took", time.Since(start)).
		Msg("Recognition finished")
	return res
}

func (g *Gateway) tempPath(format Format) (string, error) {
	dir := g.tempDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	name := fmt.Sprintf("odins-eye-%d-%s.%s", time.Now().UnixMilli(), uuid.NewString()[:8], format)
	return filepath.Join(dir, name), nil
}

func (g *Gateway) writeTemp(data []byte, format Format) (string, error) {
	path, err := g.tempPath(format)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write temp image: %w", err)
	}
	return path, nil
}

func removeTemp(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Debug().Err(err).Str("path", path).Msg("Could not remove temp image")
	}
}

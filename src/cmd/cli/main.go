package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"odins-eye/src/capture"
	"odins-eye/src/clipboard"
	"odins-eye/src/config"
	"odins-eye/src/ocr"
	"odins-eye/src/region"
	"odins-eye/src/runtimeinit"
	"odins-eye/src/screenshot"
	"odins-eye/src/session"
)

const (
	maxFileSizeMB = 10
	maxFileSize   = maxFileSizeMB * 1024 * 1024
)

type cliOptions struct {
	apiKeyPath string
	engine     string
	verbose    bool
	jsonOutput bool
	copy       bool

	// ocr
	filePath string
	base64   bool

	// capture
	display  int
	sel      string
	viewport string
	full     bool
	out      string
	noOCR    bool
}

// environment is everything the commands touch outside the process.
type environment struct {
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	newGateway func(ctx context.Context, opts cliOptions) (*ocr.Gateway, error)
	newSource  func(display int) capture.Source
	clipboard  func() (clipboard.Writer, error)
}

func defaultEnvironment() *environment {
	return &environment{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		newGateway: func(ctx context.Context, opts cliOptions) (*ocr.Gateway, error) {
			rt, err := runtimeinit.Bootstrap(ctx, runtimeinit.Options{
				LoadOptions: config.LoadOptions{APIKeyPathOverride: opts.apiKeyPath, EngineOverride: opts.engine},
				Console:     opts.verbose,
				Verbose:     opts.verbose,
			})
			if err != nil {
				return nil, err
			}
			return rt.Gateway, nil
		},
		newSource: func(display int) capture.Source {
			return capture.DisplaySource{Display: display}
		},
		clipboard: func() (clipboard.Writer, error) {
			if err := clipboard.Init(); err != nil {
				return nil, err
			}
			return clipboard.System{}, nil
		},
	}
}

func main() {
	opts := &cliOptions{}
	cmd := newRootCmd(opts, defaultEnvironment())
	cmd.SetArgs(normalizeLegacyArgs(os.Args)[1:])
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(opts *cliOptions, env *environment) *cobra.Command {
	root := &cobra.Command{
		Use:           "odins-eye-cli",
		Short:         "Headless OCR and screen capture",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(env.stdin)
	root.SetOut(env.stdout)
	root.SetErr(env.stderr)

	root.PersistentFlags().StringVar(&opts.apiKeyPath, "api-key-path", "", "Path to API key file (highest precedence)")
	root.PersistentFlags().StringVar(&opts.engine, "engine", "", "OCR engine: tesseract or vision (overrides OCR_ENGINE)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	root.PersistentFlags().BoolVar(&opts.copy, "copy", false, "Also copy the recognized text to the clipboard")

	ocrCmd := &cobra.Command{
		Use:   "ocr",
		Short: "Recognize text in an image file, stdin, or a base64 payload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOCR(cmd.Context(), *opts, env)
		},
	}
	ocrCmd.Flags().StringVar(&opts.filePath, "file", "", "Path to image file (use '-' for stdin)")
	ocrCmd.Flags().BoolVar(&opts.base64, "base64", false, "Input is base64, optionally a data:image/...;base64, URL")
	_ = ocrCmd.MarkFlagRequired("file")

	captureCmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture a display, select an area and recognize it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(cmd.Context(), *opts, env)
		},
	}
	captureCmd.Flags().IntVar(&opts.display, "display", screenshot.VirtualDisplay, "Display index (-1 for the whole desktop)")
	captureCmd.Flags().StringVar(&opts.sel, "select", "", "Selection in preview pixels: x1,y1,x2,y2")
	captureCmd.Flags().StringVar(&opts.viewport, "viewport", "1280x800", "Preview viewport: WxH")
	captureCmd.Flags().BoolVar(&opts.full, "full", false, "Use the full frame instead of a selection")
	captureCmd.Flags().StringVar(&opts.out, "out", "", "Save the captured image as PNG")
	captureCmd.Flags().BoolVar(&opts.noOCR, "no-ocr", false, "Only capture, do not recognize")

	root.AddCommand(ocrCmd, captureCmd)
	return root
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"file", "json", "verbose", "api-key-path", "base64", "copy"} {
			switch {
			case arg == "-"+name:
				normalized[i] = "--" + name
			case strings.HasPrefix(arg, "-"+name+"="):
				normalized[i] = "-" + arg
			}
		}
	}

	return normalized
}

func verbosef(opts cliOptions, w io.Writer, format string, args ...any) {
	if opts.verbose {
		fmt.Fprintf(w, "[verbose] "+format+"\n", args...)
	}
}

func runOCR(ctx context.Context, opts cliOptions, env *environment) error {
	if ctx == nil {
		ctx = context.Background()
	}
	gw, err := env.newGateway(ctx, opts)
	if err != nil {
		return err
	}
	defer gw.Close()
	verbosef(opts, env.stderr, "Engine: %s", gw.Engine())

	start := time.Now()
	var res ocr.Result
	switch {
	case opts.filePath == "-" || opts.base64:
		data, err := readInput(opts.filePath, env.stdin)
		if err != nil {
			return err
		}
		verbosef(opts, env.stderr, "Read %d bytes", len(data))
		if opts.base64 {
			res = gw.RecognizePayload(ctx, strings.TrimSpace(string(data)))
		} else {
			res = gw.RecognizeBytes(ctx, data)
		}
	default:
		verbosef(opts, env.stderr, "Reading image from file: %s", opts.filePath)
		res = gw.RecognizePath(ctx, opts.filePath)
	}
	elapsed := time.Since(start)
	verbosef(opts, env.stderr, "OCR finished in %v", elapsed)

	return deliver(res, opts.filePath, nil, elapsed, opts, env)
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(io.LimitReader(stdin, maxFileSize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", path, err)
		}
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("input exceeds maximum size of %d MB", maxFileSizeMB)
	}
	return data, nil
}

func runCapture(ctx context.Context, opts cliOptions, env *environment) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !opts.full && opts.sel == "" {
		return fmt.Errorf("either --select or --full is required")
	}
	vp, err := parseViewport(opts.viewport)
	if err != nil {
		return err
	}

	orch := capture.New(env.newSource(opts.display), func() capture.Viewport { return vp })
	ctrl := session.NewController(func(snap session.Snapshot) {
		log.Debug().Str("state", snap.State.String()).Bool("selection", snap.HasSelection).Msg("overlay repaint")
	}, 0)

	s, err := orch.Begin(ctx, ctrl)
	if err != nil {
		return fmt.Errorf("Could not capture: %w", err)
	}
	verbosef(opts, env.stderr, "Frame %v, preview %v", s.Frame().Bounds().Size(), s.Preview().Bounds().Size())

	var (
		img  = s.Frame()
		rect *region.Rect
	)
	if opts.full {
		if img, err = s.ConfirmFullFrame(); err != nil {
			return err
		}
	} else {
		from, to, err := parseSelection(opts.sel)
		if err != nil {
			s.Cancel()
			return err
		}
		s.PointerDown(from)
		s.PointerMove(to)
		s.PointerUp()
		crop, r, err := s.ConfirmCrop()
		if err != nil {
			s.Cancel()
			return err
		}
		img, rect = crop, &r
		verbosef(opts, env.stderr, "Source rect %s", r)
	}

	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", opts.out, err)
		}
		if err := screenshot.Encode(f, img, screenshot.PNG); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		verbosef(opts, env.stderr, "Saved %s", opts.out)
	}
	if opts.noOCR {
		if rect != nil && !opts.jsonOutput {
			fmt.Fprintln(env.stdout, rect.String())
		}
		return nil
	}

	gw, err := env.newGateway(ctx, opts)
	if err != nil {
		return err
	}
	defer gw.Close()
	data, err := screenshot.EncodePNG(img)
	if err != nil {
		return err
	}
	start := time.Now()
	res := gw.RecognizeBytes(ctx, data)
	return deliver(res, "capture", rect, time.Since(start), opts, env)
}

// OCRResult is the --json output.
type OCRResult struct {
	ocr.Result
	Source    string       `json:"source"`
	Rect      *region.Rect `json:"rect,omitempty"`
	Timestamp string       `json:"timestamp"`
	Duration  float64      `json:"duration_seconds"`
	CharCount int          `json:"character_count"`
}

func deliver(res ocr.Result, source string, rect *region.Rect, elapsed time.Duration, opts cliOptions, env *environment) error {
	if !res.OK {
		return fmt.Errorf("OCR failed: %s", res.Error)
	}
	text := plainText(res)

	if opts.copy {
		clip, err := env.clipboard()
		if err != nil {
			return fmt.Errorf("failed to initialize clipboard: %w", err)
		}
		if err := clip.Write(text); err != nil {
			return fmt.Errorf("failed to write to clipboard: %w", err)
		}
		verbosef(opts, env.stderr, "Copied %d characters", len(text))
	}

	if opts.jsonOutput {
		encoder := json.NewEncoder(env.stdout)
		encoder.SetIndent("", "  ")
		out := OCRResult{
			Result:    res,
			Source:    source,
			Rect:      rect,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Duration:  elapsed.Seconds(),
			CharCount: len(text),
		}
		if err := encoder.Encode(out); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
		return nil
	}
	fmt.Fprint(env.stdout, text)
	return nil
}

// plainText prefers the engine's text and falls back to its lines.
func plainText(res ocr.Result) string {
	if res.Text != "" {
		return res.Text
	}
	return clipboard.JoinLines(res.LineTexts())
}

func parseSelection(s string) (from, to region.Point, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return from, to, fmt.Errorf("invalid --select %q: want x1,y1,x2,y2", s)
	}
	var v [4]float64
	for i, p := range parts {
		v[i], err = strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return from, to, fmt.Errorf("invalid --select %q: %w", s, err)
		}
	}
	return region.Point{X: v[0], Y: v[1]}, region.Point{X: v[2], Y: v[3]}, nil
}

func parseViewport(s string) (capture.Viewport, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return capture.Viewport{}, fmt.Errorf("invalid --viewport %q: want WxH", s)
	}
	width, err1 := strconv.Atoi(w)
	height, err2 := strconv.Atoi(h)
	if err1 != nil || err2 != nil || width <= 0 || height <= 0 {
		return capture.Viewport{}, fmt.Errorf("invalid --viewport %q: want WxH", s)
	}
	return capture.DefaultViewport(width, height), nil
}

package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"odins-eye/src/capture"
	"odins-eye/src/clipboard"
	"odins-eye/src/config"
	"odins-eye/src/eventloop"
	"odins-eye/src/gui"
	"odins-eye/src/hotkey"
	"odins-eye/src/notification"
	"odins-eye/src/overlay"
	"odins-eye/src/runtimeinit"
	"odins-eye/src/screenshot"
	"odins-eye/src/worker"
)

const appID = "io.github.odinseye"

type mainOptions struct {
	apiKeyPath string
	engine     string
	verbose    bool
	noTray     bool
	noHotkey   bool
}

func main() {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(normalizeLegacyArgs(os.Args)[1:])
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "odins-eye",
		Short:         "Extract text from images and screen regions",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(cmd.Context(), *opts)
		},
	}

	cmd.Flags().StringVar(&opts.apiKeyPath, "api-key-path", "", "Path to API key file (highest precedence)")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "OCR engine: tesseract or vision (overrides OCR_ENGINE)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging to stderr")
	cmd.Flags().BoolVar(&opts.noTray, "no-tray", false, "Do not install a tray icon")
	cmd.Flags().BoolVar(&opts.noHotkey, "no-hotkey", false, "Do not register the quick-capture hotkey")

	return cmd
}

// normalizeLegacyArgs maps single-dash long flags (-engine x) to cobra's --engine x.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"api-key-path", "engine", "verbose", "no-tray", "no-hotkey"} {
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

func runGUI(parent context.Context, opts mainOptions) error {
	// Before any window exists.
	enableDPIAwareness()

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rt, err := runtimeinit.Bootstrap(ctx, runtimeinit.Options{
		LoadOptions: config.LoadOptions{APIKeyPathOverride: opts.apiKeyPath, EngineOverride: opts.engine},
		Console:     true,
		Verbose:     opts.verbose,
		Clipboard:   true,
	})
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg := rt.Config

	style, err := overlay.ParseStyle(cfg.OverlayOutline, cfg.OverlayMask, cfg.OverlayMaskAlpha)
	if err != nil {
		log.Warn().Err(err).Msg("Invalid overlay colours, using defaults")
		style = overlay.DefaultStyle()
	}

	a := app.NewWithID(appID)
	ui := gui.New(a, gui.Options{
		MessageClear: time.Duration(cfg.MessageClearSec) * time.Second,
		Style:        style,
		Hotkey:       hotkeyHint(cfg.Hotkey, opts.noHotkey),
	})
	notification.SetFallback(func(title, message string) {
		fyne.Do(func() { a.SendNotification(fyne.NewNotification(title, message)) })
	})

	source := capture.DisplaySource{Display: cfg.CaptureDisplay}
	if cfg.CapturePick {
		source.Pick = ui.PickDisplay
	}
	orch := capture.New(source, func() capture.Viewport { return hostViewport(screenshot.Displays()) })

	loop := eventloop.New(ui, orch, worker.New(rt.Gateway, 1), clipboard.System{},
		eventloop.WithDeadline(time.Duration(cfg.OCRDeadlineSec)*time.Second),
		eventloop.WithMinSelection(cfg.MinSelectionPx),
	)
	ui.Bind(loop)

	if !opts.noTray {
		ui.InstallTray()
	}
	if !opts.noHotkey && cfg.Hotkey != "" {
		if err := loop.StartHotkey(cfg.Hotkey); err != nil {
			log.Warn().Err(err).Str("hotkey", cfg.Hotkey).Msg("Hotkey disabled")
		} else {
			defer hotkey.Stop()
		}
	}

	log.Info().
		Str("engine", rt.Gateway.Engine()).
		Str("hotkey", cfg.Hotkey).
		Int("display", cfg.CaptureDisplay).
		Int("ocr_deadline_sec", cfg.OCRDeadlineSec).
		Msg("Odin's Eye initialized")

	go func() {
		if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("event loop stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		fyne.Do(a.Quit)
	}()

	ui.ShowAndRun()
	cancel()
	return nil
}

// hostViewport sizes the overlay after the primary display, which hosts the
// overlay window, whatever display or desktop union is being captured.
func hostViewport(displays []image.Rectangle) capture.Viewport {
	if len(displays) == 0 || displays[0].Empty() {
		return capture.DefaultViewport(1280, 800)
	}
	return capture.DefaultViewport(displays[0].Dx(), displays[0].Dy())
}

func hotkeyHint(combo string, disabled bool) string {
	if disabled {
		return ""
	}
	return combo
}

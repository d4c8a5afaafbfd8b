package runtimeinit

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"odins-eye/src/clipboard"
	"odins-eye/src/config"
	"odins-eye/src/llm"
	"odins-eye/src/logutil"
	"odins-eye/src/ocr"
)

const pingTimeout = 15 * time.Second

type Options struct {
	LoadOptions config.LoadOptions
	// Console enables human-readable logs on stderr.
	Console bool
	// Verbose forces debug logging regardless of LOG_LEVEL.
	Verbose bool
	// Clipboard initializes the system clipboard; headless runs may skip it.
	Clipboard bool
}

// Runtime is what every entry point needs after bootstrap.
type Runtime struct {
	Config  *config.Config
	Gateway *ocr.Gateway
}

// Close releases the recognition engine.
func (r *Runtime) Close() error {
	if r.Gateway == nil {
		return nil
	}
	return r.Gateway.Close()
}

// Bootstrap loads configuration, sets up logging and builds the recognition gateway.
func Bootstrap(ctx context.Context, opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.LogLevel
	if opts.Verbose {
		level = "debug"
	}
	logutil.Setup(logutil.Options{Level: level, File: cfg.EnableFileLogging, Console: opts.Console})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	engine, err := NewEngine(ctx, cfg)
	if err != nil {
		return nil, err
	}
	gw := ocr.NewGateway(engine, ocr.WithPreprocess(cfg.Preprocess))
	log.Info().Str("engine", gw.Engine()).Bool("preprocess", cfg.Preprocess).Msg("Recognition gateway ready")

	if opts.Clipboard {
		if err := clipboard.Init(); err != nil {
			_ = gw.Close()
			return nil, fmt.Errorf("failed to initialize clipboard: %w", err)
		}
	}

	return &Runtime{Config: cfg, Gateway: gw}, nil
}

// NewEngine builds the engine cfg selects. The vision engine is pinged once
// so a bad key fails at startup instead of on the first scan.
func NewEngine(ctx context.Context, cfg *config.Config) (ocr.Engine, error) {
	switch cfg.Engine {
	case config.EngineVision:
		client, err := llm.New(llm.Config{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.LLMBaseURL})
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx); err != nil {
			return nil, fmt.Errorf("startup check failed: %w", err)
		}
		log.Info().Str("model", cfg.Model).Str("api_key", logutil.RedactKey(cfg.APIKey)).Msg("LLM ping succeeded")
		return ocr.NewVision(client), nil
	default:
		if cfg.TessdataPrefix != "" {
			if err := ocr.EnsureTessdata(ctx, cfg.TessdataPrefix, cfg.Languages); err != nil {
				return nil, fmt.Errorf("failed to prepare tessdata: %w", err)
			}
		}
		engine, err := ocr.NewTesseract(ocr.TesseractOptions{Languages: cfg.Languages, TessdataPrefix: cfg.TessdataPrefix})
		if err != nil {
			return nil, err
		}
		return engine, nil
	}
}

package logutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	logFileName  = "odins_eye_debug.log"
	maxSizeBytes = 10 * 1024 * 1024 // 10 MB
	maxArchives  = 3
)

// Options controls where log output goes.
type Options struct {
	// Level is debug, info, warn or error. Unknown values mean info.
	Level string
	// File enables the rotating log file next to the working directory.
	File bool
	// Console writes human-readable output to Console (stderr when nil).
	Console   bool
	ConsoleTo io.Writer
}

// Setup configures the global zerolog logger. With neither console nor file
// output enabled, logs are discarded.
func Setup(opts Options) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(ParseLevel(opts.Level))

	var writers []io.Writer
	if opts.Console {
		out := opts.ConsoleTo
		if out == nil {
			out = os.Stderr
		}
		writers = append(writers, zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"})
	}
	if opts.File {
		rotateIfNeeded(logFileName)
		f, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		} else {
			writers = append(writers, &rotatingWriter{f: f, name: logFileName})
		}
	}

	switch len(writers) {
	case 0:
		log.Logger = zerolog.New(io.Discard)
	case 1:
		log.Logger = zerolog.New(writers[0]).With().Timestamp().Logger()
	default:
		log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
	}
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type rotatingWriter struct {
	mu   sync.Mutex
	f    *os.File
	name string
}

func (w *rotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	// naive rotation check per write
	if st, err := w.f.Stat(); err == nil && st.Size()+int64(len(p)) > maxSizeBytes {
		_ = w.f.Close()
		rotate(w.name)
		nf, err := os.OpenFile(w.name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return 0, err
		}
		w.f = nf
	}
	return w.f.Write(p)
}

func rotateIfNeeded(name string) {
	if st, err := os.Stat(name); err == nil && st.Size() > maxSizeBytes {
		rotate(name)
	}
}

// rotate shifts name to .1, .1 to .2 and so on; the oldest archive is discarded.
func rotate(name string) {
	_ = os.Remove(archiveName(name, maxArchives))
	for i := maxArchives - 1; i >= 1; i-- {
		_ = os.Rename(archiveName(name, i), archiveName(name, i+1))
	}
	_ = os.Rename(name, archiveName(name, 1))
}

func archiveName(name string, n int) string {
	return filepath.Join(filepath.Dir(name), fmt.Sprintf("%s.%d", filepath.Base(name), n))
}

// RedactKey masks an API key, leaving first/last 4 chars: xxxx...yyyy
func RedactKey(k string) string {
	if len(k) <= 8 {
		return "********"
	}
	return fmt.Sprintf("%s...%s", k[:4], k[len(k)-4:])
}
